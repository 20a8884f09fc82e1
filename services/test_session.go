package services

import (
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type TestSessionService struct {
	appContext.DefaultService

	mongoSvc     *MongoService
	generatorSvc *GeneratorService
}

const TEST_SESSION_SVC = "test_session_svc"

func (svc TestSessionService) Id() string {
	return TEST_SESSION_SVC
}

func (svc *TestSessionService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *TestSessionService) Start() error {
	svc.mongoSvc = svc.Service(MONGO_SVC).(*MongoService)
	svc.generatorSvc = svc.Service(GENERATOR_SVC).(*GeneratorService)
	return nil
}

// CreateSession generates the question snapshot, persists the session and one
// QuestionInstance per question. The persistent flow never consults the
// generation cache.
func (svc *TestSessionService) CreateSession(ctx context.Context, userID string, req dto.CreateTestSessionRequest) (*model.TestSession, error) {
	params := GenerationParams{
		Mode:          req.Mode,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		QuestionCount: req.QuestionCount,
	}

	questions, err := svc.generatorSvc.Generate(ctx, params)
	if err != nil {
		if errors.Is(err, ErrGenerationUnavailable) {
			return nil, shared.NewServiceUnavailableError(shared.MsgGenerationUnavailable, err)
		}
		return nil, err
	}

	now := time.Now()
	id, _ := uuid.NewV7()
	session := &model.TestSession{
		ID:            id.String(),
		UserID:        userID,
		Mode:          req.Mode,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		QuestionCount: len(questions),
		TimerSeconds:  req.TimerSeconds,
		Questions:     questions,
		StartedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := svc.mongoSvc.TestSessions().InsertOne(ctx, session); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	instances := make([]interface{}, 0, len(questions))
	for i, q := range questions {
		instID, _ := uuid.NewV7()
		instances = append(instances, model.QuestionInstance{
			ID:            instID.String(),
			SessionID:     session.ID,
			QuestionIndex: i,
			Category:      q.Category,
			Type:          q.Type,
			CreatedAt:     now,
		})
	}
	if len(instances) > 0 {
		if _, err := svc.mongoSvc.QuestionInstances().InsertMany(ctx, instances); err != nil {
			return nil, svc.mongoSvc.HandleError(err)
		}
	}

	return session, nil
}

// GetSession enforces ownership.
func (svc *TestSessionService) GetSession(ctx context.Context, userID, sessionID string) (*model.TestSession, error) {
	var session model.TestSession
	err := svc.mongoSvc.TestSessions().FindOne(ctx, bson.M{"_id": sessionID, "user_id": userID}).Decode(&session)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &session, nil
}

// GetPublicSession fetches a published session by its public id. Correct
// answers and explanations stay in the payload; published sessions are review
// material.
func (svc *TestSessionService) GetPublicSession(ctx context.Context, publicID string) (*model.TestSession, error) {
	var session model.TestSession
	err := svc.mongoSvc.TestSessions().FindOne(ctx, bson.M{"public_id": publicID, "is_public": true}).Decode(&session)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &session, nil
}

// Publish assigns a public id only when none exists yet, so publishing twice
// returns the same id. A duplicate-key conflict from legacy records that
// stored explicit nulls is repaired once and retried.
func (svc *TestSessionService) Publish(ctx context.Context, userID, sessionID string) (*dto.PublishSessionResponse, error) {
	session, err := svc.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.PublicID == "" {
		publicID := uuid.NewString()
		err = svc.setPublic(ctx, sessionID, publicID)
		if mongo.IsDuplicateKeyError(err) {
			if clearErr := svc.clearNullPublicIDs(ctx); clearErr != nil {
				return nil, svc.mongoSvc.HandleError(clearErr)
			}
			err = svc.setPublic(ctx, sessionID, publicID)
		}
		if err != nil {
			return nil, svc.mongoSvc.HandleError(err)
		}
		session.PublicID = publicID
	} else {
		if err := svc.setPublic(ctx, sessionID, session.PublicID); err != nil {
			return nil, svc.mongoSvc.HandleError(err)
		}
	}

	return &dto.PublishSessionResponse{
		SessionID: sessionID,
		IsPublic:  true,
		PublicID:  session.PublicID,
	}, nil
}

func (svc *TestSessionService) setPublic(ctx context.Context, sessionID, publicID string) error {
	_, err := svc.mongoSvc.TestSessions().UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$set": bson.M{"is_public": true, "public_id": publicID, "updated_at": time.Now()}},
	)
	return err
}

func (svc *TestSessionService) clearNullPublicIDs(ctx context.Context) error {
	res, err := svc.mongoSvc.TestSessions().UpdateMany(ctx,
		bson.M{"public_id": nil},
		bson.M{"$unset": bson.M{"public_id": ""}},
	)
	if err == nil && res.ModifiedCount > 0 {
		log.WithField("count", res.ModifiedCount).Info("Cleared legacy null public ids")
	}
	return err
}

// Unpublish flips visibility only; the public id is retained for reuse on the
// next publish.
func (svc *TestSessionService) Unpublish(ctx context.Context, userID, sessionID string) (*dto.PublishSessionResponse, error) {
	session, err := svc.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	_, err = svc.mongoSvc.TestSessions().UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$set": bson.M{"is_public": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	return &dto.PublishSessionResponse{
		SessionID: sessionID,
		IsPublic:  false,
		PublicID:  session.PublicID,
	}, nil
}

// SubmitAnswer upserts on (session, index): re-answering overwrites the
// previous row instead of appending.
func (svc *TestSessionService) SubmitAnswer(ctx context.Context, userID, sessionID string, req dto.SubmitAnswerRequest) (*dto.AnswerResponse, error) {
	session, err := svc.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.IsCompleted() {
		return nil, shared.NewConflictError("Sesi sudah selesai")
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(session.Questions) {
		return nil, shared.NewBadRequestError(nil, "Nomor soal tidak valid")
	}

	question := session.Questions[req.QuestionIndex]
	isCorrect := req.SelectedLabel == question.CorrectOptionLabel

	answerID, _ := uuid.NewV7()
	update := bson.M{
		"$set": bson.M{
			"user_id":            userID,
			"selected_label":     req.SelectedLabel,
			"correct_label":      question.CorrectOptionLabel,
			"is_correct":         isCorrect,
			"time_spent_seconds": req.TimeSpentSeconds,
			"category":           question.Category,
			"difficulty":         question.Difficulty,
			"answered_at":        time.Now(),
		},
		"$setOnInsert": bson.M{"_id": answerID.String()},
	}

	_, err = svc.mongoSvc.Answers().UpdateOne(ctx,
		bson.M{"session_id": sessionID, "question_index": req.QuestionIndex},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	return &dto.AnswerResponse{
		QuestionIndex: req.QuestionIndex,
		SelectedLabel: req.SelectedLabel,
		IsCorrect:     isCorrect,
		CorrectLabel:  question.CorrectOptionLabel,
		Explanation:   question.Explanation,
	}, nil
}

// SaveDraft checkpoints resume state; Clear drops it without completing.
func (svc *TestSessionService) SaveDraft(ctx context.Context, userID, sessionID string, req dto.SaveDraftRequest) error {
	if _, err := svc.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}

	var update bson.M
	if req.Clear != nil && *req.Clear {
		update = bson.M{"$set": bson.M{
			"is_draft":            false,
			"last_question_index": 0,
			"remaining_seconds":   0,
			"updated_at":          time.Now(),
		}}
	} else {
		update = bson.M{"$set": bson.M{
			"is_draft":            true,
			"last_question_index": req.LastQuestionIndex,
			"remaining_seconds":   req.RemainingSeconds,
			"updated_at":          time.Now(),
		}}
	}

	_, err := svc.mongoSvc.TestSessions().UpdateOne(ctx, bson.M{"_id": sessionID}, update)
	if err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	return nil
}

// Complete aggregates the stored answers and scores against the configured
// question count, then clears draft state.
func (svc *TestSessionService) Complete(ctx context.Context, userID, sessionID string) (*dto.CompleteSessionResponse, error) {
	session, err := svc.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	cursor, err := svc.mongoSvc.Answers().Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	var answers []model.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}

	score := ComputeScore(correct, session.QuestionCount)
	now := time.Now()

	_, err = svc.mongoSvc.TestSessions().UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$set": bson.M{
			"completed_at":        now,
			"score":               score,
			"is_draft":            false,
			"last_question_index": 0,
			"remaining_seconds":   0,
			"updated_at":          now,
		}},
	)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	return &dto.CompleteSessionResponse{
		SessionID: sessionID,
		Score:     score,
		Answered:  len(answers),
		Correct:   correct,
	}, nil
}

// DeleteSession cascades to question instances and answers.
func (svc *TestSessionService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	res, err := svc.mongoSvc.TestSessions().DeleteOne(ctx, bson.M{"_id": sessionID, "user_id": userID})
	if err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	if res.DeletedCount == 0 {
		return shared.NewNotFoundError("Sesi tidak ditemukan")
	}

	if _, err := svc.mongoSvc.QuestionInstances().DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	if _, err := svc.mongoSvc.Answers().DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	return nil
}

func MapSessionToResponse(session *model.TestSession, includeQuestions bool) dto.TestSessionResponse {
	resp := dto.TestSessionResponse{
		ID:                session.ID,
		Mode:              session.Mode,
		Category:          session.Category,
		Difficulty:        session.Difficulty,
		QuestionCount:     session.QuestionCount,
		TimerSeconds:      session.TimerSeconds,
		StartedAt:         session.StartedAt,
		CompletedAt:       session.CompletedAt,
		Score:             session.Score,
		IsPublic:          session.IsPublic,
		PublicID:          session.PublicID,
		IsDraft:           session.IsDraft,
		LastQuestionIndex: session.LastQuestionIndex,
		RemainingSeconds:  session.RemainingSeconds,
	}
	if includeQuestions {
		resp.Questions = session.Questions
	}
	return resp
}
