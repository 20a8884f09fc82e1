package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
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

type DuelService struct {
	appContext.DefaultService

	mongoSvc *MongoService
}

const DUEL_SVC = "duel_svc"

func (svc DuelService) Id() string {
	return DUEL_SVC
}

func (svc *DuelService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *DuelService) Start() error {
	svc.mongoSvc = svc.Service(MONGO_SVC).(*MongoService)
	return nil
}

func (svc *DuelService) collection(kind string) *mongo.Collection {
	if kind == shared.DuelKindKreplin {
		return svc.mongoSvc.KreplinDuels()
	}
	return svc.mongoSvc.TestDuels()
}

const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewRoomCode returns a 6 character human-readable code. Ambiguous glyphs
// (0/O, 1/I) are excluded.
func NewRoomCode() string {
	code := make([]byte, 6)
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			code[i] = roomCodeAlphabet[0]
			continue
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code)
}

func (svc *DuelService) CreateDuel(ctx context.Context, kind, userID, username string, req dto.CreateDuelRequest) (*model.Duel, error) {
	now := time.Now()
	id, _ := uuid.NewV7()
	duel := &model.Duel{
		ID:       id.String(),
		Kind:     kind,
		RoomCode: NewRoomCode(),
		Status:   shared.DuelStatusWaiting,
		Host: model.DuelParticipant{
			UserID:   userID,
			Username: username,
		},
		Settings: model.DuelSettings{
			DurationSeconds: req.DurationSeconds,
			Category:        req.Category,
			Difficulty:      req.Difficulty,
			QuestionCount:   req.QuestionCount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := svc.collection(kind).InsertOne(ctx, duel); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	duelStatusTotal.WithLabelValues(kind, duel.Status).Inc()
	return duel, nil
}

// findOpenByCode resolves a room code to the single open duel carrying it.
// Completed duels release their code for reuse.
func (svc *DuelService) findOpenByCode(ctx context.Context, kind, roomCode string) (*model.Duel, error) {
	var duel model.Duel
	err := svc.collection(kind).FindOne(ctx, bson.M{
		"room_code": roomCode,
		"status":    bson.M{"$ne": shared.DuelStatusCompleted},
	}).Decode(&duel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.NewNotFoundError("Ruang duel tidak ditemukan")
		}
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &duel, nil
}

// JoinDuel is idempotent for existing participants: re-joining returns the
// current state without resetting readiness.
func (svc *DuelService) JoinDuel(ctx context.Context, kind, userID, username, roomCode string) (*model.Duel, error) {
	duel, err := svc.findOpenByCode(ctx, kind, roomCode)
	if err != nil {
		return nil, err
	}

	if duel.Participant(userID) != nil {
		return duel, nil
	}

	if duel.Guest != nil {
		return nil, shared.NewConflictError("Ruang duel sudah penuh")
	}

	// Claim the guest slot only if it is still empty; a concurrent join
	// loses here instead of overwriting.
	var updated model.Duel
	err = svc.collection(kind).FindOneAndUpdate(ctx,
		bson.M{"_id": duel.ID, "guest": nil},
		bson.M{"$set": bson.M{
			"guest":      model.DuelParticipant{UserID: userID, Username: username},
			"status":     shared.DuelStatusReady,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.NewConflictError("Ruang duel sudah penuh")
		}
		return nil, svc.mongoSvc.HandleError(err)
	}

	duelStatusTotal.WithLabelValues(kind, updated.Status).Inc()
	return &updated, nil
}

func (svc *DuelService) GetDuel(ctx context.Context, kind, userID, roomCode string) (*model.Duel, error) {
	duel, err := svc.findOpenOrCompletedByCode(ctx, kind, roomCode)
	if err != nil {
		return nil, err
	}
	if duel.Participant(userID) == nil {
		return nil, shared.NewForbiddenError("Bukan peserta duel ini")
	}
	return duel, nil
}

func (svc *DuelService) findOpenOrCompletedByCode(ctx context.Context, kind, roomCode string) (*model.Duel, error) {
	// Prefer the open duel; fall back to the most recent completed one so
	// both sides can still poll final results.
	duel, err := svc.findOpenByCode(ctx, kind, roomCode)
	if err == nil {
		return duel, nil
	}
	if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != 404 {
		return nil, err
	}

	var completed model.Duel
	findErr := svc.collection(kind).FindOne(ctx, bson.M{
		"room_code": roomCode,
		"status":    shared.DuelStatusCompleted,
	}).Decode(&completed)
	if findErr != nil {
		if errors.Is(findErr, mongo.ErrNoDocuments) {
			return nil, shared.NewNotFoundError("Ruang duel tidak ditemukan")
		}
		return nil, svc.mongoSvc.HandleError(findErr)
	}
	return &completed, nil
}

// SetReady toggles a participant's ready flag and re-evaluates status. Each
// step touches only the fields it owns so the two participants can never
// overwrite each other's flags.
func (svc *DuelService) SetReady(ctx context.Context, kind, userID, roomCode string, ready bool) (*model.Duel, error) {
	duel, err := svc.findOpenByCode(ctx, kind, roomCode)
	if err != nil {
		return nil, err
	}
	if err := ApplyReady(duel, userID, ready, time.Now()); err != nil {
		return nil, err
	}

	side := participantField(duel, userID)
	now := time.Now()
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Duel
	err = svc.collection(kind).FindOneAndUpdate(ctx,
		bson.M{"_id": duel.ID, "status": bson.M{"$ne": shared.DuelStatusCompleted}},
		bson.M{"$set": bson.M{side + ".ready": ready, "updated_at": now}},
		after,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.NewConflictError("Duel sudah selesai")
		}
		return nil, svc.mongoSvc.HandleError(err)
	}

	// Status follows the flags just written. The filters repeat the flag
	// state so a transition landing on stale flags matches nothing, and the
	// activation filter keeps started_at stamped exactly once.
	if updated.BothReady() {
		err = svc.collection(kind).FindOneAndUpdate(ctx,
			bson.M{
				"_id":         duel.ID,
				"host.ready":  true,
				"guest.ready": true,
				"status":      bson.M{"$nin": []string{shared.DuelStatusActive, shared.DuelStatusCompleted}},
			},
			bson.M{"$set": bson.M{"status": shared.DuelStatusActive, "started_at": now, "updated_at": now}},
			after,
		).Decode(&updated)
	} else {
		status := shared.DuelStatusReady
		if updated.Guest == nil {
			status = shared.DuelStatusWaiting
		}
		err = svc.collection(kind).FindOneAndUpdate(ctx,
			bson.M{
				"_id": duel.ID,
				"$or": []bson.M{
					{"host.ready": bson.M{"$ne": true}},
					{"guest.ready": bson.M{"$ne": true}},
				},
				"status": bson.M{"$ne": shared.DuelStatusCompleted},
			},
			bson.M{
				"$set":   bson.M{"status": status, "updated_at": now},
				"$unset": bson.M{"started_at": ""},
			},
			after,
		).Decode(&updated)
	}
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, svc.mongoSvc.HandleError(err)
		}
		// The duel is already in its target state (or a concurrent toggle
		// moved it on); report whatever is current.
		if err := svc.collection(kind).FindOne(ctx, bson.M{"_id": duel.ID}).Decode(&updated); err != nil {
			return nil, svc.mongoSvc.HandleError(err)
		}
	}

	duelStatusTotal.WithLabelValues(kind, updated.Status).Inc()
	return &updated, nil
}

// SubmitResult records one side's summary; the duel completes only when both
// sides have posted.
func (svc *DuelService) SubmitResult(ctx context.Context, kind, userID, roomCode string, req dto.DuelResultRequest) (*model.Duel, error) {
	duel, err := svc.findOpenByCode(ctx, kind, roomCode)
	if err != nil {
		return nil, err
	}
	if err := ApplyResult(duel, userID, req, time.Now()); err != nil {
		return nil, err
	}

	side := participantField(duel, userID)
	now := time.Now()
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Duel
	err = svc.collection(kind).FindOneAndUpdate(ctx,
		resultSubmissionFilter(duel.ID, side),
		resultSubmissionUpdate(side, req, now),
		after,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// A submission for this side landed between our read and the
			// update; first write wins.
			return nil, shared.NewConflictError("Hasil sudah dikirim")
		}
		return nil, svc.mongoSvc.HandleError(err)
	}

	if updated.BothSubmitted() && updated.Status != shared.DuelStatusCompleted {
		err = svc.collection(kind).FindOneAndUpdate(ctx,
			bson.M{
				"_id":             duel.ID,
				"host.result_id":  bson.M{"$nin": []interface{}{nil, ""}},
				"guest.result_id": bson.M{"$nin": []interface{}{nil, ""}},
				"status":          bson.M{"$ne": shared.DuelStatusCompleted},
			},
			bson.M{"$set": bson.M{"status": shared.DuelStatusCompleted, "updated_at": time.Now()}},
			after,
		).Decode(&updated)
		if err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, svc.mongoSvc.HandleError(err)
			}
			if err := svc.collection(kind).FindOne(ctx, bson.M{"_id": duel.ID}).Decode(&updated); err != nil {
				return nil, svc.mongoSvc.HandleError(err)
			}
		}
		if updated.Status == shared.DuelStatusCompleted {
			log.WithFields(log.Fields{
				"duel_id":   updated.ID,
				"room_code": updated.RoomCode,
			}).Info("Duel completed")
		}
	}

	duelStatusTotal.WithLabelValues(kind, updated.Status).Inc()
	return &updated, nil
}

// participantField names the subdocument owned by userID. Callers validate
// membership first via Participant.
func participantField(duel *model.Duel, userID string) string {
	if duel.Host.UserID == userID {
		return "host"
	}
	return "guest"
}

// resultSubmissionFilter matches the duel only while the submitter's side has
// no result yet; result_id is omitted from the document until the first
// submission, so nil matches exactly the unsubmitted state.
func resultSubmissionFilter(duelID, side string) bson.M {
	return bson.M{"_id": duelID, side + ".result_id": nil}
}

// resultSubmissionUpdate writes one side's result fields and nothing else.
func resultSubmissionUpdate(side string, req dto.DuelResultRequest, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		side + ".result_id":    req.ResultID,
		side + ".answered":     req.Answered,
		side + ".correct":      req.Correct,
		side + ".accuracy":     req.Accuracy,
		side + ".submitted_at": now,
		"updated_at":           now,
	}}
}

// ApplyReady is the pure transition: both ready => active with a shared
// started_at stamped once; any un-ready reverts to ready and clears
// started_at, discarding elapsed time.
func ApplyReady(duel *model.Duel, userID string, ready bool, now time.Time) error {
	if duel.Status == shared.DuelStatusCompleted {
		return shared.NewConflictError("Duel sudah selesai")
	}

	participant := duel.Participant(userID)
	if participant == nil {
		return shared.NewForbiddenError("Bukan peserta duel ini")
	}

	participant.Ready = ready
	duel.UpdatedAt = now

	if duel.BothReady() {
		if duel.Status != shared.DuelStatusActive {
			duel.Status = shared.DuelStatusActive
			stamp := now
			duel.StartedAt = &stamp
		}
		return nil
	}

	// Someone is not ready: an active duel drops back, start time cleared.
	if duel.Guest != nil {
		duel.Status = shared.DuelStatusReady
	} else {
		duel.Status = shared.DuelStatusWaiting
	}
	duel.StartedAt = nil
	return nil
}

// ApplyResult is the pure submission transition. Each side posts once; the
// first write wins and repeats are rejected.
func ApplyResult(duel *model.Duel, userID string, req dto.DuelResultRequest, now time.Time) error {
	participant := duel.Participant(userID)
	if participant == nil {
		return shared.NewForbiddenError("Bukan peserta duel ini")
	}

	if participant.ResultID != "" {
		return shared.NewConflictError("Hasil sudah dikirim")
	}

	participant.ResultID = req.ResultID
	participant.Answered = req.Answered
	participant.Correct = req.Correct
	participant.Accuracy = req.Accuracy
	stamp := now
	participant.SubmittedAt = &stamp
	duel.UpdatedAt = now

	if duel.BothSubmitted() {
		duel.Status = shared.DuelStatusCompleted
	}
	return nil
}
