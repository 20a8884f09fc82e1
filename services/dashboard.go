package services

import (
	"context"

	appContext "github.com/alphabatem/common/context"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
)

type DashboardService struct {
	appContext.DefaultService

	mongoSvc *MongoService
}

const DASHBOARD_SVC = "dashboard_svc"

func (svc DashboardService) Id() string {
	return DASHBOARD_SVC
}

func (svc *DashboardService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *DashboardService) Start() error {
	svc.mongoSvc = svc.Service(MONGO_SVC).(*MongoService)
	return nil
}

type answerTotals struct {
	Answered  int `bson:"answered"`
	Correct   int `bson:"correct"`
	TimeSpent int `bson:"time_spent"`
}

type categoryTotals struct {
	Category string `bson:"_id"`
	Answered int    `bson:"answered"`
	Correct  int    `bson:"correct"`
}

type sessionTotals struct {
	SessionID string `bson:"_id"`
	Answered  int    `bson:"answered"`
	Correct   int    `bson:"correct"`
}

// GetDashboard runs the grouped aggregations backing the analytics screen.
// Every ratio guards divide-by-zero to 0.
func (svc *DashboardService) GetDashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{
		UserID:            userID,
		CategoryBreakdown: []dto.CategoryAccuracy{},
		RecentSessions:    []dto.SessionSummary{},
	}

	// Overall answer totals.
	cursor, err := svc.mongoSvc.Answers().Aggregate(ctx, []bson.M{
		{"$match": bson.M{"user_id": userID}},
		{"$group": bson.M{
			"_id":        nil,
			"answered":   bson.M{"$sum": 1},
			"correct":    bson.M{"$sum": bson.M{"$cond": []interface{}{"$is_correct", 1, 0}}},
			"time_spent": bson.M{"$sum": "$time_spent_seconds"},
		}},
	})
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	var totals []answerTotals
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	if len(totals) > 0 {
		t := totals[0]
		resp.TotalAnswered = t.Answered
		resp.TotalCorrect = t.Correct
		resp.TotalIncorrect = t.Answered - t.Correct
		resp.AverageAccuracy = safeRatio(t.Correct, t.Answered) * 100
		resp.AverageSecondsPerQ = safeRatio(t.TimeSpent, t.Answered)
	}

	// Per-category accuracy.
	cursor, err = svc.mongoSvc.Answers().Aggregate(ctx, []bson.M{
		{"$match": bson.M{"user_id": userID}},
		{"$group": bson.M{
			"_id":      "$category",
			"answered": bson.M{"$sum": 1},
			"correct":  bson.M{"$sum": bson.M{"$cond": []interface{}{"$is_correct", 1, 0}}},
		}},
		{"$sort": bson.M{"_id": 1}},
	})
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	var categories []categoryTotals
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	for _, c := range categories {
		resp.CategoryBreakdown = append(resp.CategoryBreakdown, dto.CategoryAccuracy{
			Category: c.Category,
			Answered: c.Answered,
			Correct:  c.Correct,
			Accuracy: safeRatio(c.Correct, c.Answered) * 100,
		})
	}

	// Completed session count.
	count, err := svc.mongoSvc.TestSessions().CountDocuments(ctx, bson.M{
		"user_id":      userID,
		"completed_at": bson.M{"$ne": nil},
	})
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	resp.CompletedSessions = int(count)

	// Last 20 sessions with per-session accuracy.
	findCursor, err := svc.mongoSvc.TestSessions().Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(20),
	)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	var sessions []model.TestSession
	if err := findCursor.All(ctx, &sessions); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	if len(sessions) > 0 {
		ids := make([]string, 0, len(sessions))
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}

		cursor, err = svc.mongoSvc.Answers().Aggregate(ctx, []bson.M{
			{"$match": bson.M{"session_id": bson.M{"$in": ids}}},
			{"$group": bson.M{
				"_id":      "$session_id",
				"answered": bson.M{"$sum": 1},
				"correct":  bson.M{"$sum": bson.M{"$cond": []interface{}{"$is_correct", 1, 0}}},
			}},
		})
		if err != nil {
			return nil, svc.mongoSvc.HandleError(err)
		}
		var perSession []sessionTotals
		if err := cursor.All(ctx, &perSession); err != nil {
			return nil, svc.mongoSvc.HandleError(err)
		}

		bySession := make(map[string]sessionTotals, len(perSession))
		for _, s := range perSession {
			bySession[s.SessionID] = s
		}

		for _, s := range sessions {
			st := bySession[s.ID]
			resp.RecentSessions = append(resp.RecentSessions, dto.SessionSummary{
				SessionID:     s.ID,
				Mode:          s.Mode,
				Category:      s.Category,
				Difficulty:    s.Difficulty,
				QuestionCount: s.QuestionCount,
				Score:         s.Score,
				Accuracy:      safeRatio(st.Correct, st.Answered) * 100,
				CompletedAt:   s.CompletedAt,
			})
		}
	}

	return resp, nil
}

func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
