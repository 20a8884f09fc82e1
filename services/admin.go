package services

import (
	"context"
	"regexp"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

// AdminService exposes the moderation surface: user listing and role or
// membership changes, account removal and a global session listing.
type AdminService struct {
	appContext.DefaultService

	mongoSvc *MongoService
}

const ADMIN_SVC = "admin_svc"

const defaultPageLimit = 20

func (svc AdminService) Id() string {
	return ADMIN_SVC
}

func (svc *AdminService) Start() error {
	svc.mongoSvc = svc.Service(MONGO_SVC).(*MongoService)
	return nil
}

func (svc *AdminService) ListUsers(ctx context.Context, page, limit int, search string) (*dto.AdminUserListResponse, error) {
	page, limit = normalizePage(page, limit)

	filter := bson.M{}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = []bson.M{
			{"email": pattern},
			{"username": pattern},
		}
	}

	total, err := svc.mongoSvc.Users().CountDocuments(ctx, filter)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := svc.mongoSvc.Users().Find(ctx, filter, opts)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	resp := &dto.AdminUserListResponse{
		Users: make([]dto.AdminUserInfo, 0, len(users)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range users {
		u := &users[i]
		resp.Users = append(resp.Users, dto.AdminUserInfo{
			ID:                  u.ID,
			Email:               u.Email,
			Username:            u.Username,
			Role:                u.Role,
			Membership:          u.Membership,
			MembershipExpiresAt: u.MembershipExpiresAt,
			LastSeenAt:          u.LastSeenAt,
			CreatedAt:           u.CreatedAt,
		})
	}
	return resp, nil
}

func (svc *AdminService) UpdateUser(ctx context.Context, userID string, req dto.AdminUpdateUserRequest) (*dto.UserInfo, error) {
	set := bson.M{"updated_at": time.Now()}
	if req.Role != "" {
		set["role"] = req.Role
	}
	if req.Membership != "" {
		set["membership"] = req.Membership
		if req.Membership == shared.MembershipNonMember {
			set["membership_expires_at"] = nil
		}
	}
	if req.MembershipExpiresAt != nil {
		set["membership_expires_at"] = req.MembershipExpiresAt
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err := svc.mongoSvc.Users().
		FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, opts).
		Decode(&user)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	log.WithFields(log.Fields{"user_id": userID, "role": user.Role, "membership": user.Membership}).
		Info("Admin updated user")

	info := MapUserInfo(&user)
	return &info, nil
}

// DeleteUser removes the account and everything keyed on it. Question
// instances hang off sessions rather than the user, so their session ids are
// collected before the sessions go.
func (svc *AdminService) DeleteUser(ctx context.Context, userID string) error {
	res, err := svc.mongoSvc.Users().DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	if res.DeletedCount == 0 {
		return shared.NewNotFoundError("Pengguna tidak ditemukan")
	}

	owned := bson.M{"user_id": userID}

	sessionIDs, err := svc.userSessionIDs(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to collect sessions for cascade")
	}
	if len(sessionIDs) > 0 {
		if _, err := svc.mongoSvc.QuestionInstances().DeleteMany(ctx, questionInstanceFilter(sessionIDs)); err != nil {
			log.WithError(err).WithField("collection", "question_instances").Warn("Failed to cascade user delete")
		}
	}

	for _, coll := range []*mongo.Collection{
		svc.mongoSvc.TestSessions(),
		svc.mongoSvc.Answers(),
		svc.mongoSvc.KreplinResults(),
		svc.mongoSvc.BookProgress(),
		svc.mongoSvc.BookAnnotations(),
	} {
		if _, err := coll.DeleteMany(ctx, owned); err != nil {
			log.WithError(err).WithField("collection", coll.Name()).Warn("Failed to cascade user delete")
		}
	}
	return nil
}

func (svc *AdminService) userSessionIDs(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := svc.mongoSvc.TestSessions().Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}

	var sessions []model.TestSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessionIDList(sessions), nil
}

func sessionIDList(sessions []model.TestSession) []string {
	ids := make([]string, 0, len(sessions))
	for i := range sessions {
		ids = append(ids, sessions[i].ID)
	}
	return ids
}

func questionInstanceFilter(sessionIDs []string) bson.M {
	return bson.M{"session_id": bson.M{"$in": sessionIDs}}
}

func (svc *AdminService) ListSessions(ctx context.Context, page, limit int) (*dto.AdminSessionListResponse, error) {
	page, limit = normalizePage(page, limit)

	total, err := svc.mongoSvc.TestSessions().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := svc.mongoSvc.TestSessions().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	var sessions []model.TestSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	resp := &dto.AdminSessionListResponse{
		Sessions: make([]dto.SessionSummary, 0, len(sessions)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for i := range sessions {
		s := &sessions[i]
		summary := dto.SessionSummary{
			SessionID:     s.ID,
			Mode:          s.Mode,
			Category:      s.Category,
			Difficulty:    s.Difficulty,
			QuestionCount: s.QuestionCount,
			Score:         s.Score,
			CompletedAt:   s.CompletedAt,
		}
		if s.Score != nil {
			summary.Accuracy = *s.Score
		}
		resp.Sessions = append(resp.Sessions, summary)
	}
	return resp, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultPageLimit
	}
	return page, limit
}
