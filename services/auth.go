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
	"golang.org/x/crypto/bcrypt"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type AuthService struct {
	appContext.DefaultService

	mongoSvc *MongoService
	jwtSvc   *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.mongoSvc = svc.Service(MONGO_SVC).(*MongoService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id, _ := uuid.NewV7()
	user := &model.User{
		ID:         id.String(),
		Email:      req.Email,
		Username:   req.Username,
		Password:   string(hash),
		Role:       shared.RoleUser,
		Membership: shared.MembershipNonMember,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := svc.mongoSvc.Users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, shared.NewConflictError("Email sudah terdaftar")
		}
		return nil, svc.mongoSvc.HandleError(err)
	}

	log.WithField("user_id", user.ID).Info("User registered")

	return &dto.RegisterResponse{
		UserID:  user.ID,
		Message: "Registrasi berhasil",
	}, nil
}

// Login verifies credentials, stamps last_seen_at and issues the 7 day token.
func (svc *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var user model.User
	err := svc.mongoSvc.Users().FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.NewUnauthorizedError("Email atau kata sandi salah")
		}
		return nil, svc.mongoSvc.HandleError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError("Email atau kata sandi salah")
	}

	now := time.Now()
	_, err = svc.mongoSvc.Users().UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"last_seen_at": now, "updated_at": now}},
	)
	if err != nil {
		log.WithError(err).Warn("Failed to stamp last seen")
	}
	user.LastSeenAt = &now

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		User:        MapUserInfo(&user),
	}, nil
}

func (svc *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := svc.mongoSvc.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &user, nil
}

func MapUserInfo(user *model.User) dto.UserInfo {
	return dto.UserInfo{
		ID:                  user.ID,
		Username:            user.Username,
		Email:               user.Email,
		Role:                user.Role,
		Membership:          user.Membership,
		MembershipExpiresAt: user.MembershipExpiresAt,
		CreatedAt:           user.CreatedAt,
		LastSeenAt:          user.LastSeenAt,
	}
}
