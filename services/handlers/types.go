package handlers

import (
	"context"
	"io"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/services"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

type JWTServiceInterface interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	VerifyJWTToken(token string) (string, string, error)
}

type QuickTestServiceInterface interface {
	CreateQuickTest(ctx context.Context, params services.GenerationParams) (*model.QuickSession, error)
	GetSession(id string) (*model.QuickSession, error)
	ListSessions() ([]*model.QuickSession, error)
	DeleteSession(id string) error
	SubmitAnswer(id string, questionIndex int, selectedLabel string, timeSpent int) (*model.QuickAnswer, error)
	SetCurrentIndex(id string, index int) (*model.QuickSession, error)
	Complete(id string) (*model.QuickSession, error)
}

type TestSessionServiceInterface interface {
	CreateSession(ctx context.Context, userID string, req dto.CreateTestSessionRequest) (*model.TestSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*model.TestSession, error)
	GetPublicSession(ctx context.Context, publicID string) (*model.TestSession, error)
	Publish(ctx context.Context, userID, sessionID string) (*dto.PublishSessionResponse, error)
	Unpublish(ctx context.Context, userID, sessionID string) (*dto.PublishSessionResponse, error)
	SubmitAnswer(ctx context.Context, userID, sessionID string, req dto.SubmitAnswerRequest) (*dto.AnswerResponse, error)
	SaveDraft(ctx context.Context, userID, sessionID string, req dto.SaveDraftRequest) error
	Complete(ctx context.Context, userID, sessionID string) (*dto.CompleteSessionResponse, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

type DuelServiceInterface interface {
	CreateDuel(ctx context.Context, kind, userID, username string, req dto.CreateDuelRequest) (*model.Duel, error)
	JoinDuel(ctx context.Context, kind, userID, username, roomCode string) (*model.Duel, error)
	GetDuel(ctx context.Context, kind, userID, roomCode string) (*model.Duel, error)
	SetReady(ctx context.Context, kind, userID, roomCode string, ready bool) (*model.Duel, error)
	SubmitResult(ctx context.Context, kind, userID, roomCode string, req dto.DuelResultRequest) (*model.Duel, error)
}

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error)
}

type KreplinServiceInterface interface {
	CreateResult(ctx context.Context, userID string, req dto.CreateKreplinResultRequest) (*model.KreplinResult, error)
	GetResult(ctx context.Context, userID, resultID string) (*model.KreplinResult, error)
	Analyze(ctx context.Context, userID, resultID string) (*dto.KreplinAnalysisResponse, error)
}

type BookServiceInterface interface {
	UploadBook(ctx context.Context, uploaderID, title, author, filename string, size int64, reader io.Reader) (*dto.BookResponse, error)
	UploadCover(ctx context.Context, bookID, contentType string, size int64, reader io.Reader) (*dto.BookResponse, error)
	ListBooks(ctx context.Context) (*dto.BookListResponse, error)
	GetBook(ctx context.Context, bookID string) (*dto.BookResponse, error)
	BookFileURL(ctx context.Context, bookID string) (string, error)
	DeleteBook(ctx context.Context, bookID string) error
	GetProgress(ctx context.Context, bookID, userID string) (*model.BookProgress, error)
	SaveProgress(ctx context.Context, bookID, userID string, req dto.SaveProgressRequest) (*model.BookProgress, error)
	ListAnnotations(ctx context.Context, bookID, userID string) ([]model.BookAnnotation, error)
	CreateAnnotation(ctx context.Context, bookID, userID string, req dto.CreateAnnotationRequest) (*model.BookAnnotation, error)
	DeleteAnnotation(ctx context.Context, bookID, userID, annotationID string) error
}

type AdminServiceInterface interface {
	ListUsers(ctx context.Context, page, limit int, search string) (*dto.AdminUserListResponse, error)
	UpdateUser(ctx context.Context, userID string, req dto.AdminUpdateUserRequest) (*dto.UserInfo, error)
	DeleteUser(ctx context.Context, userID string) error
	ListSessions(ctx context.Context, page, limit int) (*dto.AdminSessionListResponse, error)
}
