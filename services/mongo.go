package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psikotes-ai/psikotes_api/shared"
)

type MongoService struct {
	appContext.DefaultService

	client   *mongo.Client
	db       *mongo.Database
	uri      string
	database string
}

const MONGO_SVC = "mongo_svc"

func (svc MongoService) Id() string {
	return MONGO_SVC
}

func (svc *MongoService) Db() *mongo.Database {
	return svc.db
}

func (svc *MongoService) Configure(ctx *appContext.Context) error {
	svc.uri = os.Getenv("MONGODB_URI")
	if svc.uri == "" {
		svc.uri = "mongodb://localhost:27017"
	}

	svc.database = os.Getenv("MONGODB_DATABASE")
	if svc.database == "" {
		svc.database = "psikotes_ai"
	}

	return svc.DefaultService.Configure(ctx)
}

// Start opens the pooled client and pings with retry, then ensures indexes.
func (svc *MongoService) Start() error {
	maxRetries := 10
	retryDelay := time.Second

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to MongoDB (attempt %d/%d)...", attempt, maxRetries)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		svc.client, err = mongo.Connect(ctx, options.Client().ApplyURI(svc.uri))
		if err == nil {
			err = svc.client.Ping(ctx, nil)
		}
		cancel()

		if err == nil {
			log.Println("Successfully connected to MongoDB")
			break
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to MongoDB after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("MongoDB connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	svc.db = svc.client.Database(svc.database)

	if err := svc.ensureIndexes(); err != nil {
		log.Printf("Failed to ensure indexes: %v", err)
		return err
	}

	log.Println("MongoDB connected and indexes ensured")
	return nil
}

func (svc *MongoService) Shutdown() {
	if svc.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.client.Disconnect(ctx)
	}
}

func (svc *MongoService) Users() *mongo.Collection        { return svc.db.Collection("users") }
func (svc *MongoService) TestSessions() *mongo.Collection { return svc.db.Collection("test_sessions") }
func (svc *MongoService) QuestionInstances() *mongo.Collection {
	return svc.db.Collection("question_instances")
}
func (svc *MongoService) Answers() *mongo.Collection { return svc.db.Collection("answers") }
func (svc *MongoService) KreplinResults() *mongo.Collection {
	return svc.db.Collection("kreplin_results")
}
func (svc *MongoService) KreplinDuels() *mongo.Collection { return svc.db.Collection("kreplin_duels") }
func (svc *MongoService) TestDuels() *mongo.Collection    { return svc.db.Collection("test_duels") }
func (svc *MongoService) Books() *mongo.Collection        { return svc.db.Collection("books") }
func (svc *MongoService) BookProgress() *mongo.Collection { return svc.db.Collection("book_progress") }
func (svc *MongoService) BookAnnotations() *mongo.Collection {
	return svc.db.Collection("book_annotations")
}

func (svc *MongoService) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{svc.Users(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{svc.TestSessions(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			// At most one session per public_id; partial so unset values never collide.
			{
				Keys: bson.D{{Key: "public_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"public_id": bson.M{"$exists": true, "$type": "string"}}),
			},
		}},
		{svc.QuestionInstances(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "question_index", Value: 1}}},
		}},
		{svc.Answers(), []mongo.IndexModel{
			// Re-answering overwrites via upsert; duplicates are a bug.
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "question_index", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		}},
		{svc.KreplinResults(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
		{svc.KreplinDuels(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "room_code", Value: 1}, {Key: "status", Value: 1}}},
		}},
		{svc.TestDuels(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "room_code", Value: 1}, {Key: "status", Value: 1}}},
		}},
		{svc.Books(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "uploader_id", Value: 1}}},
		}},
		{svc.BookProgress(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{svc.BookAnnotations(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "page", Value: 1}}},
		}},
	}

	for _, set := range indexes {
		if _, err := set.col.Indexes().CreateMany(ctx, set.models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", set.col.Name(), err)
		}
	}

	return nil
}

// HandleError maps driver errors onto AppErrors the HTTP layer understands.
func (svc *MongoService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case mongo.IsDuplicateKeyError(err):
		statusCode = http.StatusConflict
		errorType = "DUPLICATE_KEY"
	case mongo.IsTimeout(err):
		statusCode = http.StatusServiceUnavailable
		errorType = "TIMEOUT"
	case mongo.IsNetworkError(err):
		statusCode = http.StatusServiceUnavailable
		errorType = "DATABASE_CONNECTION_ERROR"
	default:
		statusCode = http.StatusInternalServerError
		errorType = "INTERNAL_ERROR"
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	switch statusCode {
	case http.StatusNotFound:
		return shared.NewNotFoundError("")
	case http.StatusConflict:
		return shared.NewConflictError("Conflict")
	case http.StatusServiceUnavailable:
		return shared.NewAppError(statusCode, shared.MsgInternalError, err)
	default:
		return shared.NewAppError(statusCode, shared.MsgInternalError, err)
	}
}
