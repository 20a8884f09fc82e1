package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

// BookService manages the PDF library. Files live in MinIO, metadata,
// reading progress and annotations live in Mongo.
type BookService struct {
	appContext.DefaultService

	mongoSvc *MongoService
	minioSvc *MinIOService

	urlExpiry time.Duration
}

const BOOK_SVC = "book_svc"

const maxBookSizeBytes = 100 << 20

func (svc BookService) Id() string {
	return BOOK_SVC
}

func (svc *BookService) Configure(ctx *appContext.Context) error {
	svc.urlExpiry = time.Hour
	return svc.DefaultService.Configure(ctx)
}

func (svc *BookService) Start() error {
	svc.mongoSvc = svc.Service(MONGO_SVC).(*MongoService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

func (svc *BookService) UploadBook(ctx context.Context, uploaderID, title, author, filename string, size int64, reader io.Reader) (*dto.BookResponse, error) {
	if size <= 0 || size > maxBookSizeBytes {
		return nil, shared.NewBadRequestError(nil, "Ukuran berkas tidak valid (maksimal 100MB)")
	}
	if !strings.EqualFold(path.Ext(filename), ".pdf") {
		return nil, shared.NewBadRequestError(nil, "Hanya berkas PDF yang didukung")
	}
	if title == "" {
		title = strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	}

	id, _ := uuid.NewV7()
	fileKey := fmt.Sprintf("books/%s.pdf", id.String())

	if _, err := svc.minioSvc.UploadFile(fileKey, reader, size, "application/pdf"); err != nil {
		return nil, shared.NewServiceUnavailableError("Gagal mengunggah berkas", err)
	}

	now := time.Now()
	book := &model.Book{
		ID:         id.String(),
		Title:      title,
		Author:     author,
		UploaderID: uploaderID,
		FileKey:    fileKey,
		SizeBytes:  size,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := svc.mongoSvc.Books().InsertOne(ctx, book); err != nil {
		// Metadata insert failed, do not leave the object orphaned.
		if delErr := svc.minioSvc.DeleteFile(fileKey); delErr != nil {
			log.WithError(delErr).WithField("file_key", fileKey).Warn("Failed to clean up orphaned upload")
		}
		return nil, svc.mongoSvc.HandleError(err)
	}

	log.WithFields(log.Fields{
		"book_id": book.ID,
		"bucket":  svc.minioSvc.GetBucketName(),
		"size":    size,
	}).Info("Book uploaded")

	return svc.mapBook(book), nil
}

func (svc *BookService) UploadCover(ctx context.Context, bookID, contentType string, size int64, reader io.Reader) (*dto.BookResponse, error) {
	book, err := svc.findBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	ext := ".jpg"
	if strings.Contains(contentType, "png") {
		ext = ".png"
	}
	coverKey := fmt.Sprintf("covers/%s%s", book.ID, ext)

	if _, err := svc.minioSvc.UploadFile(coverKey, reader, size, contentType); err != nil {
		return nil, shared.NewServiceUnavailableError("Gagal mengunggah sampul", err)
	}

	_, err = svc.mongoSvc.Books().UpdateOne(ctx,
		bson.M{"_id": book.ID},
		bson.M{"$set": bson.M{"cover_key": coverKey, "updated_at": time.Now()}},
	)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	book.CoverKey = coverKey

	return svc.mapBook(book), nil
}

func (svc *BookService) ListBooks(ctx context.Context) (*dto.BookListResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := svc.mongoSvc.Books().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	var books []model.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	resp := &dto.BookListResponse{Books: make([]dto.BookResponse, 0, len(books)), Total: len(books)}
	for i := range books {
		resp.Books = append(resp.Books, *svc.mapBook(&books[i]))
	}
	return resp, nil
}

func (svc *BookService) GetBook(ctx context.Context, bookID string) (*dto.BookResponse, error) {
	book, err := svc.findBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return svc.mapBook(book), nil
}

// BookFileURL verifies the stored object still exists before presigning a
// short-lived download URL, so a dangling record yields a 404 instead of a
// redirect to a broken link.
func (svc *BookService) BookFileURL(ctx context.Context, bookID string) (string, error) {
	book, err := svc.findBook(ctx, bookID)
	if err != nil {
		return "", err
	}

	if _, err := svc.minioSvc.GetFileInfo(book.FileKey); err != nil {
		log.WithError(err).WithField("book_id", book.ID).Warn("Book object missing or unreadable")
		return "", shared.NewNotFoundError("Berkas tidak ditemukan")
	}

	return svc.minioSvc.GetFileURL(book.FileKey, svc.urlExpiry)
}

// DeleteBook removes the stored objects, metadata and all per user
// progress and annotations for the book.
func (svc *BookService) DeleteBook(ctx context.Context, bookID string) error {
	book, err := svc.findBook(ctx, bookID)
	if err != nil {
		return err
	}

	if err := svc.minioSvc.DeleteFile(book.FileKey); err != nil {
		log.WithError(err).WithField("file_key", book.FileKey).Warn("Failed to delete book object")
	}
	if book.CoverKey != "" {
		if err := svc.minioSvc.DeleteFile(book.CoverKey); err != nil {
			log.WithError(err).WithField("cover_key", book.CoverKey).Warn("Failed to delete cover object")
		}
	}

	if _, err := svc.mongoSvc.Books().DeleteOne(ctx, bson.M{"_id": book.ID}); err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	if _, err := svc.mongoSvc.BookProgress().DeleteMany(ctx, bson.M{"book_id": book.ID}); err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	if _, err := svc.mongoSvc.BookAnnotations().DeleteMany(ctx, bson.M{"book_id": book.ID}); err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	return nil
}

func (svc *BookService) GetProgress(ctx context.Context, bookID, userID string) (*model.BookProgress, error) {
	var progress model.BookProgress
	err := svc.mongoSvc.BookProgress().
		FindOne(ctx, bson.M{"book_id": bookID, "user_id": userID}).
		Decode(&progress)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &progress, nil
}

func (svc *BookService) SaveProgress(ctx context.Context, bookID, userID string, req dto.SaveProgressRequest) (*model.BookProgress, error) {
	if _, err := svc.findBook(ctx, bookID); err != nil {
		return nil, err
	}

	id, _ := uuid.NewV7()
	now := time.Now()
	filter := bson.M{"book_id": bookID, "user_id": userID}
	update := bson.M{
		"$set":         bson.M{"current_page": req.CurrentPage, "updated_at": now},
		"$setOnInsert": bson.M{"_id": id.String()},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var progress model.BookProgress
	if err := svc.mongoSvc.BookProgress().FindOneAndUpdate(ctx, filter, update, opts).Decode(&progress); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &progress, nil
}

func (svc *BookService) ListAnnotations(ctx context.Context, bookID, userID string) ([]model.BookAnnotation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "page", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := svc.mongoSvc.BookAnnotations().Find(ctx, bson.M{"book_id": bookID, "user_id": userID}, opts)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	annotations := make([]model.BookAnnotation, 0)
	if err := cursor.All(ctx, &annotations); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return annotations, nil
}

func (svc *BookService) CreateAnnotation(ctx context.Context, bookID, userID string, req dto.CreateAnnotationRequest) (*model.BookAnnotation, error) {
	if _, err := svc.findBook(ctx, bookID); err != nil {
		return nil, err
	}

	id, _ := uuid.NewV7()
	annotation := &model.BookAnnotation{
		ID:        id.String(),
		BookID:    bookID,
		UserID:    userID,
		Page:      req.Page,
		Color:     req.Color,
		Note:      req.Note,
		Rects:     req.Rects,
		CreatedAt: time.Now(),
	}

	if _, err := svc.mongoSvc.BookAnnotations().InsertOne(ctx, annotation); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return annotation, nil
}

func (svc *BookService) DeleteAnnotation(ctx context.Context, bookID, userID, annotationID string) error {
	res, err := svc.mongoSvc.BookAnnotations().DeleteOne(ctx, bson.M{
		"_id":     annotationID,
		"book_id": bookID,
		"user_id": userID,
	})
	if err != nil {
		return svc.mongoSvc.HandleError(err)
	}
	if res.DeletedCount == 0 {
		return shared.NewNotFoundError("Anotasi tidak ditemukan")
	}
	return nil
}

func (svc *BookService) findBook(ctx context.Context, bookID string) (*model.Book, error) {
	var book model.Book
	err := svc.mongoSvc.Books().FindOne(ctx, bson.M{"_id": bookID}).Decode(&book)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &book, nil
}

func (svc *BookService) mapBook(book *model.Book) *dto.BookResponse {
	resp := &dto.BookResponse{Book: *book}

	fileURL, err := svc.minioSvc.GetFileURL(book.FileKey, svc.urlExpiry)
	if err != nil {
		log.WithError(err).WithField("book_id", book.ID).Warn("Failed to presign book URL")
	} else {
		resp.FileURL = fileURL
	}

	if book.CoverKey != "" {
		coverURL, err := svc.minioSvc.GetFileURL(book.CoverKey, svc.urlExpiry)
		if err != nil {
			log.WithError(err).WithField("book_id", book.ID).Warn("Failed to presign cover URL")
		} else {
			resp.CoverURL = coverURL
		}
	}
	return resp
}
