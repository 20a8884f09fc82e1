package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type KreplinService struct {
	appContext.DefaultService

	mongoSvc     *MongoService
	generatorSvc *GeneratorService
}

const KREPLIN_SVC = "kreplin_svc"

func (svc KreplinService) Id() string {
	return KREPLIN_SVC
}

func (svc *KreplinService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *KreplinService) Start() error {
	svc.mongoSvc = svc.Service(MONGO_SVC).(*MongoService)
	svc.generatorSvc = svc.Service(GENERATOR_SVC).(*GeneratorService)
	return nil
}

func (svc *KreplinService) CreateResult(ctx context.Context, userID string, req dto.CreateKreplinResultRequest) (*model.KreplinResult, error) {
	id, _ := uuid.NewV7()
	result := &model.KreplinResult{
		ID:              id.String(),
		UserID:          userID,
		DurationSeconds: req.DurationSeconds,
		TotalAnswered:   req.TotalAnswered,
		TotalCorrect:    req.TotalCorrect,
		TotalIncorrect:  req.TotalIncorrect,
		Accuracy:        safeRatio(req.TotalCorrect, req.TotalAnswered) * 100,
		Sections:        req.Sections,
		PerMinute:       req.PerMinute,
		CreatedAt:       time.Now(),
	}

	if _, err := svc.mongoSvc.KreplinResults().InsertOne(ctx, result); err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return result, nil
}

func (svc *KreplinService) GetResult(ctx context.Context, userID, resultID string) (*model.KreplinResult, error) {
	var result model.KreplinResult
	err := svc.mongoSvc.KreplinResults().FindOne(ctx, bson.M{"_id": resultID, "user_id": userID}).Decode(&result)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}
	return &result, nil
}

// Analyze generates the qualitative text at most once per result; repeat
// calls return the stored analysis without an upstream call.
func (svc *KreplinService) Analyze(ctx context.Context, userID, resultID string) (*dto.KreplinAnalysisResponse, error) {
	result, err := svc.GetResult(ctx, userID, resultID)
	if err != nil {
		return nil, err
	}

	if result.Analysis != "" {
		return &dto.KreplinAnalysisResponse{
			ResultID: resultID,
			Analysis: result.Analysis,
			Cached:   true,
		}, nil
	}

	analysis, err := svc.generatorSvc.GenerateText(ctx, buildKreplinAnalysisPrompt(result))
	if err != nil {
		if errors.Is(err, ErrGenerationUnavailable) {
			return nil, shared.NewServiceUnavailableError(shared.MsgGenerationUnavailable, err)
		}
		return nil, err
	}
	analysis = strings.TrimSpace(analysis)

	// Write only if still empty; a concurrent analyze that won the race keeps
	// its text.
	res, err := svc.mongoSvc.KreplinResults().UpdateOne(ctx,
		bson.M{"_id": resultID, "analysis": bson.M{"$in": []interface{}{nil, ""}}},
		bson.M{"$set": bson.M{"analysis": analysis}},
	)
	if err != nil {
		return nil, svc.mongoSvc.HandleError(err)
	}

	if res.ModifiedCount == 0 {
		stored, err := svc.GetResult(ctx, userID, resultID)
		if err != nil {
			return nil, err
		}
		log.WithField("result_id", resultID).Info("Analysis already written, returning stored text")
		return &dto.KreplinAnalysisResponse{
			ResultID: resultID,
			Analysis: stored.Analysis,
			Cached:   true,
		}, nil
	}

	return &dto.KreplinAnalysisResponse{
		ResultID: resultID,
		Analysis: analysis,
		Cached:   false,
	}, nil
}

func buildKreplinAnalysisPrompt(result *model.KreplinResult) string {
	var b strings.Builder

	b.WriteString("Berikut hasil tes koran (Kreplin) seorang peserta. Buat analisis kualitatif singkat (3-5 paragraf) dalam Bahasa Indonesia tentang konsentrasi, konsistensi, dan ketahanan kerja peserta. Jangan gunakan format JSON, cukup teks biasa.\n\n")

	fmt.Fprintf(&b, "Durasi: %d detik\n", result.DurationSeconds)
	fmt.Fprintf(&b, "Total dijawab: %d, benar: %d, salah: %d, akurasi: %.1f%%\n",
		result.TotalAnswered, result.TotalCorrect, result.TotalIncorrect, result.Accuracy)

	if len(result.Sections) > 0 {
		b.WriteString("Per bagian:\n")
		for _, s := range result.Sections {
			fmt.Fprintf(&b, "- bagian %d: dijawab %d, benar %d, akurasi %.1f%%\n",
				s.Section, s.Answered, s.Correct, s.Accuracy)
		}
	}
	if len(result.PerMinute) > 0 {
		b.WriteString("Per menit:\n")
		for _, m := range result.PerMinute {
			fmt.Fprintf(&b, "- menit %d: dijawab %d, benar %d\n", m.Minute, m.Answered, m.Correct)
		}
	}

	return b.String()
}
