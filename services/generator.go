package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

// ErrGenerationUnavailable is returned when every key x model combination has
// failed on every attempt. Handlers map it to 503.
var ErrGenerationUnavailable = errors.New("question generation unavailable")

const (
	defaultChunkSize   = 10
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
	cacheTTL           = 10 * time.Minute
)

type GenerationParams struct {
	Mode          string `json:"mode"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
}

// CacheKey identifies the full parameter tuple; identical requests within the
// cache TTL must return the identical question set.
func (p GenerationParams) CacheKey() string {
	return fmt.Sprintf("genq:%s:%s:%s:%d", p.Mode, p.Category, p.Difficulty, p.QuestionCount)
}

type GeneratorService struct {
	appContext.DefaultService

	redisSvc *RedisService

	client      *http.Client
	baseURL     string
	apiKeys     []string
	models      []string
	chunkSize   int
	maxAttempts int
	backoff     time.Duration
}

const GENERATOR_SVC = "generator_svc"

func (svc GeneratorService) Id() string {
	return GENERATOR_SVC
}

func (svc *GeneratorService) Configure(ctx *appContext.Context) error {
	svc.baseURL = os.Getenv("GEMINI_BASE_URL")
	if svc.baseURL == "" {
		svc.baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	keys := os.Getenv("GEMINI_API_KEYS")
	if keys == "" {
		keys = os.Getenv("GEMINI_API_KEY")
	}
	if keys == "" {
		return errors.New("GEMINI_API_KEYS is required")
	}
	svc.apiKeys = splitList(keys)

	models := os.Getenv("GEMINI_MODELS")
	if models == "" {
		models = "gemini-2.0-flash,gemini-1.5-flash"
	}
	svc.models = splitList(models)

	svc.chunkSize = envInt("GEN_CHUNK_SIZE", defaultChunkSize)
	svc.maxAttempts = envInt("GEN_MAX_ATTEMPTS", defaultMaxAttempts)
	svc.backoff = defaultBackoff

	svc.client = &http.Client{Timeout: 120 * time.Second}

	return svc.DefaultService.Configure(ctx)
}

func (svc *GeneratorService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Generate produces exactly params.QuestionCount validated questions, split
// into chunks with per-chunk retry and key x model fallback. No partial
// batches survive a failed chunk.
func (svc *GeneratorService) Generate(ctx context.Context, params GenerationParams) ([]model.Question, error) {
	questions := make([]model.Question, 0, params.QuestionCount)

	for _, size := range chunkCounts(params.QuestionCount, svc.chunkSize) {
		chunk, err := svc.generateChunk(ctx, params, size)
		if err != nil {
			return nil, err
		}
		questions = append(questions, chunk...)
	}

	return questions, nil
}

// GenerateCached consults the 10 minute parameter-tuple cache before calling
// upstream. Only the quick-test flow goes through here.
func (svc *GeneratorService) GenerateCached(ctx context.Context, params GenerationParams) ([]model.Question, error) {
	key := params.CacheKey()

	var cached []model.Question
	if err := svc.redisSvc.GetJSON(ctx, key, &cached); err != nil {
		log.WithError(err).Warn("Generation cache read failed")
	}
	if len(cached) == params.QuestionCount {
		genCacheHitsTotal.Inc()
		return cached, nil
	}

	questions, err := svc.Generate(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := svc.redisSvc.Set(ctx, key, questions, cacheTTL); err != nil {
		log.WithError(err).Warn("Generation cache write failed")
	}

	return questions, nil
}

func (svc *GeneratorService) generateChunk(ctx context.Context, params GenerationParams, count int) ([]model.Question, error) {
	prompt := buildQuestionPrompt(params, count)

	var lastErr error
	for attempt := 1; attempt <= svc.maxAttempts; attempt++ {
		for _, apiKey := range svc.apiKeys {
			for _, modelName := range svc.models {
				genAttemptsTotal.WithLabelValues(modelName).Inc()

				text, err := svc.callModel(ctx, apiKey, modelName, prompt)
				if err != nil {
					lastErr = err
					genFallbacksTotal.WithLabelValues(modelName).Inc()
					log.WithFields(log.Fields{
						"model":   modelName,
						"attempt": attempt,
						"error":   err.Error(),
					}).Warn("Generation call failed, trying next credential/model")
					continue
				}

				questions, err := parseQuestions(text, params, count)
				if err != nil {
					lastErr = err
					genFallbacksTotal.WithLabelValues(modelName).Inc()
					log.WithFields(log.Fields{
						"model":   modelName,
						"attempt": attempt,
						"error":   err.Error(),
					}).Warn("Generation response invalid, trying next credential/model")
					continue
				}

				return questions, nil
			}
		}

		if attempt < svc.maxAttempts {
			// Linear backoff between full sweeps.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * svc.backoff):
			}
		}
	}

	log.WithError(lastErr).Error("All generation credentials and models exhausted")
	return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, lastErr)
}

// GenerateText runs a free-form prompt through the same fallback chain and
// returns the raw model text. Used for the Kreplin qualitative analysis.
func (svc *GeneratorService) GenerateText(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= svc.maxAttempts; attempt++ {
		for _, apiKey := range svc.apiKeys {
			for _, modelName := range svc.models {
				text, err := svc.callModel(ctx, apiKey, modelName, prompt)
				if err != nil {
					lastErr = err
					continue
				}
				if strings.TrimSpace(text) == "" {
					lastErr = errors.New("empty model response")
					continue
				}
				return text, nil
			}
		}
		if attempt < svc.maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * svc.backoff):
			}
		}
	}
	return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, lastErr)
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (svc *GeneratorService) callModel(ctx context.Context, apiKey, modelName, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", svc.baseURL, modelName, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API error (status %d): %.200s", resp.StatusCode, string(body))
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("generation API error: %s", response.Error.Message)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty candidates in response")
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}

// chunkCounts splits total into batches of at most size.
func chunkCounts(total, size int) []int {
	if total <= 0 {
		return nil
	}
	if size <= 0 {
		size = defaultChunkSize
	}

	var chunks []int
	for total > 0 {
		n := size
		if total < size {
			n = total
		}
		chunks = append(chunks, n)
		total -= n
	}
	return chunks
}

// extractJSONArray returns the substring between the first '[' and the last
// ']' when the text is not already a clean JSON array. Models habitually wrap
// arrays in prose or markdown fences.
func extractJSONArray(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return trimmed, nil
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start == -1 || end == -1 || end <= start {
		return "", errors.New("no JSON array found in model response")
	}
	return trimmed[start : end+1], nil
}

type rawQuestion struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Question string `json:"question"`
	Options  []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	} `json:"options"`
	CorrectOptionLabel string `json:"correct_option_label"`
	Explanation        string `json:"explanation"`
}

func parseQuestions(text string, params GenerationParams, count int) ([]model.Question, error) {
	arrayText, err := extractJSONArray(text)
	if err != nil {
		return nil, err
	}

	var raw []rawQuestion
	if err := json.Unmarshal([]byte(arrayText), &raw); err != nil {
		return nil, fmt.Errorf("invalid question JSON: %v", err)
	}

	if len(raw) < count {
		return nil, fmt.Errorf("model returned %d questions, need %d", len(raw), count)
	}
	raw = raw[:count]

	questions := make([]model.Question, 0, count)
	for i, rq := range raw {
		q := model.Question{
			Type:               rq.Type,
			Category:           params.Category,
			Difficulty:         params.Difficulty,
			Text:               rq.Text,
			CorrectOptionLabel: rq.CorrectOptionLabel,
			Explanation:        rq.Explanation,
		}
		if q.Type == "" {
			q.Type = shared.QuestionTypeMultipleChoice
		}
		if q.Text == "" {
			q.Text = rq.Question
		}
		for _, opt := range rq.Options {
			q.Options = append(q.Options, model.QuestionOption{Label: opt.Label, Text: opt.Text})
		}

		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %v", i, err)
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func validateQuestion(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("empty question text")
	}
	if len(q.Options) < 2 {
		return errors.New("fewer than 2 options")
	}

	seen := make(map[string]bool, len(q.Options))
	correctFound := false
	for _, opt := range q.Options {
		if strings.TrimSpace(opt.Label) == "" {
			return errors.New("option with empty label")
		}
		if seen[opt.Label] {
			return fmt.Errorf("duplicate option label %q", opt.Label)
		}
		seen[opt.Label] = true
		if opt.Label == q.CorrectOptionLabel {
			correctFound = true
		}
	}

	if q.CorrectOptionLabel == "" {
		return errors.New("missing correct option label")
	}
	if !correctFound {
		return fmt.Errorf("correct label %q not among options", q.CorrectOptionLabel)
	}
	return nil
}

var categoryInstructions = map[string]string{
	shared.CategoryVerbal:      "Fokus pada sinonim, antonim, analogi kata, dan pemahaman bacaan singkat.",
	shared.CategoryNumeric:     "Fokus pada deret angka, aritmetika cepat, persentase, dan soal cerita numerik.",
	shared.CategoryLogic:       "Fokus pada silogisme, penalaran logis, dan pola deduktif.",
	shared.CategorySpatial:     "Fokus pada rotasi bangun, pencerminan, dan pola visual yang dideskripsikan secara tekstual.",
	shared.CategoryAnalytic:    "Fokus pada penalaran analitis: penjadwalan, urutan, dan kombinasi kondisi.",
	shared.CategoryKepribadian: "Fokus pada situasi kerja dan pilihan sikap; tandai jawaban yang paling sesuai norma profesional sebagai benar.",
}

func buildQuestionPrompt(params GenerationParams, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Buat %d soal pilihan ganda untuk latihan %s, kategori %s, tingkat kesulitan %s.\n\n",
		count, params.Mode, params.Category, params.Difficulty)

	if instr, ok := categoryInstructions[params.Category]; ok {
		b.WriteString(instr)
		b.WriteString("\n\n")
	}

	b.WriteString(`Balas HANYA dengan array JSON valid, tanpa teks lain, dengan format:
[
  {
    "type": "multiple_choice",
    "text": "teks soal",
    "options": [
      {"label": "A", "text": "pilihan A"},
      {"label": "B", "text": "pilihan B"},
      {"label": "C", "text": "pilihan C"},
      {"label": "D", "text": "pilihan D"}
    ],
    "correct_option_label": "A",
    "explanation": "penjelasan singkat jawaban"
  }
]

Setiap soal wajib punya minimal 2 pilihan dengan label unik, satu label jawaban benar yang ada di daftar pilihan, dan penjelasan.`)

	return b.String()
}
