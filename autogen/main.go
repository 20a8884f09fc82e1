package main

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/psikotes-ai/psikotes_api/shared"
)

// Cache warmer. Cycles through the mode, category and difficulty
// combinations and asks the API to generate each batch so the first real
// user of a combination hits the Redis cache instead of the AI provider.

const defaultQuestionCount = 10

type generateRequest struct {
	Mode          string `json:"mode"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
}

type warmer struct {
	baseURL string
	client  *http.Client

	combos []generateRequest
	next   int
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("No .env file loaded")
	}

	baseURL := os.Getenv("AUTOGEN_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	intervalMinutes := 15
	if v := os.Getenv("AUTOGEN_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			intervalMinutes = n
		}
	}

	w := &warmer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Minute},
		combos:  buildCombos(),
	}

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(intervalMinutes).Minutes().Do(w.warmNext); err != nil {
		log.WithError(err).Fatal("Failed to schedule cache warmer")
	}
	scheduler.StartAsync()

	log.WithFields(log.Fields{
		"api_url":          baseURL,
		"interval_minutes": intervalMinutes,
		"combinations":     len(w.combos),
	}).Info("Cache warmer started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	scheduler.Stop()
	log.Info("Cache warmer stopped")
}

func buildCombos() []generateRequest {
	modes := []string{shared.TestModePsikotes, shared.TestModeCPNS, shared.TestModeTPA}

	var combos []generateRequest
	for _, mode := range modes {
		for _, category := range shared.ValidCategories() {
			for _, difficulty := range shared.ValidDifficulties() {
				combos = append(combos, generateRequest{
					Mode:          mode,
					Category:      category,
					Difficulty:    difficulty,
					QuestionCount: defaultQuestionCount,
				})
			}
		}
	}
	return combos
}

// warmNext fires one combination per tick to stay inside provider quotas.
func (w *warmer) warmNext() {
	combo := w.combos[w.next]
	w.next = (w.next + 1) % len(w.combos)

	entry := log.WithFields(log.Fields{
		"mode":       combo.Mode,
		"category":   combo.Category,
		"difficulty": combo.Difficulty,
	})

	body, err := sonic.Marshal(combo)
	if err != nil {
		entry.WithError(err).Error("Failed to marshal warm request")
		return
	}

	resp, err := w.client.Post(
		fmt.Sprintf("%s/api/v1/generate-questions", w.baseURL),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		entry.WithError(err).Warn("Warm request failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		entry.WithField("status", resp.StatusCode).Warn("Warm request rejected")
		return
	}

	entry.Info("Combination warmed")
}
