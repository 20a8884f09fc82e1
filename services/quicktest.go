package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

// QuickTestService owns the anonymous quick-test flow: an in-process map of
// sessions mirrored to a JSON snapshot file so records survive restarts. A
// dedicated writer goroutine holds the single-in-flight write invariant:
// mutations mark the store dirty and wake the writer; a mutation landing
// while a write is in flight triggers a fresh full-snapshot write afterwards.
// There is deliberately no cross-process guard; concurrent processes sharing
// the file last-write-win on flush.
type QuickTestService struct {
	appContext.DefaultService

	generatorSvc *GeneratorService

	filePath string

	mu       sync.RWMutex
	loaded   bool
	sessions map[string]*model.QuickSession

	dirty      chan struct{}
	closed     chan struct{}
	writerDone chan struct{}
}

const QUICKTEST_SVC = "quicktest_svc"

func (svc QuickTestService) Id() string {
	return QUICKTEST_SVC
}

func (svc *QuickTestService) Configure(ctx *appContext.Context) error {
	svc.filePath = os.Getenv("QUICKTEST_FILE")
	if svc.filePath == "" {
		svc.filePath = "data/quick_sessions.json"
	}

	svc.sessions = make(map[string]*model.QuickSession)
	svc.dirty = make(chan struct{}, 1)
	svc.closed = make(chan struct{})
	svc.writerDone = make(chan struct{})

	return svc.DefaultService.Configure(ctx)
}

func (svc *QuickTestService) Start() error {
	svc.generatorSvc = svc.Service(GENERATOR_SVC).(*GeneratorService)

	go svc.writerLoop()
	return nil
}

func (svc *QuickTestService) Shutdown() {
	close(svc.closed)
	// Wait for the writer goroutine to finish any in-flight snapshot before
	// the final flush; two writers on the same tmp path would race.
	<-svc.writerDone
	if err := svc.flush(); err != nil {
		log.WithError(err).Warn("Final quick-session flush failed")
	}
}

// ensureLoaded lazily reads the snapshot file on first access.
func (svc *QuickTestService) ensureLoaded() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.loaded {
		return nil
	}

	data, err := os.ReadFile(svc.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			svc.loaded = true
			return nil
		}
		return err
	}

	var records map[string]*model.QuickSession
	if err := sonic.Unmarshal(data, &records); err != nil {
		// A corrupt snapshot should not take the flow down.
		log.WithError(err).Warn("Quick-session snapshot unreadable, starting empty")
		svc.loaded = true
		return nil
	}

	svc.sessions = records
	svc.loaded = true
	return nil
}

func (svc *QuickTestService) markDirty() {
	select {
	case svc.dirty <- struct{}{}:
	default:
	}
}

func (svc *QuickTestService) writerLoop() {
	defer close(svc.writerDone)
	for {
		select {
		case <-svc.closed:
			return
		case <-svc.dirty:
			if err := svc.flush(); err != nil {
				log.WithError(err).Error("Quick-session snapshot write failed")
			}
		}
	}
}

// flush rewrites the whole snapshot. Runs only on the writer goroutine (and
// once at shutdown).
func (svc *QuickTestService) flush() error {
	svc.mu.RLock()
	data, err := sonic.Marshal(svc.sessions)
	svc.mu.RUnlock()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(svc.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := svc.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, svc.filePath)
}

// ==================== store primitives ====================

func (svc *QuickTestService) GetSession(id string) (*model.QuickSession, error) {
	if err := svc.ensureLoaded(); err != nil {
		return nil, err
	}

	svc.mu.RLock()
	defer svc.mu.RUnlock()

	session, ok := svc.sessions[id]
	if !ok {
		return nil, shared.NewNotFoundError("Sesi tidak ditemukan")
	}

	return session.Clone(), nil
}

// SetSession stores a private copy; the caller keeps ownership of its
// argument.
func (svc *QuickTestService) SetSession(session *model.QuickSession) error {
	if err := svc.ensureLoaded(); err != nil {
		return err
	}

	svc.mu.Lock()
	svc.sessions[session.ID] = session.Clone()
	svc.mu.Unlock()

	svc.markDirty()
	return nil
}

// UpdateSession applies transform under the lock; returning nil deletes the
// record.
func (svc *QuickTestService) UpdateSession(id string, transform func(*model.QuickSession) *model.QuickSession) (*model.QuickSession, error) {
	if err := svc.ensureLoaded(); err != nil {
		return nil, err
	}

	svc.mu.Lock()
	session, ok := svc.sessions[id]
	if !ok {
		svc.mu.Unlock()
		return nil, shared.NewNotFoundError("Sesi tidak ditemukan")
	}

	updated := transform(session)
	var result *model.QuickSession
	if updated == nil {
		delete(svc.sessions, id)
	} else {
		svc.sessions[id] = updated
		result = updated.Clone()
	}
	svc.mu.Unlock()

	svc.markDirty()
	return result, nil
}

func (svc *QuickTestService) DeleteSession(id string) error {
	_, err := svc.UpdateSession(id, func(*model.QuickSession) *model.QuickSession {
		return nil
	})
	return err
}

func (svc *QuickTestService) ListSessions() ([]*model.QuickSession, error) {
	if err := svc.ensureLoaded(); err != nil {
		return nil, err
	}

	svc.mu.RLock()
	defer svc.mu.RUnlock()

	out := make([]*model.QuickSession, 0, len(svc.sessions))
	for _, s := range svc.sessions {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ==================== flow operations ====================

func (svc *QuickTestService) CreateQuickTest(ctx context.Context, params GenerationParams) (*model.QuickSession, error) {
	questions, err := svc.generatorSvc.GenerateCached(ctx, params)
	if err != nil {
		if errors.Is(err, ErrGenerationUnavailable) {
			return nil, shared.NewServiceUnavailableError(shared.MsgGenerationUnavailable, err)
		}
		return nil, err
	}

	id, _ := uuid.NewV7()
	session := &model.QuickSession{
		ID:            id.String(),
		Mode:          params.Mode,
		Category:      params.Category,
		Difficulty:    params.Difficulty,
		QuestionCount: params.QuestionCount,
		Questions:     questions,
		Answers:       make(map[int]model.QuickAnswer),
		CurrentIndex:  0,
		Completed:     false,
		CreatedAt:     time.Now(),
	}

	if err := svc.SetSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (svc *QuickTestService) SubmitAnswer(id string, questionIndex int, selectedLabel string, timeSpent int) (*model.QuickAnswer, error) {
	var answer model.QuickAnswer

	_, err := svc.UpdateSession(id, func(s *model.QuickSession) *model.QuickSession {
		if questionIndex < 0 || questionIndex >= len(s.Questions) {
			return s
		}
		question := s.Questions[questionIndex]
		answer = model.QuickAnswer{
			QuestionIndex:    questionIndex,
			SelectedLabel:    selectedLabel,
			CorrectLabel:     question.CorrectOptionLabel,
			IsCorrect:        selectedLabel == question.CorrectOptionLabel,
			TimeSpentSeconds: timeSpent,
			AnsweredAt:       time.Now(),
		}
		if s.Answers == nil {
			s.Answers = make(map[int]model.QuickAnswer)
		}
		s.Answers[questionIndex] = answer
		return s
	})
	if err != nil {
		return nil, err
	}

	if answer.CorrectLabel == "" && answer.SelectedLabel == "" {
		return nil, shared.NewBadRequestError(fmt.Errorf("question index %d out of range", questionIndex), "Nomor soal tidak valid")
	}
	return &answer, nil
}

func (svc *QuickTestService) SetCurrentIndex(id string, index int) (*model.QuickSession, error) {
	return svc.UpdateSession(id, func(s *model.QuickSession) *model.QuickSession {
		if index >= 0 && index < len(s.Questions) {
			s.CurrentIndex = index
		}
		return s
	})
}

// Complete scores against the configured question count: skipped questions
// count against the taker.
func (svc *QuickTestService) Complete(id string) (*model.QuickSession, error) {
	return svc.UpdateSession(id, func(s *model.QuickSession) *model.QuickSession {
		correct := 0
		for _, a := range s.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		score := ComputeScore(correct, s.QuestionCount)
		s.Score = &score
		s.Completed = true
		return s
	})
}

// ComputeScore divides by the configured question count, not the answered
// count. Sessions abandoned early score against the full set.
func ComputeScore(correct, questionCount int) float64 {
	if questionCount <= 0 {
		return 0
	}
	return float64(correct) / float64(questionCount) * 100
}
