package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

func newQuickStoreAt(path string) *QuickTestService {
	return &QuickTestService{
		filePath:   path,
		sessions:   make(map[string]*model.QuickSession),
		dirty:      make(chan struct{}, 1),
		closed:     make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

func newTestQuickStore(t *testing.T) *QuickTestService {
	t.Helper()
	return newQuickStoreAt(filepath.Join(t.TempDir(), "quick_sessions.json"))
}

func newQuickSession(id string, questionCount int) *model.QuickSession {
	questions := make([]model.Question, questionCount)
	for i := range questions {
		questions[i] = model.Question{
			Type: shared.QuestionTypeMultipleChoice,
			Text: "Soal",
			Options: []model.QuestionOption{
				{Label: "A", Text: "satu"},
				{Label: "B", Text: "dua"},
			},
			CorrectOptionLabel: "A",
		}
	}
	return &model.QuickSession{
		ID:            id,
		Mode:          shared.TestModePsikotes,
		Category:      shared.CategoryLogic,
		Difficulty:    shared.DifficultyMedium,
		QuestionCount: questionCount,
		Questions:     questions,
		Answers:       make(map[int]model.QuickAnswer),
		CreatedAt:     time.Now(),
	}
}

func TestQuickStoreRoundTrip(t *testing.T) {
	svc := newTestQuickStore(t)

	if err := svc.SetSession(newQuickSession("s1", 3)); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := svc.GetSession("s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "s1" || got.QuestionCount != 3 {
		t.Errorf("got %+v", got)
	}

	if _, err := svc.GetSession("missing"); err == nil {
		t.Error("expected not found error")
	}

	if err := svc.DeleteSession("s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetSession("s1"); err == nil {
		t.Error("expected not found after delete")
	}
}

func TestQuickStoreGetReturnsCopy(t *testing.T) {
	svc := newTestQuickStore(t)
	if err := svc.SetSession(newQuickSession("s1", 2)); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, _ := svc.GetSession("s1")
	got.CurrentIndex = 99

	again, _ := svc.GetSession("s1")
	if again.CurrentIndex == 99 {
		t.Error("mutating a returned session must not touch the store")
	}
}

func TestQuickStoreCopiesShareNoState(t *testing.T) {
	svc := newTestQuickStore(t)

	original := newQuickSession("s1", 2)
	if err := svc.SetSession(original); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Writing through the caller's own session must not reach the store.
	original.Answers[0] = model.QuickAnswer{QuestionIndex: 0, SelectedLabel: "B"}
	original.Questions[0].CorrectOptionLabel = "B"

	got, err := svc.GetSession("s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Answers) != 0 {
		t.Error("stored session shares the caller's answer map")
	}
	if got.Questions[0].CorrectOptionLabel != "A" {
		t.Error("stored session shares the caller's question slice")
	}

	// Writing through a returned copy must not reach the store either.
	got.Answers[1] = model.QuickAnswer{QuestionIndex: 1, SelectedLabel: "A"}
	got.Questions[1].Text = "diubah"

	again, _ := svc.GetSession("s1")
	if len(again.Answers) != 0 {
		t.Error("returned session shares the stored answer map")
	}
	if again.Questions[1].Text != "Soal" {
		t.Error("returned session shares the stored question slice")
	}
}

func TestUpdateSessionReturnsDetachedCopy(t *testing.T) {
	svc := newTestQuickStore(t)
	if err := svc.SetSession(newQuickSession("s1", 2)); err != nil {
		t.Fatalf("set: %v", err)
	}

	updated, err := svc.SetCurrentIndex("s1", 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	updated.Answers[0] = model.QuickAnswer{QuestionIndex: 0, SelectedLabel: "B"}

	got, _ := svc.GetSession("s1")
	if len(got.Answers) != 0 {
		t.Error("update result shares the stored answer map")
	}
}

func TestQuickStoreListSortsNewestFirst(t *testing.T) {
	svc := newTestQuickStore(t)

	older := newQuickSession("older", 1)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newQuickSession("newer", 1)

	if err := svc.SetSession(older); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := svc.SetSession(newer); err != nil {
		t.Fatalf("set: %v", err)
	}

	list, err := svc.ListSessions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "newer" {
		t.Errorf("unexpected order: %v, %v", list[0].ID, list[1].ID)
	}
}

func TestQuickStoreSnapshotSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quick_sessions.json")

	first := newQuickStoreAt(path)
	if err := first.SetSession(newQuickSession("persisted", 2)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	second := newQuickStoreAt(path)
	got, err := second.GetSession("persisted")
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if got.QuestionCount != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestQuickStoreCorruptSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quick_sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := newQuickStoreAt(path)

	list, err := svc.ListSessions()
	if err != nil {
		t.Fatalf("corrupt snapshot must not error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty store, got %d sessions", len(list))
	}
}

func TestShutdownWaitsForWriterAndFlushes(t *testing.T) {
	svc := newTestQuickStore(t)
	go svc.writerLoop()

	if err := svc.SetSession(newQuickSession("s1", 1)); err != nil {
		t.Fatalf("set: %v", err)
	}

	svc.Shutdown()

	select {
	case <-svc.writerDone:
	default:
		t.Fatal("writer goroutine still running after Shutdown")
	}

	data, err := os.ReadFile(svc.filePath)
	if err != nil {
		t.Fatalf("snapshot missing after shutdown: %v", err)
	}
	if !strings.Contains(string(data), "s1") {
		t.Errorf("snapshot does not contain the session: %s", data)
	}
	if _, err := os.Stat(svc.filePath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp snapshot left behind after shutdown")
	}
}

func TestSubmitAnswerOverwrites(t *testing.T) {
	svc := newTestQuickStore(t)
	if err := svc.SetSession(newQuickSession("s1", 2)); err != nil {
		t.Fatalf("set: %v", err)
	}

	wrong, err := svc.SubmitAnswer("s1", 0, "B", 5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if wrong.IsCorrect {
		t.Error("B should be incorrect")
	}

	right, err := svc.SubmitAnswer("s1", 0, "A", 3)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !right.IsCorrect {
		t.Error("A should be correct")
	}

	got, _ := svc.GetSession("s1")
	if len(got.Answers) != 1 {
		t.Errorf("re-answering must overwrite, got %d answers", len(got.Answers))
	}
	if got.Answers[0].SelectedLabel != "A" {
		t.Errorf("stored label = %q", got.Answers[0].SelectedLabel)
	}
}

func TestSubmitAnswerOutOfRange(t *testing.T) {
	svc := newTestQuickStore(t)
	if err := svc.SetSession(newQuickSession("s1", 2)); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := svc.SubmitAnswer("s1", 5, "A", 1); err == nil {
		t.Error("expected error for out of range index")
	}
	if _, err := svc.SubmitAnswer("s1", -1, "A", 1); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestCompleteScoresAgainstConfiguredCount(t *testing.T) {
	svc := newTestQuickStore(t)
	if err := svc.SetSession(newQuickSession("s1", 5)); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Three correct answers out of five configured questions; the other
	// two stay unanswered.
	for i := 0; i < 3; i++ {
		if _, err := svc.SubmitAnswer("s1", i, "A", 1); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	got, err := svc.Complete("s1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !got.Completed {
		t.Error("session not marked completed")
	}
	if got.Score == nil || *got.Score != 60 {
		t.Errorf("score = %v, want 60", got.Score)
	}
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		correct int
		count   int
		want    float64
	}{
		{correct: 0, count: 10, want: 0},
		{correct: 10, count: 10, want: 100},
		{correct: 3, count: 5, want: 60},
		{correct: 1, count: 3, want: 100.0 / 3.0},
		{correct: 5, count: 0, want: 0},
		{correct: 5, count: -1, want: 0},
	}

	for _, tt := range tests {
		if got := ComputeScore(tt.correct, tt.count); got != tt.want {
			t.Errorf("ComputeScore(%d, %d) = %v, want %v", tt.correct, tt.count, got, tt.want)
		}
	}
}
