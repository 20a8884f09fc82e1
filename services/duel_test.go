package services

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

func newTestDuel() *model.Duel {
	return &model.Duel{
		ID:       "d1",
		Kind:     shared.DuelKindKreplin,
		RoomCode: "ABC234",
		Status:   shared.DuelStatusReady,
		Host:     model.DuelParticipant{UserID: "host", Username: "tuan-rumah"},
		Guest:    &model.DuelParticipant{UserID: "guest", Username: "tamu"},
		Settings: model.DuelSettings{DurationSeconds: 60},
	}
}

func TestNewRoomCode(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewRoomCode()
		if len(code) != 6 {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("100 generated codes were all identical")
	}
}

func TestApplyReadyBothReadyActivates(t *testing.T) {
	duel := newTestDuel()
	now := time.Now()

	if err := ApplyReady(duel, "host", true, now); err != nil {
		t.Fatalf("host ready: %v", err)
	}
	if duel.Status != shared.DuelStatusReady {
		t.Errorf("one ready player must not activate, status = %q", duel.Status)
	}
	if duel.StartedAt != nil {
		t.Error("started_at set before both are ready")
	}

	if err := ApplyReady(duel, "guest", true, now); err != nil {
		t.Fatalf("guest ready: %v", err)
	}
	if duel.Status != shared.DuelStatusActive {
		t.Errorf("status = %q, want active", duel.Status)
	}
	if duel.StartedAt == nil || !duel.StartedAt.Equal(now) {
		t.Errorf("started_at = %v, want %v", duel.StartedAt, now)
	}
}

func TestApplyReadyStampsStartOnce(t *testing.T) {
	duel := newTestDuel()
	first := time.Now()

	_ = ApplyReady(duel, "host", true, first)
	_ = ApplyReady(duel, "guest", true, first)

	later := first.Add(time.Minute)
	if err := ApplyReady(duel, "host", true, later); err != nil {
		t.Fatalf("repeat ready: %v", err)
	}
	if !duel.StartedAt.Equal(first) {
		t.Errorf("started_at moved to %v, want original %v", duel.StartedAt, first)
	}
}

func TestApplyReadyUnreadyRevertsAndClearsStart(t *testing.T) {
	duel := newTestDuel()
	now := time.Now()

	_ = ApplyReady(duel, "host", true, now)
	_ = ApplyReady(duel, "guest", true, now)
	if duel.Status != shared.DuelStatusActive {
		t.Fatalf("precondition: status = %q", duel.Status)
	}

	if err := ApplyReady(duel, "guest", false, now.Add(time.Second)); err != nil {
		t.Fatalf("un-ready: %v", err)
	}
	if duel.Status != shared.DuelStatusReady {
		t.Errorf("status = %q, want ready", duel.Status)
	}
	if duel.StartedAt != nil {
		t.Error("started_at must be cleared on un-ready")
	}
}

func TestApplyReadyWithoutGuestStaysWaiting(t *testing.T) {
	duel := newTestDuel()
	duel.Guest = nil
	duel.Status = shared.DuelStatusWaiting

	if err := ApplyReady(duel, "host", true, time.Now()); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if duel.Status != shared.DuelStatusWaiting {
		t.Errorf("status = %q, want waiting while guest slot empty", duel.Status)
	}
}

func TestApplyReadyRejectsOutsiders(t *testing.T) {
	duel := newTestDuel()

	err := ApplyReady(duel, "stranger", true, time.Now())
	if err == nil {
		t.Fatal("expected error for non participant")
	}
	if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != 403 {
		t.Errorf("got %v, want 403 AppError", err)
	}
}

func TestApplyReadyRejectsCompleted(t *testing.T) {
	duel := newTestDuel()
	duel.Status = shared.DuelStatusCompleted

	err := ApplyReady(duel, "host", true, time.Now())
	if err == nil {
		t.Fatal("expected error for completed duel")
	}
	if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != 409 {
		t.Errorf("got %v, want 409 AppError", err)
	}
}

func TestApplyResultCompletesAfterBoth(t *testing.T) {
	duel := newTestDuel()
	now := time.Now()
	_ = ApplyReady(duel, "host", true, now)
	_ = ApplyReady(duel, "guest", true, now)

	hostResult := dto.DuelResultRequest{ResultID: "r1", Answered: 40, Correct: 36, Accuracy: 90}
	if err := ApplyResult(duel, "host", hostResult, now); err != nil {
		t.Fatalf("host result: %v", err)
	}
	if duel.Status != shared.DuelStatusActive {
		t.Errorf("one submission must leave the duel active, status = %q", duel.Status)
	}
	if duel.Host.ResultID != "r1" || duel.Host.SubmittedAt == nil {
		t.Errorf("host participant not updated: %+v", duel.Host)
	}

	guestResult := dto.DuelResultRequest{ResultID: "r2", Answered: 38, Correct: 30, Accuracy: 78.9}
	if err := ApplyResult(duel, "guest", guestResult, now.Add(time.Second)); err != nil {
		t.Fatalf("guest result: %v", err)
	}
	if duel.Status != shared.DuelStatusCompleted {
		t.Errorf("status = %q, want completed after both results", duel.Status)
	}
}

func TestApplyResultRejectsRepeats(t *testing.T) {
	duel := newTestDuel()
	now := time.Now()

	first := dto.DuelResultRequest{ResultID: "r1", Answered: 10, Correct: 8, Accuracy: 80}
	if err := ApplyResult(duel, "host", first, now); err != nil {
		t.Fatalf("first submission: %v", err)
	}

	second := dto.DuelResultRequest{ResultID: "r9", Answered: 99, Correct: 99, Accuracy: 100}
	err := ApplyResult(duel, "host", second, now)
	if err == nil {
		t.Fatal("expected error on repeat submission")
	}
	if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != 409 {
		t.Errorf("got %v, want 409 AppError", err)
	}
	if duel.Host.ResultID != "r1" {
		t.Errorf("first write must win, result_id = %q", duel.Host.ResultID)
	}
}

func TestParticipantField(t *testing.T) {
	duel := newTestDuel()
	if got := participantField(duel, "host"); got != "host" {
		t.Errorf("participantField(host) = %q", got)
	}
	if got := participantField(duel, "guest"); got != "guest" {
		t.Errorf("participantField(guest) = %q", got)
	}
}

func TestResultSubmissionUpdateScopedToOneSide(t *testing.T) {
	now := time.Now()
	req := dto.DuelResultRequest{ResultID: "r1", Answered: 40, Correct: 36, Accuracy: 90}

	update := resultSubmissionUpdate("host", req, now)
	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("update has no $set document: %+v", update)
	}

	for key := range set {
		if strings.HasPrefix(key, "guest.") {
			t.Errorf("host submission must not touch guest fields, found %q", key)
		}
	}
	if set["host.result_id"] != "r1" {
		t.Errorf("host.result_id = %v, want r1", set["host.result_id"])
	}
	if _, ok := set["status"]; ok {
		t.Error("submission update must not decide status; the guarded transition does")
	}
}

func TestResultSubmissionFilterRequiresUnsubmitted(t *testing.T) {
	filter := resultSubmissionFilter("d1", "guest")
	if filter["_id"] != "d1" {
		t.Errorf("filter _id = %v", filter["_id"])
	}
	if v, ok := filter["guest.result_id"]; !ok || v != nil {
		t.Errorf("filter must require an unset guest.result_id, got %v", v)
	}
	if _, ok := filter["host.result_id"]; ok {
		t.Error("guest filter must not constrain the host side")
	}
}

func TestApplyResultRejectsOutsiders(t *testing.T) {
	duel := newTestDuel()

	err := ApplyResult(duel, "stranger", dto.DuelResultRequest{ResultID: "r1"}, time.Now())
	if err == nil {
		t.Fatal("expected error for non participant")
	}
}
