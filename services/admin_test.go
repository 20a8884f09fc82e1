package services

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/psikotes-ai/psikotes_api/model"
)

func TestSessionIDList(t *testing.T) {
	sessions := []model.TestSession{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := sessionIDList(sessions)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("sessionIDList = %v", got)
	}

	if got := sessionIDList(nil); len(got) != 0 {
		t.Errorf("empty input must give an empty list, got %v", got)
	}
}

func TestQuestionInstanceFilterKeyedOnSession(t *testing.T) {
	filter := questionInstanceFilter([]string{"s1", "s2"})

	in, ok := filter["session_id"].(bson.M)
	if !ok {
		t.Fatalf("filter must select by session_id: %+v", filter)
	}
	if !reflect.DeepEqual(in["$in"], []string{"s1", "s2"}) {
		t.Errorf("$in = %v", in["$in"])
	}
	if _, ok := filter["user_id"]; ok {
		t.Error("question instances carry no user_id; the filter must not use one")
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit  int
		wantP, wantL int
	}{
		{1, 20, 1, 20},
		{0, 20, 1, 20},
		{-5, 50, 1, 50},
		{2, 0, 2, defaultPageLimit},
		{2, 1000, 2, defaultPageLimit},
	}

	for _, tt := range tests {
		gotP, gotL := normalizePage(tt.page, tt.limit)
		if gotP != tt.wantP || gotL != tt.wantL {
			t.Errorf("normalizePage(%d, %d) = (%d, %d), want (%d, %d)",
				tt.page, tt.limit, gotP, gotL, tt.wantP, tt.wantL)
		}
	}
}
