package worker

import (
	"testing"

	"github.com/google/uuid"

	"github.com/alexpaac/testrh-backend/internal/model"
)

func TestDedupeLastWriteWins(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	first := &model.TestSession{ID: a, Status: model.SessionStatusInProgress}
	second := &model.TestSession{ID: b, Status: model.SessionStatusInProgress}
	third := &model.TestSession{ID: a, Status: model.SessionStatusCompleted}

	out := dedupe([]*model.TestSession{first, second, third})

	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	// First occurrence keeps its slot, later write supersedes its content.
	if out[0].ID != a || out[0].Status != model.SessionStatusCompleted {
		t.Errorf("record a not superseded: %+v", out[0])
	}
	if out[1].ID != b {
		t.Errorf("record b displaced: %+v", out[1])
	}
}

func TestDedupeEmpty(t *testing.T) {
	if out := dedupe(nil); len(out) != 0 {
		t.Fatalf("expected empty, got %d", len(out))
	}
}
