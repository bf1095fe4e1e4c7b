package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bhanmrinal/cf-project/internal/apperr"
)

func TestMemoryStoreRecentTurnsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Create(ctx, Conversation{ID: "c1"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.AppendTurn(ctx, "c1", Turn{ID: fmt.Sprintf("t%d", i), Message: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	tests := []struct {
		n    int
		want []string
	}{
		{n: 0, want: nil},
		{n: 2, want: []string{"t3", "t4"}},
		{n: 5, want: []string{"t0", "t1", "t2", "t3", "t4"}},
		{n: 50, want: []string{"t0", "t1", "t2", "t3", "t4"}},
	}

	for _, tt := range tests {
		turns, err := s.RecentTurns(ctx, "c1", tt.n)
		if err != nil {
			t.Fatalf("recent turns: %v", err)
		}
		if len(turns) != len(tt.want) {
			t.Fatalf("n=%d: expected %d turns, got %d", tt.n, len(tt.want), len(turns))
		}
		for i, id := range tt.want {
			if turns[i].ID != id {
				t.Fatalf("n=%d: turn %d = %s, want %s", tt.n, i, turns[i].ID, id)
			}
		}
	}
}

func TestMemoryStoreTurnsAreImmutable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Create(ctx, Conversation{ID: "c1"})

	payload := map[string]any{"overall_score": 72.5}
	if err := s.AppendTurn(ctx, "c1", Turn{ID: "t1", Payload: payload}); err != nil {
		t.Fatalf("append: %v", err)
	}
	payload["overall_score"] = 0.0

	turns, _ := s.RecentTurns(ctx, "c1", 1)
	turns[0].Message = "changed"

	again, _ := s.RecentTurns(ctx, "c1", 1)
	if again[0].Message != "" || again[0].Payload["overall_score"] != 72.5 {
		t.Fatalf("stored turn was mutated: %+v", again[0])
	}
}

func TestMemoryStoreUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Create(ctx, Conversation{ID: "c1", UserID: "u1"})

	if err := s.SetResume(ctx, "c1", "r1"); err != nil {
		t.Fatalf("set resume: %v", err)
	}
	if err := s.UpdateContext(ctx, "c1", Context{TargetCompany: "Google"}); err != nil {
		t.Fatalf("update context: %v", err)
	}

	c, err := s.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.ResumeID != "r1" || c.Context.TargetCompany != "Google" || c.Sender() != "u1" {
		t.Fatalf("unexpected conversation %+v", c)
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		t.Fatalf("updated_at must not precede created_at")
	}
}

func TestMemoryStoreUnknownConversation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	errs := []error{
		s.SetResume(ctx, "nope", "r1"),
		s.UpdateContext(ctx, "nope", Context{}),
		s.AppendTurn(ctx, "nope", Turn{}),
	}
	_, err := s.Get(ctx, "nope")
	errs = append(errs, err)
	_, err = s.RecentTurns(ctx, "nope", 3)
	errs = append(errs, err)

	for i, err := range errs {
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("call %d: expected not found, got %v", i, err)
		}
	}
}

func TestContextMerge(t *testing.T) {
	base := Context{TargetCompany: "Google", TargetLanguage: "spanish"}
	merged := base.Merge(Context{TargetRegion: "Mexico", TargetCompany: "Stripe"})

	want := Context{TargetCompany: "Stripe", TargetLanguage: "spanish", TargetRegion: "Mexico"}
	if merged != want {
		t.Fatalf("Merge = %+v, want %+v", merged, want)
	}
}
