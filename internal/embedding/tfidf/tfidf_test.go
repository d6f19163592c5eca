package tfidf

import (
	"context"
	"testing"
)

var corpus = []string{
	"The project deadline is March first.",
	"Submissions are reviewed within two weeks.",
	"Late submissions require prior approval from the committee.",
}

func TestPrepareAndEmbed(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare(corpus); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if e.Dimension() == 0 {
		t.Fatal("dimension is zero after prepare")
	}
	vec, err := e.Embed(context.Background(), "When is the project deadline?")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != e.Dimension() {
		t.Fatalf("vector length %d != dimension %d", len(vec), e.Dimension())
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("vector not L2-normalized: %f", norm)
	}
}

func TestEmbedBeforePrepareFails(t *testing.T) {
	e := NewEmbedder()
	if _, err := e.Embed(context.Background(), "anything"); err == nil {
		t.Fatal("expected error before prepare")
	}
}

func TestStateRoundTrip(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare(corpus); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	state, err := e.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	restored, err := NewFromState(state)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Dimension() != e.Dimension() {
		t.Fatalf("dimension mismatch: %d != %d", restored.Dimension(), e.Dimension())
	}
	query := "approval for late submissions"
	a, err := e.Embed(context.Background(), query)
	if err != nil {
		t.Fatalf("embed original: %v", err)
	}
	b, err := restored.Embed(context.Background(), query)
	if err != nil {
		t.Fatalf("embed restored: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("restored embedder diverges at %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestInvalidStateRejected(t *testing.T) {
	if _, err := NewFromState(State{Terms: []string{"a"}, IDF: nil}); err == nil {
		t.Fatal("expected error for mismatched state")
	}
}
