// Package experiment holds the A/B machinery: session assignment, the
// offline runner and the result analyzer.
package experiment

import (
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// Session is one user session's experiment assignment. The variant is chosen
// once at session creation and stays fixed for the session's lifetime, so a
// single user never mixes A and B. Core components receive it explicitly.
type Session struct {
	ID      string `json:"session_id"`
	Variant string `json:"variant"`
	TopK    int    `json:"top_k"`
}

// NewSession assigns a random variant from the declared set.
func NewSession(variants map[string]int) (Session, error) {
	if len(variants) == 0 {
		return Session{}, errors.New("no variants declared")
	}
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	variant := names[rand.Intn(len(names))]
	return Session{
		ID:      uuid.NewString(),
		Variant: variant,
		TopK:    variants[variant],
	}, nil
}

// LoadSession reads a persisted session, or creates, saves and returns a new
// one when the file does not exist.
func LoadSession(path string, variants map[string]int) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Session{}, err
		}
		sess, err := NewSession(variants)
		if err != nil {
			return Session{}, err
		}
		return sess, SaveSession(path, sess)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	// Re-resolve top_k in case the variant mapping changed since the session
	// was created.
	if topK, ok := variants[sess.Variant]; ok {
		sess.TopK = topK
	}
	return sess, nil
}

// SaveSession writes the session file, creating directories as needed.
func SaveSession(path string, sess Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
