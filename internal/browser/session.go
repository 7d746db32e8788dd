package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
)

// SessionStore is the optional authentication collaborator. A store can hand
// the context a previously captured storage state (cookies, local storage)
// and capture the state again when the session closes. The default does
// neither and runs stay unauthenticated.
type SessionStore interface {
	// StatePath returns the path of a usable snapshot, or ok=false when
	// there is none to load.
	StatePath() (path string, ok bool)

	// Save captures the context's storage state for the next run.
	Save(ctx playwright.BrowserContext) error
}

type NoopSession struct{}

func (NoopSession) StatePath() (string, bool)            { return "", false }
func (NoopSession) Save(playwright.BrowserContext) error { return nil }

// FileSession keeps the snapshot in a single JSON file.
type FileSession struct {
	Path string
}

func NewFileSession(path string) (*FileSession, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileSession{Path: path}, nil
}

func (s *FileSession) StatePath() (string, bool) {
	info, err := os.Stat(s.Path)
	if err != nil || info.Size() == 0 {
		return "", false
	}
	return s.Path, true
}

func (s *FileSession) Save(ctx playwright.BrowserContext) error {
	if _, err := ctx.StorageState(s.Path); err != nil {
		return fmt.Errorf("failed to capture storage state: %w", err)
	}
	return nil
}
