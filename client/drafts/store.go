// Package drafts keeps unsent report forms and the login session on disk,
// one JSON file per draft kind.
package drafts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/greencampus/facility-reports/internal/submission"
)

// Kind names one report form
type Kind string

const (
	KindWaste    Kind = "waste"
	KindResource Kind = "resource"
	KindSpace    Kind = "space"
)

// Kinds every draft kind, in menu order
var Kinds = []Kind{KindWaste, KindResource, KindSpace}

// ParseKind accepts a kind name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown draft kind: %s", s)
}

// Form is any report payload that can be drafted
type Form interface {
	submission.WasteInput | submission.ResourceInput | submission.SpaceInput
}

// KindOf the draft kind that stores F
func KindOf[F Form]() Kind {
	var zero F
	switch any(zero).(type) {
	case submission.WasteInput:
		return KindWaste
	case submission.ResourceInput:
		return KindResource
	default:
		return KindSpace
	}
}

// Draft one saved form
type Draft[F Form] struct {
	Kind    Kind      `json:"kind"`
	Form    F         `json:"form"`
	SavedAt time.Time `json:"savedAt"`
}

// Session persisted login
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// Expired reports whether the token is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

var (
	// ErrNoDraft nothing saved for the kind
	ErrNoDraft = errors.New("no draft saved")
	// ErrNoSession not logged in
	ErrNoSession = errors.New("no saved session")
)

const sessionFile = "session.json"

// Store file-backed draft store rooted at one directory
type Store struct {
	dir    string
	mu     sync.Mutex
	schema interface{ Struct(s interface{}) error }
}

// Open creates dir if needed
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create drafts directory: %w", err)
	}
	return &Store{dir: dir, schema: newSchema()}, nil
}

// Dir root directory of the store
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save validates form against its kind's schema and replaces the stored draft
func Save[F Form](s *Store, form F) error {
	kind := KindOf[F]()
	if err := s.schema.Struct(form); err != nil {
		return fmt.Errorf("invalid %s draft: %w", kind, err)
	}
	draft := Draft[F]{Kind: kind, Form: form, SavedAt: time.Now().UTC()}
	return s.write(string(kind)+".json", draft)
}

// Load returns the stored draft of F's kind or ErrNoDraft
func Load[F Form](s *Store) (*Draft[F], error) {
	kind := KindOf[F]()
	var draft Draft[F]
	if err := s.read(string(kind)+".json", &draft); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDraft
		}
		return nil, err
	}
	if draft.Kind != kind {
		return nil, fmt.Errorf("draft file holds %q, expected %q", draft.Kind, kind)
	}
	if err := s.schema.Struct(draft.Form); err != nil {
		return nil, fmt.Errorf("invalid %s draft: %w", kind, err)
	}
	return &draft, nil
}

// Clear removes the draft of kind; clearing a missing draft is not an error
func (s *Store) Clear(kind Kind) error {
	return s.remove(string(kind) + ".json")
}

// Has reports whether a draft of kind is saved
func (s *Store) Has(kind Kind) bool {
	_, err := os.Stat(s.path(string(kind) + ".json"))
	return err == nil
}

// SaveSession persists the login token
func (s *Store) SaveSession(session Session) error {
	return s.write(sessionFile, session)
}

// Session returns the saved login or ErrNoSession
func (s *Store) Session() (*Session, error) {
	var session Session
	if err := s.read(sessionFile, &session); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if session.Token == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

// ClearSession forgets the login
func (s *Store) ClearSession() error {
	return s.remove(sessionFile)
}

func (s *Store) read(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// write replaces name atomically through a temp file in the same directory
func (s *Store) write(name string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *Store) remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
