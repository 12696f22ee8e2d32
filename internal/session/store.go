// Package session persists the signed-in user and the display theme of each
// client under a namespaced pair of keys.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/expromedia/Marx/internal/domain/user"
)

var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrInvalidTheme = errors.New("invalid theme")
)

const DefaultNamespace = "lmnts"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Storage is a per-client string key/value namespace.
// Get returns ErrKeyNotFound for a missing key.
type Storage interface {
	Get(ctx context.Context, clientID, key string) (string, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID, key string) error
}

type Store struct {
	backend  Storage
	userKey  string
	themeKey string
	log      *slog.Logger
}

func NewStore(backend Storage, namespace string, log *slog.Logger) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		backend:  backend,
		userKey:  namespace + "_user",
		themeKey: namespace + "_theme",
		log:      log,
	}
}

func (s *Store) UserKey() string  { return s.userKey }
func (s *Store) ThemeKey() string { return s.themeKey }

// Load returns the persisted user or nil. A record that cannot be decoded
// counts as no session: it is removed and the client is treated as logged out.
func (s *Store) Load(ctx context.Context, clientID string) (*user.User, error) {
	raw, err := s.backend.Get(ctx, clientID, s.userKey)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var u user.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || !u.Role.Valid() || u.Username == "" {
		s.log.WarnContext(ctx, "discarding corrupt session record", "client_id", clientID, "err", err)

		if delErr := s.backend.Delete(ctx, clientID, s.userKey); delErr != nil {
			s.log.WarnContext(ctx, "could not remove corrupt session record", "client_id", clientID, "err", delErr)
		}
		return nil, nil
	}

	return &u, nil
}

// Save writes the user and makes sure a theme is recorded next to it.
func (s *Store) Save(ctx context.Context, clientID string, u user.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.backend.Set(ctx, clientID, s.userKey, string(b)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	theme, err := s.Theme(ctx, clientID)
	if err != nil {
		return err
	}

	return s.SetTheme(ctx, clientID, theme)
}

// Clear removes the user record only. The theme outlives the session.
func (s *Store) Clear(ctx context.Context, clientID string) error {
	err := s.backend.Delete(ctx, clientID, s.userKey)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

// Theme returns the stored theme, ThemeLight when none or an unknown value is stored.
func (s *Store) Theme(ctx context.Context, clientID string) (Theme, error) {
	raw, err := s.backend.Get(ctx, clientID, s.themeKey)
	if errors.Is(err, ErrKeyNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}

	theme, err := ParseTheme(raw)
	if err != nil {
		return ThemeLight, nil
	}

	return theme, nil
}

func (s *Store) SetTheme(ctx context.Context, clientID string, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}

	if err := s.backend.Set(ctx, clientID, s.themeKey, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}

	return nil
}
