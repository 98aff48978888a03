// Package store persists the registered user and the session marker on top of a
// small typed key-value backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/idilsaglam/taskdeck/internal/model"
)

// Key names a slot in the backend. Only the constants below are valid.
type Key string

const (
	KeyRegisteredUser Key = "registeredUserKey"
	KeySession        Key = "currentUserSessionKey"
)

// Keys lists every valid key.
var Keys = []Key{KeyRegisteredUser, KeySession}

var (
	ErrNotFound   = errors.New("store: not found")
	ErrCorrupt    = errors.New("store: corrupt record")
	ErrUnknownKey = errors.New("store: unknown key")

	errMissingNickname = errors.New("user record has no nickname")
)

// DecodeError reports a stored value that could not be decoded.
type DecodeError struct {
	Key Key
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("store: decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrCorrupt, e.Err} }

// Backend is a durable byte store over the fixed key set. Get returns
// ErrNotFound when the key holds nothing.
type Backend interface {
	Get(ctx context.Context, k Key) ([]byte, error)
	Put(ctx context.Context, k Key, v []byte) error
	Delete(ctx context.Context, k Key) error
}

// ValidKey reports whether k is one of Keys.
func ValidKey(k Key) bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// UserStore encodes the user record and session marker into a Backend.
type UserStore struct {
	b Backend
}

func New(b Backend) *UserStore {
	if b == nil {
		panic("store.New: backend is nil")
	}
	return &UserStore{b: b}
}

// SaveUser replaces the registered user.
func (s *UserStore) SaveUser(ctx context.Context, u model.User) error {
	u.Tasks = model.CloneTasks(u.Tasks)
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.b.Put(ctx, KeyRegisteredUser, b); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// LoadUser returns ErrNotFound when nobody registered and a *DecodeError when the
// record is unreadable or has no nickname.
func (s *UserStore) LoadUser(ctx context.Context) (model.User, error) {
	b, err := s.b.Get(ctx, KeyRegisteredUser)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		return model.User{}, &DecodeError{Key: KeyRegisteredUser, Err: err}
	}
	if u.Nickname == "" {
		return model.User{}, &DecodeError{Key: KeyRegisteredUser, Err: errMissingNickname}
	}
	u.Tasks = model.CloneTasks(u.Tasks)
	return u, nil
}

func (s *UserStore) SetSession(ctx context.Context, nickname string) error {
	b, err := json.Marshal(nickname)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.b.Put(ctx, KeySession, b); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Session returns the nickname of the logged in user, or ErrNotFound.
func (s *UserStore) Session(ctx context.Context) (string, error) {
	b, err := s.b.Get(ctx, KeySession)
	if err != nil {
		return "", err
	}
	var nick string
	if err := json.Unmarshal(b, &nick); err != nil {
		return "", &DecodeError{Key: KeySession, Err: err}
	}
	if nick == "" {
		return "", &DecodeError{Key: KeySession, Err: errMissingNickname}
	}
	return nick, nil
}

func (s *UserStore) ClearSession(ctx context.Context) error {
	if err := s.b.Delete(ctx, KeySession); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
