// Package auth holds the login state of the single local user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/idilsaglam/taskdeck/internal/model"
	"github.com/idilsaglam/taskdeck/internal/observe"
	"github.com/idilsaglam/taskdeck/internal/store"
)

var (
	// ErrInvalidCredentials is returned by Login for any nickname/password mismatch,
	// including when nobody is registered.
	ErrInvalidCredentials = errors.New("invalid nickname or password")
	// ErrIncompleteRegistration is returned by ValidateRegistration.
	ErrIncompleteRegistration = errors.New("please fill all fields")
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Snapshot is what subscribers receive after every state change.
type Snapshot struct {
	State State
	User  model.User
}

// UserStore is the persistence the service needs; *store.UserStore satisfies it.
type UserStore interface {
	SaveUser(ctx context.Context, u model.User) error
	LoadUser(ctx context.Context) (model.User, error)
	SetSession(ctx context.Context, nickname string) error
	Session(ctx context.Context) (string, error)
	ClearSession(ctx context.Context) error
}

// Service is owned by the application root and handed to every consumer.
type Service struct {
	st     UserStore
	hasher Hasher

	mu   sync.RWMutex
	user *model.User

	hub observe.Hub[Snapshot]
}

type Option func(*Service)

// WithHasher replaces the default Plaintext hasher.
func WithHasher(h Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

// New returns an Unauthenticated service. Call RestoreSession at startup.
func New(st UserStore, opts ...Option) *Service {
	if st == nil {
		panic("auth.New: store is nil")
	}
	s := &Service{st: st, hasher: Plaintext{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ValidateRegistration checks that no field is blank.
func ValidateRegistration(firstName, lastName, nickname, password string) error {
	for _, f := range []string{firstName, lastName, nickname, password} {
		if strings.TrimSpace(f) == "" {
			return ErrIncompleteRegistration
		}
	}
	return nil
}

// Register stores a new user with no tasks, replacing whoever was registered.
// The session is left alone.
func (s *Service) Register(ctx context.Context, firstName, lastName, nickname, password string) error {
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		FirstName: firstName,
		LastName:  lastName,
		Nickname:  nickname,
		Password:  stored,
		Tasks:     []model.Task{},
	}
	if err := s.st.SaveUser(ctx, u); err != nil {
		log.WithError(err).WithField("nickname", nickname).Error("failed to save registered user")
		return err
	}
	log.WithField("nickname", nickname).Info("user registered")
	return nil
}

// Login authenticates against the stored user. On failure the state is unchanged.
func (s *Service) Login(ctx context.Context, nickname, password string) error {
	u, ok := s.loadUser(ctx)
	if !ok || u.Nickname != nickname || !s.hasher.Match(u.Password, password) {
		log.WithField("nickname", nickname).Debug("login rejected")
		return ErrInvalidCredentials
	}
	if err := s.st.SetSession(ctx, nickname); err != nil {
		log.WithError(err).WithField("nickname", nickname).Error("failed to store session")
		return err
	}
	s.set(&u)
	log.WithField("nickname", nickname).Info("user logged in")
	return nil
}

// RestoreSession authenticates from the stored session marker when it names the
// stored user, and resets to Unauthenticated otherwise.
func (s *Service) RestoreSession(ctx context.Context) State {
	nick, err := s.st.Session(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.WithError(err).Warn("failed to read session marker")
		}
		s.set(nil)
		return Unauthenticated
	}
	u, ok := s.loadUser(ctx)
	if !ok || u.Nickname != nick {
		log.WithField("session", nick).Debug("session marker does not match stored user")
		s.set(nil)
		return Unauthenticated
	}
	s.set(&u)
	return Authenticated
}

// Logout clears the session marker. The user record stays.
func (s *Service) Logout(ctx context.Context) error {
	err := s.st.ClearSession(ctx)
	if err != nil {
		log.WithError(err).Error("failed to clear session marker")
	}
	s.set(nil)
	return err
}

// UpdateTasks replaces the authenticated user's tasks in memory and in the store.
// It does nothing while Unauthenticated.
func (s *Service) UpdateTasks(ctx context.Context, tasks []model.Task) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	u := *s.user
	u.Tasks = model.CloneTasks(tasks)
	s.user = &u
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Publish(snap)
	if err := s.st.SaveUser(ctx, u); err != nil {
		log.WithError(err).WithField("nickname", u.Nickname).Error("failed to persist tasks")
		return err
	}
	return nil
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Unauthenticated
	}
	return Authenticated
}

// User returns a copy of the authenticated user.
func (s *Service) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	u := *s.user
	u.Tasks = model.CloneTasks(u.Tasks)
	return u, true
}

// Subscribe calls fn after every state change until cancel is called.
func (s *Service) Subscribe(fn func(Snapshot)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

func (s *Service) loadUser(ctx context.Context) (model.User, bool) {
	u, err := s.st.LoadUser(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.WithError(err).Warn("stored user unreadable, treating as absent")
		}
		return model.User{}, false
	}
	return u, true
}

func (s *Service) set(u *model.User) {
	s.mu.Lock()
	s.user = u
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Publish(snap)
}

func (s *Service) snapshotLocked() Snapshot {
	if s.user == nil {
		return Snapshot{State: Unauthenticated}
	}
	u := *s.user
	u.Tasks = model.CloneTasks(u.Tasks)
	return Snapshot{State: Authenticated, User: u}
}
