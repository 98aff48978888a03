package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/idilsaglam/taskdeck/internal/model"
	"github.com/idilsaglam/taskdeck/internal/store"
	"github.com/idilsaglam/taskdeck/internal/store/jsonstore"
)

func newService(t *testing.T, dir string, opts ...Option) (*Service, *store.UserStore) {
	t.Helper()
	st := store.New(jsonstore.New(dir))
	return New(st, opts...), st
}

func register(t *testing.T, s *Service, nick, pw string) {
	t.Helper()
	if err := s.Register(context.Background(), "Alice", "Liddell", nick, pw); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestRegisterDoesNotStartSession(t *testing.T) {
	s, st := newService(t, t.TempDir())
	register(t, s, "alice", "pw")

	if got := s.RestoreSession(context.Background()); got != Unauthenticated {
		t.Fatalf("expected Unauthenticated after register, got %v", got)
	}
	if _, err := st.Session(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("register must not write a session marker: %v", err)
	}
	u, err := st.LoadUser(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if u.Tasks == nil || len(u.Tasks) != 0 {
		t.Fatalf("expected empty task list, got %#v", u.Tasks)
	}
}

func TestLogin(t *testing.T) {
	cases := []struct {
		name     string
		register bool
		nick, pw string
		wantErr  error
	}{
		{name: "match", register: true, nick: "alice", pw: "pw"},
		{name: "wrong password", register: true, nick: "alice", pw: "PW", wantErr: ErrInvalidCredentials},
		{name: "wrong nickname", register: true, nick: "Alice", pw: "pw", wantErr: ErrInvalidCredentials},
		{name: "empty", register: true, wantErr: ErrInvalidCredentials},
		{name: "nobody registered", nick: "alice", pw: "pw", wantErr: ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, st := newService(t, t.TempDir())
			if tc.register {
				register(t, s, "alice", "pw")
			}
			err := s.Login(context.Background(), tc.nick, tc.pw)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("login err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil {
				if s.State() != Unauthenticated {
					t.Fatal("failed login changed state")
				}
				if _, err := st.Session(context.Background()); !errors.Is(err, store.ErrNotFound) {
					t.Fatalf("failed login wrote a session: %v", err)
				}
				return
			}
			if s.State() != Authenticated {
				t.Fatal("expected Authenticated")
			}
			nick, err := st.Session(context.Background())
			if err != nil || nick != "alice" {
				t.Fatalf("session = %q, %v", nick, err)
			}
		})
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	first, _ := newService(t, dir)
	register(t, first, "alice", "pw")
	if err := first.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	want, _ := first.User()

	second, _ := newService(t, dir)
	if got := second.RestoreSession(ctx); got != Authenticated {
		t.Fatalf("expected Authenticated after restart, got %v", got)
	}
	got, ok := second.User()
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("restored user = %#v, want %#v", got, want)
	}
}

func TestStaleSessionMarker(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, _ := newService(t, dir)
	register(t, s, "alice", "pw")
	if err := s.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	// a second registration replaces alice while her marker is still stored
	register(t, s, "bob", "pw2")

	restarted, _ := newService(t, dir)
	if got := restarted.RestoreSession(ctx); got != Unauthenticated {
		t.Fatalf("stale marker restored a session: %v", got)
	}
}

func TestLogoutKeepsUser(t *testing.T) {
	ctx := context.Background()
	s, st := newService(t, t.TempDir())
	register(t, s, "alice", "pw")
	if err := s.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if s.State() != Unauthenticated {
		t.Fatal("expected Unauthenticated after logout")
	}
	if _, ok := s.User(); ok {
		t.Fatal("User should report absent after logout")
	}
	if _, err := st.LoadUser(ctx); err != nil {
		t.Fatalf("user record should survive logout: %v", err)
	}
	if s.RestoreSession(ctx) != Unauthenticated {
		t.Fatal("restore after logout should stay Unauthenticated")
	}
	if err := s.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login again: %v", err)
	}
}

func TestUpdateTasks(t *testing.T) {
	ctx := context.Background()
	s, st := newService(t, t.TempDir())
	register(t, s, "alice", "pw")

	tasks := []model.Task{{ID: "t1", Title: "Buy milk"}}
	if err := s.UpdateTasks(ctx, tasks); err != nil {
		t.Fatalf("update while logged out: %v", err)
	}
	u, _ := st.LoadUser(ctx)
	if len(u.Tasks) != 0 {
		t.Fatalf("update while logged out must be a no-op, stored %#v", u.Tasks)
	}

	if err := s.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := s.UpdateTasks(ctx, tasks); err != nil {
		t.Fatalf("update: %v", err)
	}
	tasks[0].Title = "mutated by caller"

	stored, err := st.LoadUser(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := model.User{
		FirstName: "Alice",
		LastName:  "Liddell",
		Nickname:  "alice",
		Password:  "pw",
		Tasks:     []model.Task{{ID: "t1", Title: "Buy milk"}},
	}
	if !reflect.DeepEqual(stored, want) {
		t.Fatalf("stored = %#v, want %#v", stored, want)
	}
	mem, _ := s.User()
	if !reflect.DeepEqual(mem, want) {
		t.Fatalf("in-memory = %#v, want %#v", mem, want)
	}
}

func TestCorruptStoreMeansNoUser(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	js := jsonstore.New(dir)
	if err := os.WriteFile(js.Path(), []byte(`{"registeredUserKey": 42, "currentUserSessionKey": "alice"}`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := New(store.New(js))
	if got := s.RestoreSession(ctx); got != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", got)
	}
	if err := s.Login(ctx, "alice", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "taskdeck.json"), []byte("not json"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := s.RestoreSession(ctx); got != Unauthenticated {
		t.Fatalf("expected Unauthenticated on unreadable file, got %v", got)
	}
}

func TestEmptyRecordRejectsBlankLogin(t *testing.T) {
	ctx := context.Background()
	for _, doc := range []string{
		`{"registeredUserKey": null}`,
		`{"registeredUserKey": {}}`,
		`{"registeredUserKey": {"nickname": "", "password": ""}, "currentUserSessionKey": ""}`,
	} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "taskdeck.json"), []byte(doc), 0o600); err != nil {
			t.Fatalf("seed: %v", err)
		}
		s, _ := newService(t, dir)
		if got := s.RestoreSession(ctx); got != Unauthenticated {
			t.Fatalf("%s: expected Unauthenticated, got %v", doc, got)
		}
		if err := s.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", doc, err)
		}
		if s.State() != Unauthenticated {
			t.Fatalf("%s: blank login authenticated", doc)
		}
	}
}

func TestRegisterOverNullFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "taskdeck.json"), []byte(`null`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, _ := newService(t, dir)
	if got := s.RestoreSession(ctx); got != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", got)
	}
	register(t, s, "alice", "pw")
	if err := s.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login after register: %v", err)
	}
	if err := s.UpdateTasks(ctx, []model.Task{{ID: "t1", Title: "Buy milk"}}); err != nil {
		t.Fatalf("update tasks: %v", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	ctx := context.Background()
	s, st := newService(t, t.TempDir(), WithHasher(Bcrypt{Cost: 4}))
	register(t, s, "alice", "pw")

	u, _ := st.LoadUser(ctx)
	if u.Password == "pw" {
		t.Fatal("password stored in plaintext")
	}
	if err := s.Login(ctx, "alice", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if err := s.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestBcryptAcceptsLegacyPlaintextRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	plain, _ := newService(t, dir)
	register(t, plain, "alice", "pw")

	hashed, _ := newService(t, dir, WithHasher(Bcrypt{Cost: 4}))
	if err := hashed.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login against plaintext record: %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t, t.TempDir())
	register(t, s, "alice", "pw")

	var states []State
	cancel := s.Subscribe(func(snap Snapshot) { states = append(states, snap.State) })
	_ = s.Login(ctx, "alice", "pw")
	_ = s.UpdateTasks(ctx, []model.Task{{ID: "1", Title: "x"}})
	_ = s.Logout(ctx)
	cancel()
	_ = s.Login(ctx, "alice", "pw")

	want := []State{Authenticated, Authenticated, Unauthenticated}
	if !reflect.DeepEqual(states, want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
}

func TestValidateRegistration(t *testing.T) {
	if err := ValidateRegistration("A", "B", "c", "d"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateRegistration("A", " ", "c", "d"); !errors.Is(err, ErrIncompleteRegistration) {
		t.Fatalf("expected ErrIncompleteRegistration, got %v", err)
	}
}
