// ABOUTME: Session store holding the current identity and bearer token
// ABOUTME: Persists the token durably and notifies observers on every change

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/waynezhang680/examctl/internal/models"
	"github.com/waynezhang680/examctl/internal/storage"
)

// TokenKey is the durable storage key for the bearer token
const TokenKey = "token"

var (
	// ErrEmptyToken is returned by SetToken for an empty token
	ErrEmptyToken = errors.New("token must not be empty")
	// ErrNoToken is returned by SetUser when there is no token to pair the identity with
	ErrNoToken = errors.New("cannot set user without a token")
	// ErrNoAuthenticator is returned when login, register or rehydrate run without a service
	ErrNoAuthenticator = errors.New("no authentication service configured")
)

// Authenticator is the remote authentication service
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, form models.RegisterRequest) (*models.AuthResponse, error)
	CurrentUser(ctx context.Context) (*models.Identity, error)
}

// Store is the single owner of session state. Other components read
// snapshots and may request Logout or Evict, never mutate fields.
type Store struct {
	storage storage.Store
	auth    Authenticator
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	observers map[int]Observer
	nextID    int

	rehydrate singleflight.Group
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store's logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store and hydrates the token from durable storage.
// A hydrated token yields Restored; call Rehydrate to fetch the identity.
func New(store storage.Store, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		storage:   store,
		auth:      auth,
		logger:    slog.Default(),
		state:     Anonymous{},
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.storage == nil {
		s.storage = storage.NewMemory()
	}

	token, ok, err := s.storage.Get(TokenKey)
	if err != nil {
		s.logger.Warn("Failed to read persisted token, starting anonymous", "error", err)
		return s
	}
	if ok && token != "" {
		s.state = Restored{Token: token}
		s.logger.Debug("Restored persisted token")
	}
	return s
}

// State returns a snapshot of the current session state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current bearer token, or "" when anonymous
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tokenOf(s.state)
}

// Identity returns the authenticated identity, if known
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.state.(Authenticated); ok {
		return a.Identity, true
	}
	return models.Identity{}, false
}

// Authenticated reports whether a token is present. Restored sessions count.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Subscribe registers an observer and returns a func that removes it
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = o

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// SetUser replaces the identity. A Restored session becomes Authenticated.
func (s *Store) SetUser(identity models.Identity) error {
	s.mu.Lock()
	token := tokenOf(s.state)
	if token == "" {
		s.mu.Unlock()
		return ErrNoToken
	}
	s.state = Authenticated{Identity: identity, Token: token}
	notify := s.changeLocked(ReasonUserSet)
	s.mu.Unlock()

	notify()
	return nil
}

// SetToken replaces the token in memory and persists it best-effort.
// An anonymous session becomes Restored until an identity is set.
func (s *Store) SetToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	switch st := s.state.(type) {
	case Authenticated:
		s.state = Authenticated{Identity: st.Identity, Token: token}
	default:
		s.state = Restored{Token: token}
	}
	s.persistLocked(token)
	notify := s.changeLocked(ReasonTokenSet)
	s.mu.Unlock()

	notify()
	return nil
}

// Login authenticates with the service. On success the identity and then the
// token are applied as one transition and the token is persisted. On failure
// the service's error is returned unchanged and nothing is mutated.
func (s *Store) Login(ctx context.Context, username, password string) error {
	if s.auth == nil {
		return ErrNoAuthenticator
	}
	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	s.establish(resp, ReasonLogin)
	return nil
}

// Register creates an account with the service; same contract as Login
func (s *Store) Register(ctx context.Context, form models.RegisterRequest) error {
	if s.auth == nil {
		return ErrNoAuthenticator
	}
	resp, err := s.auth.Register(ctx, form)
	if err != nil {
		return err
	}
	s.establish(resp, ReasonRegister)
	return nil
}

// Logout clears identity and token, then erases the persisted token.
// It is a no-op when already anonymous.
func (s *Store) Logout() {
	s.clear(ReasonLogout)
}

// Evict is the forced logout triggered by an authorization failure.
// Safe to call from overlapping responses; only the first has an effect.
func (s *Store) Evict() {
	s.clear(ReasonEvicted)
}

// Rehydrate fetches the identity for a Restored session. Concurrent calls
// share one request. A newer login or a logout in the meantime wins.
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	restored, ok := s.state.(Restored)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if s.auth == nil {
		return ErrNoAuthenticator
	}

	_, err, _ := s.rehydrate.Do(restored.Token, func() (interface{}, error) {
		user, err := s.auth.CurrentUser(ctx)
		if err != nil {
			s.logger.Debug("Rehydration failed", "error", err)
			return nil, err
		}

		s.mu.Lock()
		current, ok := s.state.(Restored)
		if !ok || current.Token != restored.Token {
			s.mu.Unlock()
			return nil, nil
		}
		s.state = Authenticated{Identity: *user, Token: restored.Token}
		notify := s.changeLocked(ReasonRehydrated)
		s.mu.Unlock()

		notify()
		return nil, nil
	})
	return err
}

func (s *Store) establish(resp *models.AuthResponse, reason Reason) {
	s.mu.Lock()
	s.state = Authenticated{Identity: resp.User, Token: resp.Token}
	s.persistLocked(resp.Token)
	notify := s.changeLocked(reason)
	s.mu.Unlock()

	s.logger.Info("Session established", "user", resp.User.Username, "reason", reason.String())
	notify()
}

func (s *Store) clear(reason Reason) {
	s.mu.Lock()
	if _, ok := s.state.(Anonymous); ok {
		s.mu.Unlock()
		return
	}

	// Memory first, then storage
	s.state = Anonymous{}
	if err := s.storage.Delete(TokenKey); err != nil {
		s.logger.Warn("Failed to erase persisted token", "error", err)
	}
	notify := s.changeLocked(reason)
	s.mu.Unlock()

	if reason == ReasonEvicted {
		s.logger.Warn("Session evicted after authorization failure")
	} else {
		s.logger.Info("Logged out")
	}
	notify()
}

// persistLocked writes the token durably. Failures are logged, never returned:
// the in-memory token stays authoritative for this process.
func (s *Store) persistLocked(token string) {
	if err := s.storage.Set(TokenKey, token); err != nil {
		s.logger.Warn("Failed to persist token", "error", err)
	}
}

// changeLocked snapshots the observers and returns a func that notifies them
func (s *Store) changeLocked(reason Reason) func() {
	change := Change{State: s.state, Reason: reason}
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	return func() {
		for _, o := range observers {
			o(change)
		}
	}
}
