// Package session holds the authentication state of one browser session.
//
// A Store starts in Loading, is bootstrapped from the persisted session
// record exactly once, and then moves between Unauthenticated and
// Authenticated through Login, Register and Logout.  While Authenticated
// the store hands out a backend client that carries the session's bearer
// token; in any other state the client is anonymous.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/eventx-studio/internal/backend"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/utils"
)

// State is the store's position in its state machine.
type State int

const (
	Loading State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrInvalidRole is returned when the backend authenticates a user whose
// role is neither admin nor user.  Nothing is persisted in that case.
var ErrInvalidRole = errors.New("invalid role")

// ErrNoToken is returned when a successful auth response carries no token.
var ErrNoToken = errors.New("auth response without token")

// ErrNotReady is returned by Login and Register while the store is still
// Loading.  Only Bootstrap may leave that state.
var ErrNotReady = errors.New("session not ready")

// Manager creates per-request stores.  It is shared by all requests.
type Manager struct {
	records  repository.SessionRepository
	screens  repository.ScreenRepository
	api      *backend.Client
	validate *validator.Validate
	ttl      time.Duration
	l        logger.Logger
	now      func() time.Time
}

// NewManager wires a Manager.  screens may be nil when no screen state is
// kept.
func NewManager(records repository.SessionRepository, screens repository.ScreenRepository, api *backend.Client, validate *validator.Validate, ttl time.Duration, l logger.Logger) *Manager {
	return &Manager{
		records:  records,
		screens:  screens,
		api:      api,
		validate: validate,
		ttl:      ttl,
		l:        l,
		now:      time.Now,
	}
}

// Open returns a Loading store for sessionID.  An empty id means the
// browser presented no valid cookie.
func (m *Manager) Open(sessionID string) *Store {
	return &Store{m: m, id: sessionID, state: Loading, api: m.api}
}

// Store is the session state for one request.
type Store struct {
	m        *Manager
	id       string
	state    State
	identity model.Identity
	api      *backend.Client
}

// Bootstrap resolves Loading into Authenticated or Unauthenticated from the
// persisted record.  If the record store cannot be read the store stays
// Loading and the error is returned.  On a store that is not Loading it is
// a no-op.
func (s *Store) Bootstrap(ctx context.Context) error {
	if s.state != Loading {
		return nil
	}
	if s.id == "" {
		s.state = Unauthenticated
		return nil
	}
	rec, err := s.m.records.Load(ctx, s.id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.state = Unauthenticated
		return nil
	case err != nil:
		return err
	}
	if !rec.Complete() || !rec.Identity.Role.Valid() {
		s.state = Unauthenticated
		return nil
	}
	s.authenticate(rec.Token, rec.Identity)
	return nil
}

// Login authenticates with the backend and persists the result under a
// fresh session id.  On failure the store is left exactly as it was.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	if s.state == Loading {
		return model.Identity{}, ErrNotReady
	}
	if err := s.m.validate.Struct(creds); err != nil {
		return model.Identity{}, backend.Declined("Email and password are required")
	}
	resp, err := s.m.api.Login(ctx, creds)
	if err != nil {
		return model.Identity{}, err
	}
	return s.establish(ctx, resp)
}

// Register creates an account and signs in with the same contract as Login.
func (s *Store) Register(ctx context.Context, reg model.Registration) (model.Identity, error) {
	if s.state == Loading {
		return model.Identity{}, ErrNotReady
	}
	if err := s.m.validate.Struct(reg); err != nil {
		return model.Identity{}, backend.Declined("%s", registrationProblem(err))
	}
	resp, err := s.m.api.Register(ctx, reg)
	if err != nil {
		return model.Identity{}, err
	}
	return s.establish(ctx, resp)
}

func (s *Store) establish(ctx context.Context, resp model.AuthResponse) (model.Identity, error) {
	if !resp.User.Role.Valid() {
		s.m.l.Warn("auth response with unroutable role", "role", resp.User.Role, "email", resp.User.Email)
		return model.Identity{}, ErrInvalidRole
	}
	if resp.Token == "" {
		return model.Identity{}, ErrNoToken
	}
	id := utils.NewSessionID()
	rec := model.SessionRecord{Token: resp.Token, Identity: resp.User, CreatedAt: s.m.now().UTC()}
	if err := s.m.records.Save(ctx, id, rec, s.m.ttl); err != nil {
		return model.Identity{}, err
	}
	if s.id != "" {
		s.discard(ctx, s.id)
	}
	s.id = id
	s.authenticate(resp.Token, resp.User)
	return resp.User, nil
}

// Logout forgets the session locally.  The backend is not contacted.  The
// in-memory state is cleared even when deleting the persisted record fails.
func (s *Store) Logout(ctx context.Context) error {
	var err error
	if s.id != "" {
		err = s.discard(ctx, s.id)
	}
	s.id = ""
	s.state = Unauthenticated
	s.identity = model.Identity{}
	s.api = s.m.api
	return err
}

func (s *Store) discard(ctx context.Context, id string) error {
	err := s.m.records.Delete(ctx, id)
	if err != nil {
		s.m.l.Error("delete session record", "error", err)
	}
	if s.m.screens != nil {
		if cerr := s.m.screens.Clear(ctx, id); cerr != nil {
			s.m.l.Warn("clear screen state", "error", cerr)
		}
	}
	return err
}

func (s *Store) authenticate(token string, identity model.Identity) {
	s.state = Authenticated
	s.identity = identity
	s.api = s.m.api.WithToken(token)
}

// ID is the current session id, empty when there is none.
func (s *Store) ID() string { return s.id }

func (s *Store) State() State { return s.state }

// Identity is the signed-in identity; the zero value unless Authenticated.
func (s *Store) Identity() model.Identity { return s.identity }

// API is the backend client for this session.  It carries the bearer token
// only while Authenticated.
func (s *Store) API() *backend.Client { return s.api }

func registrationProblem(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Registration failed"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "AdminCode":
		return "Admin code is required for admin accounts"
	case "Password":
		return "Password must be at least 6 characters"
	case "Email":
		return "A valid email is required"
	case "Role":
		return "Role must be admin or user"
	case "Name":
		return "Name is required"
	}
	return "Registration failed"
}
