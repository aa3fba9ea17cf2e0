package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"goldengate/internal/domain"
	"goldengate/internal/repos"
)

const SessionSlot = "user"

// ErrInvalidCredentials is the only error a login surfaces to the user.
var ErrInvalidCredentials = errors.New("invalid email or password")

// LoginFailedMessage is shown on the login screen when credentials are rejected.
const LoginFailedMessage = "Credenciales incorrectas. Por favor, inténtalo de nuevo."

const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

type GateState int

const (
	StateLoading GateState = iota
	StateAnonymous
	StateAuthenticated
)

func (s GateState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "loading"
	}
}

// Credential is one row of the fixed login table.
type Credential struct {
	Email    string
	Password string
	Role     domain.Role
}

// DefaultCredentials is the reference deployment's login table.
var DefaultCredentials = []Credential{
	{Email: "admin@goldengate.com", Password: "1234", Role: domain.RoleAdmin},
	{Email: "cajero@goldengate.com", Password: "1234", Role: domain.RoleCashier},
}

type account struct {
	hash []byte
	role domain.Role
}

// Gate holds the authenticated user of one execution context.
type Gate struct {
	slots    repos.SlotStore
	accounts map[string]account
	log      *zap.Logger

	boot    sync.Once
	bootErr error

	mu      sync.RWMutex
	state   GateState
	session *domain.Session
}

func NewGate(slots repos.SlotStore, creds []Credential, logger *zap.Logger) (*Gate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{
		slots:    slots,
		accounts: make(map[string]account, len(creds)),
		log:      logger,
		state:    StateLoading,
	}
	for _, c := range creds {
		h, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", c.Email, err)
		}
		g.accounts[c.Email] = account{hash: h, role: c.Role}
	}
	return g, nil
}

// Boot reads the persisted session once. A value that does not parse as a
// session is removed and the gate starts anonymous.
func (g *Gate) Boot(ctx context.Context) error {
	g.boot.Do(func() {
		g.bootErr = g.restore(ctx)
	})
	return g.bootErr
}

func (g *Gate) restore(ctx context.Context) error {
	raw, ok, err := g.slots.Get(ctx, SessionSlot)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	var sess *domain.Session
	if ok {
		var s domain.Session
		if jerr := json.Unmarshal([]byte(raw), &s); jerr != nil || s.Email == "" || !s.Role.Valid() {
			g.log.Warn("discarding unparseable session", zap.Error(jerr))
			if derr := g.slots.Delete(ctx, SessionSlot); derr != nil {
				return fmt.Errorf("clear session: %w", derr)
			}
		} else {
			sess = &s
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// A login that raced the boot read wins.
	if g.state != StateLoading {
		return nil
	}
	g.session = sess
	if sess != nil {
		g.state = StateAuthenticated
	} else {
		g.state = StateAnonymous
	}
	return nil
}

// Login checks the credential table. On success the new session replaces any
// previous one and the caller should navigate to the returned path.
func (g *Gate) Login(ctx context.Context, email, password string) (domain.Session, string, error) {
	acc, ok := g.accounts[email]
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return domain.Session{}, "", ErrInvalidCredentials
	}

	sess := domain.Session{Email: email, Role: acc.role}
	b, err := json.Marshal(sess)
	if err != nil {
		return domain.Session{}, "", err
	}
	if err := g.slots.Set(ctx, SessionSlot, string(b)); err != nil {
		return domain.Session{}, "", fmt.Errorf("persist session: %w", err)
	}

	g.mu.Lock()
	g.session = &sess
	g.state = StateAuthenticated
	g.mu.Unlock()
	return sess, PathDashboard, nil
}

// Logout clears the session and returns the path to navigate to.
func (g *Gate) Logout(ctx context.Context) (string, error) {
	if err := g.slots.Delete(ctx, SessionSlot); err != nil {
		return "", fmt.Errorf("clear session: %w", err)
	}
	g.mu.Lock()
	g.session = nil
	g.state = StateAnonymous
	g.mu.Unlock()
	return PathLogin, nil
}

// Current returns the session, or nil when loading or anonymous.
func (g *Gate) Current() *domain.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return nil
	}
	s := *g.session
	return &s
}

func (g *Gate) State() GateState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}
