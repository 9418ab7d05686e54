// Package session signs members in with a password and tracks each sign-in
// through one explicit state machine:
//
//	idle -> authenticating -> profile_loading -> ready | error
//
// Any state can move to signed_out. Profile loading is bounded by a timeout
// whose outcome is set by Policy.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/organization"
	"github.com/thenoetrevino/sitebook/internal/services/team"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	defaultColor      = "#3B82F6"
)

// Policy decides what a failed profile load does to the session
type Policy string

const (
	// PolicyRetain keeps the session in the error state so the profile can be reloaded
	PolicyRetain Policy = "retain"
	// PolicySignOut discards the session
	PolicySignOut Policy = "sign_out"
)

// ParsePolicy validates a policy name; empty means retain
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyRetain, nil
	case PolicyRetain, PolicySignOut:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Config bounds sessions
type Config struct {
	ProfileTimeout time.Duration
	Policy         Policy
	TTL            time.Duration
	HashCost       int
}

// DefaultConfig waits 4s for a profile, retains failed sessions and keeps
// sessions for a day
func DefaultConfig() Config {
	return Config{
		ProfileTimeout: 4 * time.Second,
		Policy:         PolicyRetain,
		TTL:            24 * time.Hour,
		HashCost:       bcrypt.DefaultCost,
	}
}

// Session is one sign-in. Only ready sessions authenticate requests.
type Session struct {
	Token          string      `json:"token"`
	MemberID       int         `json:"member_id"`
	OrganizationID int         `json:"organization_id"`
	Role           models.Role `json:"role,omitempty"`
	FullName       string      `json:"full_name,omitempty"`
	Email          string      `json:"email,omitempty"`
	State          State       `json:"state"`
	Error          string      `json:"error,omitempty"`
	ExpiresAt      time.Time   `json:"expires_at"`
}

// ProfileLoader fetches the profile of a signed-in member
type ProfileLoader func(ctx context.Context, memberID int) (*models.Member, error)

// RegisterRequest creates a member. Without a pending invite for Email a new
// organization named OrganizationName is created with the member as owner.
type RegisterRequest struct {
	Email            string
	Password         string
	FullName         string
	OrganizationName string
}

// Option configures the manager
type Option func(*Manager)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithProfileLoader replaces the store lookup used in profile_loading
func WithProfileLoader(load ProfileLoader) Option {
	return func(m *Manager) { m.loadProfile = load }
}

// Manager owns every live session
type Manager struct {
	store       *database.Store
	cfg         Config
	tokens      *tokenStore
	loadProfile ProfileLoader
	log         *zap.Logger
	now         func() time.Time
	dummyHash   []byte
}

// NewManager creates a session manager; zero config fields take DefaultConfig values
func NewManager(store *database.Store, cfg Config, opts ...Option) *Manager {
	def := DefaultConfig()
	if cfg.ProfileTimeout <= 0 {
		cfg.ProfileTimeout = def.ProfileTimeout
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = def.HashCost
	}

	m := &Manager{
		store:  store,
		cfg:    cfg,
		tokens: newTokenStore(),
		log:    zap.NewNop(),
		now:    time.Now,
	}
	m.loadProfile = func(ctx context.Context, id int) (*models.Member, error) {
		return store.Members.GetByID(ctx, id)
	}
	for _, opt := range opts {
		opt(m)
	}

	// Compared against when the email is unknown so both paths cost one hash
	m.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sitebook-unknown-member"), cfg.HashCost)
	return m
}

// Register creates a member, joining the organization of a pending invite
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*models.Member, error) {
	email, err := team.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, ErrEmptyName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), m.cfg.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var created *models.Member
	err = m.store.InTx(ctx, func(tx *database.Store) error {
		if _, err := tx.Members.GetByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		orgID, role, err := m.joinOrganization(ctx, tx, email, req.OrganizationName)
		if err != nil {
			return err
		}

		created, err = tx.Members.Create(ctx, &models.Member{
			OrganizationID: orgID,
			Email:          email,
			FullName:       name,
			Role:           role,
			Color:          defaultColor,
			PasswordHash:   string(hash),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("member registered",
		zap.Int("member_id", created.ID),
		zap.Int("organization_id", created.OrganizationID),
		zap.String("role", string(created.Role)))
	return created, nil
}

// joinOrganization consumes a pending invite or creates a new organization
func (m *Manager) joinOrganization(ctx context.Context, tx *database.Store, email, orgName string) (int, models.Role, error) {
	inv, err := tx.Members.FindInvite(ctx, email)
	switch {
	case err == nil:
		if err := tx.Members.DeleteInvite(ctx, inv.OrganizationID, inv.ID); err != nil {
			return 0, "", err
		}
		return inv.OrganizationID, inv.Role, nil
	case !errors.Is(err, models.ErrNotFound):
		return 0, "", err
	}

	orgName = strings.TrimSpace(orgName)
	if orgName == "" {
		return 0, "", ErrOrganizationNeeded
	}
	if err := organization.ValidateName(orgName); err != nil {
		return 0, "", err
	}
	org, err := tx.Organizations.Create(ctx, orgName)
	if err != nil {
		return 0, "", err
	}
	return org.ID, models.RoleOwner, nil
}

// SignIn verifies the password and loads the profile. On a failed profile
// load the returned session reports the state the policy left it in.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	sess := &Session{State: StateIdle}
	if err := sess.to(StateAuthenticating); err != nil {
		return nil, err
	}

	member, err := m.verify(ctx, email, password)
	if err != nil {
		sess.fail(err)
		m.log.Info("sign in rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	sess.Token = uuid.NewString()
	sess.MemberID = member.ID
	sess.Email = member.Email
	sess.ExpiresAt = m.now().Add(m.cfg.TTL)

	return m.load(ctx, sess)
}

func (m *Manager) verify(ctx context.Context, email, password string) (*models.Member, error) {
	normalized, err := team.NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	member, err := m.store.Members.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(m.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return member, nil
}

// Reload runs profile_loading again for a ready or failed session
func (m *Manager) Reload(ctx context.Context, token string) (*Session, error) {
	sess, ok := m.tokens.get(token)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !m.now().Before(sess.ExpiresAt) {
		m.tokens.delete(token)
		return nil, ErrSessionExpired
	}
	return m.load(ctx, &sess)
}

// load moves sess through profile_loading, bounded by the profile timeout
func (m *Manager) load(ctx context.Context, sess *Session) (*Session, error) {
	if err := sess.to(StateProfileLoading); err != nil {
		return nil, err
	}

	lctx, cancel := context.WithTimeout(ctx, m.cfg.ProfileTimeout)
	defer cancel()

	profile, err := m.loadProfile(lctx, sess.MemberID)
	switch {
	case err != nil && errors.Is(lctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return m.failLoad(sess, ErrProfileTimeout)
	case errors.Is(err, models.ErrNotFound):
		// Nothing left to retry against
		sess.fail(err)
		return m.signOut(sess, err)
	case err != nil:
		return m.failLoad(sess, fmt.Errorf("failed to load profile: %w", err))
	case profile.OrganizationID == 0:
		return m.failLoad(sess, ErrNoOrganization)
	}

	sess.OrganizationID = profile.OrganizationID
	sess.Role = profile.Role
	sess.FullName = profile.FullName
	sess.Email = profile.Email
	if err := sess.to(StateReady); err != nil {
		return nil, err
	}
	m.tokens.put(sess)

	m.log.Info("session ready",
		zap.Int("member_id", sess.MemberID),
		zap.Int("organization_id", sess.OrganizationID))
	out := *sess
	return &out, nil
}

// failLoad applies the timeout policy to a session whose profile did not load
func (m *Manager) failLoad(sess *Session, cause error) (*Session, error) {
	sess.fail(cause)
	m.log.Warn("profile load failed",
		zap.Int("member_id", sess.MemberID),
		zap.String("policy", string(m.cfg.Policy)),
		zap.Error(cause))

	if m.cfg.Policy == PolicySignOut {
		return m.signOut(sess, cause)
	}
	m.tokens.put(sess)
	out := *sess
	return &out, cause
}

func (m *Manager) signOut(sess *Session, cause error) (*Session, error) {
	m.tokens.delete(sess.Token)
	_ = sess.to(StateSignedOut)
	out := *sess
	return &out, cause
}

// Authenticate returns the ready session behind token
func (m *Manager) Authenticate(token string) (*Session, error) {
	sess, ok := m.tokens.get(token)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !m.now().Before(sess.ExpiresAt) {
		m.tokens.delete(token)
		return nil, ErrSessionExpired
	}
	if sess.State != StateReady {
		return nil, fmt.Errorf("%w: session is %s", ErrUnauthenticated, sess.State)
	}
	return &sess, nil
}

// Lookup returns the session behind token in whatever state it is
func (m *Manager) Lookup(token string) (*Session, bool) {
	sess, ok := m.tokens.get(token)
	if !ok {
		return nil, false
	}
	return &sess, true
}

// SignOut discards the session; unknown tokens are ignored
func (m *Manager) SignOut(token string) {
	m.tokens.delete(token)
}

// Sweep drops expired sessions and returns how many were removed
func (m *Manager) Sweep() int {
	return m.tokens.sweep(m.now())
}

// Active returns the number of live sessions
func (m *Manager) Active() int {
	return m.tokens.len()
}
