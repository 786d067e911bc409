package session

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
)

// Authenticator performs the upstream credential exchange.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (webhook.LoginResult, error)
}

// LoginMeta carries client details relevant to post-login hooks.
type LoginMeta struct {
	// PlayerID is the device's push subscription id, if any.
	PlayerID string
}

// Hook runs after a successful login. Its error is logged and never fails
// the login.
type Hook interface {
	Name() string
	AfterLogin(ctx context.Context, s Session, meta LoginMeta) error
}

// LogoutHook is optionally implemented by hooks that react to logout.
type LogoutHook interface {
	BeforeLogout(ctx context.Context, s Session) error
}

// HookFunc adapts a function to Hook.
type HookFunc struct {
	HookName string
	Fn       func(ctx context.Context, s Session, meta LoginMeta) error
}

// Name implements Hook.
func (h HookFunc) Name() string { return h.HookName }

// AfterLogin implements Hook.
func (h HookFunc) AfterLogin(ctx context.Context, s Session, meta LoginMeta) error {
	return h.Fn(ctx, s, meta)
}

// Manager mediates every session mutation.
type Manager struct {
	auth   Authenticator
	hooks  []Hook
	logger *zap.Logger
}

// NewManager builds a manager; hooks run in the given order.
func NewManager(auth Authenticator, logger *zap.Logger, hooks ...Hook) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{auth: auth, hooks: hooks, logger: logger}
}

// Login authenticates upstream and persists token and user together. On any
// failure both keys are cleared and LoggedOut is returned.
func (m *Manager) Login(ctx context.Context, store Store, email, password string, meta LoginMeta) (Session, error) {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.clear(ctx, store)
		return LoggedOut, err
	}

	s := Session{Token: res.Token, User: res.User}
	if err := m.persist(ctx, store, s); err != nil {
		m.clear(ctx, store)
		return LoggedOut, err
	}

	for _, hook := range m.hooks {
		m.runIsolated(hook.Name(), func() error { return hook.AfterLogin(ctx, s, meta) })
	}
	return s, nil
}

// Logout runs logout hooks then clears both keys.
func (m *Manager) Logout(ctx context.Context, store Store) error {
	current, err := m.Current(ctx, store)
	if err == nil && !current.IsLoggedOut() {
		for _, hook := range m.hooks {
			if lh, ok := hook.(LogoutHook); ok {
				m.runIsolated(hook.Name(), func() error { return lh.BeforeLogout(ctx, current) })
			}
		}
	}
	return store.Clear(ctx, KeyToken, KeyUser)
}

// Current reads the session; a missing token yields LoggedOut.
func (m *Manager) Current(ctx context.Context, store Store) (Session, error) {
	token, err := store.Get(ctx, KeyToken)
	if err != nil {
		return LoggedOut, fmt.Errorf("read session token: %w", err)
	}
	if token == "" {
		return LoggedOut, nil
	}
	rawUser, err := store.Get(ctx, KeyUser)
	if err != nil {
		return LoggedOut, fmt.Errorf("read session user: %w", err)
	}
	user := map[string]any{}
	if rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			m.logger.Warn("discarding unreadable session user", zap.Error(err))
			user = map[string]any{}
		}
	}
	return Session{Token: token, User: user}, nil
}

func (m *Manager) persist(ctx context.Context, store Store, s Session) error {
	user := s.User
	if user == nil {
		user = map[string]any{}
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := store.Set(ctx, KeyToken, s.Token); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	if err := store.Set(ctx, KeyUser, string(encoded)); err != nil {
		return fmt.Errorf("write session user: %w", err)
	}
	return nil
}

func (m *Manager) clear(ctx context.Context, store Store) {
	if err := store.Clear(ctx, KeyToken, KeyUser); err != nil {
		m.logger.Warn("failed to clear session", zap.Error(err))
	}
}

func (m *Manager) runIsolated(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("session hook panicked", zap.String("hook", name), zap.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		m.logger.Warn("session hook failed", zap.String("hook", name), zap.Error(err))
	}
}
