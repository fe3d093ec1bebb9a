package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/domain"
)

// Client is the slice of the backend auth service the hook depends on.
type Client interface {
	Login(ctx context.Context, creds domain.LoginCredentials) domain.LoginResult
	Logout(ctx context.Context, req domain.LogoutRequest)
	CheckAuth(ctx context.Context, cookieHeader string) domain.AuthResult
}

// HydrationCache keeps a short-lived copy of the logged-in user.
type HydrationCache interface {
	Put(ctx context.Context, key string, user *domain.UserSummary, ttl time.Duration) error
	Get(ctx context.Context, key string) (*domain.UserSummary, error)
}

// Status is the hook's position in its three state lifecycle.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the hook. User is set only when authenticated.
type State struct {
	Status Status
	User   *domain.UserSummary
}

// Loading reports whether the state is still resolving.
func (s State) Loading() bool {
	return s.Status == StatusUnknown
}

// IsAuthenticated is nil while loading.
func (s State) IsAuthenticated() *bool {
	if s.Status == StatusUnknown {
		return nil
	}
	v := s.Status == StatusAuthenticated
	return &v
}

// MarshalJSON renders the state the way the portal UI consumes it.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IsAuthenticated *bool               `json:"isAuthenticated"`
		User            *domain.UserSummary `json:"user"`
		Loading         bool                `json:"loading"`
	}{
		IsAuthenticated: s.IsAuthenticated(),
		User:            s.User,
		Loading:         s.Loading(),
	})
}

// HookDependencies wires a hook to one browser request.
type HookDependencies struct {
	Client       Client
	Cache        HydrationCache
	CacheTTL     time.Duration
	CookieHeader string
	CacheKey     string
	AuthPath     string
	Navigate     func(path string)
	Logger       *zap.Logger
}

// Hook holds per-mount authentication state. Every call it issues is bound to the
// hook's own context, so Close cancels whatever is still in flight and results
// arriving afterwards are dropped.
type Hook struct {
	deps   HookDependencies
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mountOnce   sync.Once
	resolveOnce sync.Once
	resolved    chan struct{}

	mu       sync.RWMutex
	state    State
	cacheKey string
}

// NewHook creates a hook in the unknown state.
func NewHook(ctx context.Context, deps HookDependencies) *Hook {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.AuthPath == "" {
		deps.AuthPath = "/auth"
	}
	hctx, cancel := context.WithCancel(ctx)
	return &Hook{
		deps:     deps,
		logger:   logger.Named("auth_hook"),
		ctx:      hctx,
		cancel:   cancel,
		resolved: make(chan struct{}),
		cacheKey: deps.CacheKey,
	}
}

// Mount starts the single check-auth call for this hook. Further calls are no-ops.
func (h *Hook) Mount() {
	h.mountOnce.Do(func() {
		go h.CheckAuth(h.ctx)
	})
}

// CheckAuth resolves the state from the backend and reports whether the session
// is authenticated.
func (h *Hook) CheckAuth(ctx context.Context) bool {
	callCtx, done := h.callContext(ctx)
	defer done()

	result := h.deps.Client.CheckAuth(callCtx, h.deps.CookieHeader)
	next := State{Status: StatusUnauthenticated}
	if result.Authenticated {
		next = State{Status: StatusAuthenticated, User: result.User}
	}
	if !h.apply(callCtx, next) {
		return false
	}
	return result.Authenticated
}

// Login relays credentials. A successful login also stores the returned user in the
// hydration cache under a fresh key, available through CacheKey.
func (h *Hook) Login(ctx context.Context, creds domain.LoginCredentials) domain.LoginResult {
	callCtx, done := h.callContext(ctx)
	defer done()

	result := h.deps.Client.Login(callCtx, creds)
	if !result.Success {
		h.apply(callCtx, State{Status: StatusUnauthenticated})
		return result
	}

	fields := result.Data
	if nested, ok := result.Data["user"].(map[string]any); ok {
		fields = nested
	}
	user := domain.UserFromMap(fields)
	if !h.apply(callCtx, State{Status: StatusAuthenticated, User: user}) {
		return result
	}
	h.hydrate(callCtx, user)
	return result
}

// Logout ends the backend session, forces the unauthenticated state and navigates
// to the auth entry page.
func (h *Hook) Logout(ctx context.Context) {
	callCtx, done := h.callContext(ctx)
	defer done()

	h.deps.Client.Logout(callCtx, domain.LogoutRequest{
		CookieHeader: h.deps.CookieHeader,
		CacheKey:     h.CacheKey(),
	})

	if h.ctx.Err() != nil {
		return
	}
	h.mu.Lock()
	h.cacheKey = ""
	h.mu.Unlock()
	h.force(State{Status: StatusUnauthenticated})

	if h.deps.Navigate != nil {
		h.deps.Navigate(h.deps.AuthPath)
	}
}

// State returns the current snapshot.
func (h *Hook) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// CacheKey returns the hydration cache key for this session, if any.
func (h *Hook) CacheKey() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cacheKey
}

// Hydrated returns the copy of the user cached at login, if the session carries
// a cache key and the entry is still live. It is a display hint and never an
// authentication answer.
func (h *Hook) Hydrated(ctx context.Context) (*domain.UserSummary, bool) {
	key := h.CacheKey()
	if h.deps.Cache == nil || key == "" {
		return nil, false
	}
	user, err := h.deps.Cache.Get(ctx, key)
	if err != nil || user == nil {
		h.logger.Debug("no hydrated user", zap.Error(err))
		return nil, false
	}
	return user, true
}

// Resolved is closed once the hook first leaves the unknown state.
func (h *Hook) Resolved() <-chan struct{} {
	return h.resolved
}

// Wait blocks until the state resolves, ctx is done or the hook is closed. The
// snapshot is returned in every case.
func (h *Hook) Wait(ctx context.Context) (State, error) {
	select {
	case <-h.resolved:
		return h.State(), nil
	case <-ctx.Done():
		return h.State(), ctx.Err()
	case <-h.ctx.Done():
		return h.State(), h.ctx.Err()
	}
}

// Close cancels in-flight calls. The state is frozen from here on.
func (h *Hook) Close() {
	h.cancel()
}

// callContext derives a call context cancelled by either the caller or Close.
func (h *Hook) callContext(ctx context.Context) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(h.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// apply stores next unless the call was cancelled while in flight.
func (h *Hook) apply(callCtx context.Context, next State) bool {
	if callCtx.Err() != nil {
		h.logger.Debug("discarding late auth result", zap.Stringer("status", next.Status))
		return false
	}
	h.force(next)
	return true
}

func (h *Hook) force(next State) {
	h.mu.Lock()
	h.state = next
	h.mu.Unlock()
	if next.Status != StatusUnknown {
		h.resolveOnce.Do(func() { close(h.resolved) })
	}
}

func (h *Hook) hydrate(ctx context.Context, user *domain.UserSummary) {
	if h.deps.Cache == nil || h.deps.CacheTTL <= 0 {
		return
	}
	key := uuid.NewString()
	if err := h.deps.Cache.Put(ctx, key, user, h.deps.CacheTTL); err != nil {
		h.logger.Warn("hydration cache write failed", zap.Error(err))
		return
	}
	h.mu.Lock()
	h.cacheKey = key
	h.mu.Unlock()
}
