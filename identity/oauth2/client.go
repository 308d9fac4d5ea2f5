package oauth2client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-authprovider/core"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
)

const (
	defaultExpirySkew   = 30 * time.Second
	defaultLoginTimeout = 5 * time.Minute
	defaultStoreTimeout = 10 * time.Second
)

// URLOpener shows the authorization URL to the user.
type URLOpener func(url string) error

// Client is an identity client over golang.org/x/oauth2. Interactive login
// uses the authorization code flow with PKCE on a loopback redirect.
type Client struct {
	cfg          Config
	store        SessionStore
	openURL      URLOpener
	httpClient   *http.Client
	logger       core.Logger
	now          func() time.Time
	expirySkew   time.Duration
	loginTimeout time.Duration

	mu      sync.RWMutex
	session *Session
	// generation is bumped by Logout; token results started under an older
	// generation are discarded.
	generation uint64

	// storeMu orders persisting a token result against Logout's delete.
	storeMu sync.Mutex
}

type Option func(*Client)

func WithSessionStore(store SessionStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

func WithURLOpener(opener URLOpener) Option {
	return func(c *Client) {
		c.openURL = opener
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithExpirySkew reports sessions as expired this long before their expiry.
func WithExpirySkew(skew time.Duration) Option {
	return func(c *Client) {
		c.expirySkew = skew
	}
}

// WithLoginTimeout bounds how long the loopback server waits for the
// redirect.
func WithLoginTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.loginTimeout = timeout
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, clientError(ErrorConfigInvalid, err.Error(), err, nil)
	}
	client := &Client{
		cfg:          cfg,
		store:        NewMemorySessionStore(),
		openURL:      browser.OpenURL,
		logger:       glog.Nop(),
		now:          time.Now,
		expirySkew:   defaultExpirySkew,
		loginTimeout: defaultLoginTimeout,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(client)
	}
	if client.store == nil {
		client.store = NewMemorySessionStore()
	}
	if client.openURL == nil {
		client.openURL = browser.OpenURL
	}
	client.logger = glog.Ensure(client.logger)
	if client.now == nil {
		client.now = time.Now
	}
	if client.expirySkew < 0 {
		client.expirySkew = 0
	}
	if client.loginTimeout <= 0 {
		client.loginTimeout = defaultLoginTimeout
	}
	return client, nil
}

func (c *Client) Config() Config {
	cfg := c.cfg
	cfg.Scopes = append([]string(nil), c.cfg.Scopes...)
	return cfg
}

// CurrentSession returns the in-memory session or nil.
func (c *Client) CurrentSession() core.Session {
	session := c.currentSession()
	if session == nil {
		return nil
	}
	return session
}

func (c *Client) currentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

func (c *Client) snapshot() (*Session, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.generation
}

// commit installs session and persists it, unless Logout ran since
// generation was read.
func (c *Client) commit(ctx context.Context, session *Session, previous *Session, generation uint64) error {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		c.logger.Debug("discarding token result started before logout")
		return clientError(ErrorSessionSuperseded, "oauth2client: session was logged out while the token request was running", nil, nil)
	}
	c.session = session
	c.mu.Unlock()

	c.persist(ctx, session, previous)
	return nil
}

// forget drops the in-memory session and invalidates running token requests.
func (c *Client) forget() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.session
	c.session = nil
	c.generation++
	return current
}

// Restore loads the persisted session, if any, into memory. An expired
// session is kept so the next request can refresh it silently.
func (c *Client) Restore(ctx context.Context) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	stored, err := c.store.Load(ctx, c.cfg.StoreKey)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, clientError(ErrorStoreFailed, "oauth2client: load session", err, map[string]any{"key": c.cfg.StoreKey})
	}
	session := c.sessionFromStored(stored)
	if session.accessToken == "" && session.refreshToken == "" {
		return false, nil
	}
	c.setSession(session)
	c.logger.Debug("session restored", "key", c.cfg.StoreKey, "expired", session.IsExpired())
	return true, nil
}

// Login tries a silent refresh when a refresh token is held and falls back
// to the interactive flow. It returns immediately; listener receives exactly
// one terminal event.
func (c *Client) Login(owner core.UIOwner, listener core.AuthListener) {
	events := newListenerOnce(listener)
	go func() {
		ctx, cancel := context.WithTimeout(c.context(), c.loginTimeout)
		defer cancel()

		current, generation := c.snapshot()
		if current != nil && current.refreshToken != "" {
			session, err := c.refresh(ctx, current, generation)
			if err == nil {
				events.complete(core.StatusConnected, session)
				return
			}
			if isSuperseded(err) {
				events.fail(err)
				return
			}
			c.logger.Debug("silent refresh during login failed, starting interactive flow", "error", err.Error())
		}

		session, err := c.interactiveLogin(ctx, owner, generation)
		if err != nil {
			c.logger.Error("interactive login failed", "error", err.Error())
			events.fail(err)
			return
		}
		events.complete(core.StatusConnected, session)
	}()
}

// LoginSilent refreshes with the stored refresh token. Without one it
// reports NOT_CONNECTED.
func (c *Client) LoginSilent(listener core.AuthListener) {
	events := newListenerOnce(listener)
	go func() {
		current, generation := c.snapshot()
		if current == nil || current.refreshToken == "" {
			events.complete(core.StatusNotConnected, nil)
			return
		}
		ctx, cancel := context.WithTimeout(c.context(), c.loginTimeout)
		defer cancel()
		session, err := c.refresh(ctx, current, generation)
		if isSuperseded(err) {
			events.complete(core.StatusNotConnected, nil)
			return
		}
		if err != nil {
			c.logger.Error("silent refresh failed", "error", err.Error())
			events.fail(err)
			return
		}
		events.complete(core.StatusConnected, session)
	}()
}

// Logout forgets the session in memory, revokes the refresh token when the
// endpoint supports it and deletes the stored session. Token requests still
// running when Logout starts are discarded when they finish.
func (c *Client) Logout(listener core.AuthListener) {
	events := newListenerOnce(listener)
	go func() {
		ctx, cancel := context.WithTimeout(c.context(), defaultStoreTimeout)
		defer cancel()

		current := c.forget()
		if current != nil {
			if err := c.revoke(ctx, current); err != nil {
				c.logger.Warn("token revocation failed", "error", err.Error())
			}
		}

		c.storeMu.Lock()
		err := c.store.Delete(ctx, c.cfg.StoreKey)
		c.storeMu.Unlock()
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			wrapped := clientError(ErrorStoreFailed, "oauth2client: delete session", err, map[string]any{"key": c.cfg.StoreKey})
			c.logger.Error("session delete failed", "error", wrapped.Error())
			events.fail(wrapped)
			return
		}
		c.logger.Debug("logged out", "key", c.cfg.StoreKey)
		events.complete(core.StatusUnknown, nil)
	}()
}

func (c *Client) refresh(ctx context.Context, current *Session, generation uint64) (*Session, error) {
	cfg := c.cfg.oauth2Config("")
	expired := &oauth2.Token{
		RefreshToken: current.refreshToken,
		TokenType:    current.tokenType,
		Expiry:       c.now().Add(-time.Minute),
	}
	token, err := cfg.TokenSource(ctx, expired).Token()
	if err != nil {
		return nil, clientError(ErrorRefreshFailed, "oauth2client: refresh token grant failed", err, nil)
	}
	session := c.sessionFromToken(token, current)
	if err := c.commit(ctx, session, current, generation); err != nil {
		return nil, err
	}
	return session, nil
}

// persist saves the session. A failure is logged and the in-memory session
// stays usable.
func (c *Client) persist(ctx context.Context, session *Session, previous *Session) {
	if session == nil {
		return
	}
	if err := c.store.Save(ctx, c.cfg.StoreKey, session.Stored(c.now())); err != nil {
		c.logger.Warn("failed to persist session", "key", c.cfg.StoreKey, "error", err.Error())
		return
	}
	if previous == nil || previous.refreshToken != session.refreshToken {
		c.logger.Debug("persisted session with new refresh token", "key", c.cfg.StoreKey)
	}
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	return ctx
}

type listenerOnce struct {
	listener core.AuthListener
	once     sync.Once
}

func newListenerOnce(listener core.AuthListener) *listenerOnce {
	return &listenerOnce{listener: listener}
}

func (l *listenerOnce) complete(status core.Status, session *Session) {
	l.once.Do(func() {
		if l.listener == nil {
			return
		}
		if session == nil {
			l.listener.OnAuthComplete(status, nil, nil)
			return
		}
		l.listener.OnAuthComplete(status, session, nil)
	})
}

func (l *listenerOnce) fail(err error) {
	l.once.Do(func() {
		if l.listener != nil {
			l.listener.OnAuthError(err, nil)
		}
	})
}

var _ core.IdentityClient = (*Client)(nil)
