// Package session owns the client's authentication state: the persisted
// token pair, the resolved user, and the loading flag the route guard keys
// off. The store is an explicit object with a lifecycle instead of package
// globals, so tests and callers control exactly when it starts and stops.
package session

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/labbook/internal/client/api"
	"github.com/dmitrijs2005/labbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/dbx"
	"github.com/dmitrijs2005/labbook/internal/logging"
)

// State is a point-in-time snapshot of the session.
type State struct {
	Token   string
	User    *api.User
	Loading bool
	Err     error
}

// Authenticated reports whether a user has been resolved.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Store holds the session state behind a mutex. Every change of the token
// starts exactly one resolution of the current user; the generation counter
// makes sure a resolution that raced with a login or logout is discarded
// instead of clobbering newer state.
type Store struct {
	client api.Client
	db     *sql.DB
	meta   metadata.Repository
	logger logging.Logger

	mu         sync.Mutex
	token      string
	refresh    string
	user       *api.User
	loading    bool
	err        error
	generation uint64
	cache      map[string][]byte
	disposed   bool
}

func NewStore(client api.Client, db *sql.DB, logger logging.Logger) *Store {
	return &Store{
		client: client,
		db:     db,
		meta:   metadata.NewSQLiteRepository(db),
		logger: logger,
		cache:  make(map[string][]byte),
	}
}

// Init loads the persisted token pair and, when a token is present, resolves
// the current user against the server. With no token it settles immediately
// without touching the network.
func (s *Store) Init(ctx context.Context) error {
	access, err := s.meta.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return err
	}
	refresh, err := s.meta.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return errors.New("session store disposed")
	}
	s.token = string(access)
	s.refresh = string(refresh)
	if s.token == "" {
		s.user = nil
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.resolve(ctx)
	return nil
}

// Dispose clears in-memory state and makes further resolutions no-ops. The
// underlying database stays open; its lifetime belongs to the caller.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.generation++
	s.token = ""
	s.refresh = ""
	s.user = nil
	s.loading = false
	s.err = nil
	s.cache = make(map[string][]byte)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Token: s.token, User: s.user, Loading: s.loading, Err: s.err}
}

// Login authenticates and adopts the returned session. The token pair is
// persisted before memory is updated, so a crash between the two leaves the
// client logged in rather than holding a token it never saved.
func (s *Store) Login(ctx context.Context, username, password string) (*api.User, error) {
	sess, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.adoptSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess.User, nil
}

// Register creates an account and adopts the returned session, same
// persistence order as Login.
func (s *Store) Register(ctx context.Context, username, email, password, displayName string) (*api.User, error) {
	sess, err := s.client.Register(ctx, username, email, password, displayName)
	if err != nil {
		return nil, err
	}
	if err := s.adoptSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess.User, nil
}

// Logout revokes the refresh token on the server on a best-effort basis and
// then clears persisted and in-memory state unconditionally. The per-user
// cache is flushed so nothing leaks into the next session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()

	if err := s.client.Logout(ctx, refresh); err != nil {
		s.logger.Warn(ctx, "server logout failed", "error", err.Error())
	}

	if err := s.clearPersisted(ctx); err != nil {
		s.logger.Error(ctx, "clearing persisted session failed", "error", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.token = ""
	s.refresh = ""
	s.user = nil
	s.loading = false
	s.err = nil
	s.cache = make(map[string][]byte)
}

// Resolve re-runs user resolution for the current token, e.g. after a
// transient failure.
func (s *Store) Resolve(ctx context.Context) {
	s.resolve(ctx)
}

// CachePut stores a value in the per-user cache.
func (s *Store) CachePut(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = value
}

// CacheGet reads a value from the per-user cache.
func (s *Store) CacheGet(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

func (s *Store) adoptSession(ctx context.Context, sess *api.Session) error {
	if err := s.persistSession(ctx, sess); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return errors.New("session store disposed")
	}
	s.generation++
	s.token = sess.Token
	s.refresh = sess.RefreshToken
	s.user = sess.User
	s.loading = false
	s.err = nil
	s.cache = make(map[string][]byte)
	return nil
}

func (s *Store) persistSession(ctx context.Context, sess *api.Session) error {
	username := ""
	if sess.User != nil {
		username = sess.User.Username
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyAccessToken, []byte(sess.Token)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyRefreshToken, []byte(sess.RefreshToken)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUsername, []byte(username))
	})
}

func (s *Store) clearPersisted(ctx context.Context) error {
	return s.meta.Clear(ctx)
}

// resolve fetches the user for the token current at call time. The result is
// applied only while that token is still current; a login, logout, or newer
// resolution in between wins. A 401 purges the session, because the token is
// dead everywhere, while transient failures keep the token so the next
// trigger can retry.
func (s *Store) resolve(ctx context.Context) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	token := s.token
	refresh := s.refresh
	if token == "" {
		s.user = nil
		s.loading = false
		s.err = nil
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	user, err := s.client.Me(ctx, token)

	if errors.Is(err, common.ErrInvalidToken) && refresh != "" {
		user, err = s.resolveViaRefresh(ctx, gen, refresh)
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.loading = false

	purged := false
	switch {
	case err == nil:
		s.user = user
		s.err = nil
	case errors.Is(err, common.ErrInvalidToken):
		s.token = ""
		s.refresh = ""
		s.user = nil
		s.err = nil
		purged = true
	default:
		// Transient: keep the token, surface the error, retry later.
		s.err = err
	}
	s.mu.Unlock()

	if purged {
		if clearErr := s.clearPersisted(ctx); clearErr != nil {
			s.logger.Error(ctx, "clearing persisted session failed", "error", clearErr.Error())
		}
	}
}

// resolveViaRefresh rotates the token pair and retries the lookup once. The
// new pair is persisted and adopted only if the session has not changed in
// the meantime.
func (s *Store) resolveViaRefresh(ctx context.Context, gen uint64, refresh string) (*api.User, error) {
	sess, err := s.client.Refresh(ctx, refresh)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil, common.ErrTransient
	}
	s.token = sess.Token
	s.refresh = sess.RefreshToken
	s.mu.Unlock()

	if err := s.persistSession(ctx, sess); err != nil {
		return nil, err
	}

	return s.client.Me(ctx, sess.Token)
}
