package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/session"
)

const defaultSessionTTL = 24 * time.Hour

// ClientFactory builds a remote API client bound to one cookie jar.
type ClientFactory func(jar http.CookieJar) ports.AdminAPI

// WorkspaceOptions configure every workspace a manager opens.
type WorkspaceOptions struct {
	// BaseURL is the remote API origin the cookie jar is scoped to.
	BaseURL    *url.URL
	SessionTTL time.Duration
	Cache      query.Options
	Mutations  mutation.Hooks
	InboxSize  int
}

type managedWorkspace struct {
	ws       *ports.Workspace
	lastSeen time.Time
}

// WorkspaceManager owns the live workspaces, one per console session id,
// and persists their remote cookies so they survive a restart.
type WorkspaceManager struct {
	mu        sync.Mutex
	items     map[string]*managedWorkspace
	newClient ClientFactory
	sessions  ports.RemoteSessionRepository
	opts      WorkspaceOptions
	log       zerolog.Logger
	now       func() time.Time
}

// NewWorkspaceManager returns an empty manager.
func NewWorkspaceManager(newClient ClientFactory, sessions ports.RemoteSessionRepository, opts WorkspaceOptions, log zerolog.Logger) *WorkspaceManager {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.BaseURL == nil {
		opts.BaseURL = &url.URL{Scheme: "https", Host: "localhost", Path: "/"}
	}
	return &WorkspaceManager{
		items:     make(map[string]*managedWorkspace),
		newClient: newClient,
		sessions:  sessions,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// NewSessionID returns a fresh console session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Open returns the workspace for sid, restoring persisted remote cookies
// when the workspace is not live. A restored workspace starts loading and
// is resolved by the next bootstrap.
func (m *WorkspaceManager) Open(ctx context.Context, sid string) (*ports.Workspace, error) {
	if sid == "" {
		return nil, fmt.Errorf("open workspace: %w: empty session id", domain.ErrValidation)
	}
	if ws := m.lookup(sid); ws != nil {
		return ws, nil
	}

	ws := m.build(sid)
	stored, err := m.sessions.Load(ctx, sid)
	switch {
	case err == nil:
		ws.Jar.SetCookies(m.opts.BaseURL, stored.Cookies)
		m.log.Debug().Str("sid", sid).Int("cookies", len(stored.Cookies)).Msg("remote session restored")
	case errors.Is(err, domain.ErrNotFound):
	default:
		// The session starts anonymous; bootstrap will deny and send the
		// admin back to login.
		m.log.Warn().Err(err).Str("sid", sid).Msg("failed to restore remote session")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[sid]; ok {
		existing.lastSeen = m.now()
		return existing.ws, nil
	}
	m.items[sid] = &managedWorkspace{ws: ws, lastSeen: m.now()}
	return ws, nil
}

// Persist stores the workspace's remote cookies.
func (m *WorkspaceManager) Persist(ctx context.Context, ws *ports.Workspace) error {
	rs := &ports.RemoteSession{
		Cookies: m.cookiesOf(ws),
		SavedAt: m.now().UTC(),
	}
	if user := ws.Session.Snapshot().User; user != nil {
		rs.UserID = user.ID
	}
	if err := m.sessions.Save(ctx, ws.ID, rs, m.opts.SessionTTL); err != nil {
		return fmt.Errorf("persist workspace: %w", err)
	}
	return nil
}

// Discard deletes the persisted remote cookies. The live workspace stays
// open for the next login from the same browser.
func (m *WorkspaceManager) Discard(ctx context.Context, ws *ports.Workspace) error {
	if err := m.sessions.Delete(ctx, ws.ID); err != nil {
		return fmt.Errorf("discard workspace: %w", err)
	}
	return nil
}

// Sweep closes workspaces idle for longer than idle and returns how many
// were closed. Their persisted cookies are kept until the TTL expires.
func (m *WorkspaceManager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var closed []*ports.Workspace
	for sid, item := range m.items {
		if item.lastSeen.Before(cutoff) {
			closed = append(closed, item.ws)
			delete(m.items, sid)
		}
	}
	m.mu.Unlock()

	for _, ws := range closed {
		ws.Cache.Clear()
	}
	if len(closed) > 0 {
		m.log.Info().Int("closed", len(closed)).Msg("idle workspaces swept")
	}
	return len(closed)
}

// Run sweeps idle workspaces every interval until ctx is cancelled.
func (m *WorkspaceManager) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(idle)
		}
	}
}

// Len returns the number of live workspaces.
func (m *WorkspaceManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *WorkspaceManager) lookup(sid string) *ports.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[sid]
	if !ok {
		return nil
	}
	item.lastSeen = m.now()
	return item.ws
}

// cookiesOf returns the workspace's remote cookies with their attributes
// when the jar recorded them.
func (m *WorkspaceManager) cookiesOf(ws *ports.Workspace) []*http.Cookie {
	if rj, ok := ws.Jar.(*recordingJar); ok {
		return rj.Recorded()
	}
	return ws.Jar.Cookies(m.opts.BaseURL)
}

func (m *WorkspaceManager) build(sid string) *ports.Workspace {
	jar := newRecordingJar(func() time.Time { return m.now() })
	log := m.log.With().Str("sid", sid).Logger()
	inbox := mutation.NewInbox(m.opts.InboxSize)
	return &ports.Workspace{
		ID:      sid,
		Session: session.NewStore(),
		Cache:   query.New(m.opts.Cache, log),
		Runner:  mutation.NewRunner(inbox, log, m.opts.Mutations),
		Inbox:   inbox,
		API:     m.newClient(jar),
		Jar:     jar,
	}
}
