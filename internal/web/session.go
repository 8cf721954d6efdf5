package web

// session.go keeps per-client table state. Each browser gets a cookie with a
// random session id; the session holds one table controller per opened table
// so filters, sorting, selection and layout survive between requests. Idle
// sessions are swept after the configured TTL and their state is discarded.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/datagrid/internal/config"
	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/logging"
	"github.com/JonMunkholm/datagrid/internal/virtual"
)

// ErrSessionNotFound is returned when a state change arrives without a live
// session, usually because it expired.
var ErrSessionNotFound = errors.New("session not found")

// Default viewport used before the client reports its scroll container size.
const (
	defaultViewportHeight = 640
	defaultViewportWidth  = 1280
)

// SessionObserver is told when sessions start and end.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

type nopSessionObserver struct{}

func (nopSessionObserver) SessionOpened() {}
func (nopSessionObserver) SessionClosed() {}

// session is one client's table state.
type session struct {
	id string

	mu       sync.Mutex
	tables   map[string]*tableState
	lastSeen time.Time
}

// tableState is an opened table within a session.
type tableState struct {
	info core.TableInfo
	ctrl core.Controller

	// rows lays out the body of virtualized tables. It keeps measured
	// row heights between scroll requests.
	rows    *virtual.Virtualizer
	measure bool // Whether the browser reports row heights reliably

	mu        sync.Mutex
	viewportY int
	viewportX int
}

// viewport returns the last reported scroll container size.
func (ts *tableState) viewport() (height, width int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.viewportY, ts.viewportX
}

func (ts *tableState) setViewport(height, width int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if height > 0 {
		ts.viewportY = height
	}
	if width > 0 {
		ts.viewportX = width
	}
}

// SessionStore holds sessions in memory, keyed by cookie.
type SessionStore struct {
	cfg      config.SessionConfig
	observer SessionObserver
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	done      chan struct{}
	closeOnce sync.Once
}

// NewSessionStore creates a store and starts sweeping expired sessions.
// Call Close to stop the sweeper.
func NewSessionStore(cfg config.SessionConfig, observer SessionObserver) *SessionStore {
	if observer == nil {
		observer = nopSessionObserver{}
	}
	s := &SessionStore{
		cfg:      cfg,
		observer: observer,
		now:      time.Now,
		sessions: make(map[string]*session),
		done:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *SessionStore) sweepLoop() {
	interval := min(s.cfg.TTL/2, time.Minute)
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *SessionStore) Sweep() int {
	cutoff := s.now().Add(-s.cfg.TTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			s.observer.SessionClosed()
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the sweeper and drops every session.
func (s *SessionStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		defer s.mu.Unlock()
		for id := range s.sessions {
			delete(s.sessions, id)
			s.observer.SessionClosed()
		}
	})
}

// lookup returns the live session named by the request cookie.
func (s *SessionStore) lookup(r *http.Request) (*session, bool) {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	s.mu.Lock()
	sess, ok := s.sessions[c.Value]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if s.now().Sub(sess.lastSeen) > s.cfg.TTL {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

// Session returns the request's session. With create set a missing or
// expired session is replaced by a new one and the cookie is written;
// otherwise ErrSessionNotFound is returned.
func (s *SessionStore) Session(w http.ResponseWriter, r *http.Request, create bool) (*session, error) {
	if sess, ok := s.lookup(r); ok {
		return sess, nil
	}
	if !create {
		return nil, ErrSessionNotFound
	}

	sess := &session{
		id:       uuid.NewString(),
		tables:   make(map[string]*tableState),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.observer.SessionOpened()

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// table returns the session's state for a table, opening it on first use.
// Paged tables load their first page when opened.
func (sess *session) table(ctx context.Context, key, userAgent string) (*tableState, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if ts, ok := sess.tables[key]; ok {
		return ts, nil
	}

	def, ok := core.Get(key)
	if !ok {
		return nil, core.ErrTableNotFound
	}
	ctrl, err := core.Open(key)
	if err != nil {
		return nil, err
	}
	ts := &tableState{
		info:      def.Info,
		ctrl:      ctrl,
		viewportY: defaultViewportHeight,
		viewportX: defaultViewportWidth,
	}
	if def.Info.Virtualized {
		ts.measure = virtual.DynamicMeasurement(userAgent)
		ts.rows = virtual.New(virtual.Options{
			Overscan:       virtual.DefaultRowOverscan,
			DisableMeasure: !ts.measure,
		})
	}
	if ctrl.Manual() {
		// A failed first load is shown in the grid rather than failing the page.
		if err := ctrl.Refresh(ctx); err != nil {
			logging.WithTable(ctx, key).Warn("initial page load failed", "error", err)
		}
	}
	sess.tables[key] = ts
	logging.WithTable(ctx, key).Debug("table opened", "session", sess.id[:8])
	return ts, nil
}
