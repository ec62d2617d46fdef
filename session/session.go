// Package session keeps a per-visitor session id in a cookie and a single
// flash message slot keyed by that id.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Store holds at most one pending flash message per session id.
type Store interface {
	SetFlash(ctx context.Context, id, message string) error
	// PopFlash returns the pending message and clears it in the same
	// operation. An empty string means nothing was pending.
	PopFlash(ctx context.Context, id string) (string, error)
}

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session is the visitor session attached to a request.
type Session struct {
	ID    string
	store Store
	log   logrus.FieldLogger
}

type sessionContextKey struct{}

// Middleware attaches a Session to every request, issuing a new session id
// cookie when the request has none or carries one that is not a valid id.
func Middleware(store Store, opts Options, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(opts.CookieName); err == nil && isValidID(c.Value) {
				id = c.Value
			}

			if id == "" {
				id = xid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     opts.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(opts.TTL.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), New(id, store, log))))
		})
	}
}

// New binds the session id to store.
func New(id string, store Store, log logrus.FieldLogger) *Session {
	return &Session{ID: id, store: store, log: log}
}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok
}

// SetFlash records message for the next rendered page.
func (s *Session) SetFlash(ctx context.Context, message string) error {
	return s.store.SetFlash(ctx, s.ID, message)
}

// PopFlash reads and clears the pending message.
func (s *Session) PopFlash(ctx context.Context) (string, error) {
	return s.store.PopFlash(ctx, s.ID)
}

// Flash records message on the request's session. Flash messages are a
// courtesy, so a store failure is logged and otherwise ignored.
func Flash(ctx context.Context, message string) {
	s, ok := FromContext(ctx)
	if !ok {
		return
	}
	if err := s.SetFlash(ctx, message); err != nil {
		s.log.WithError(err).WithField("session", s.ID).Warn("could not store flash message")
	}
}

// Consume returns and clears the request session's pending flash message.
func Consume(ctx context.Context) string {
	s, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	msg, err := s.PopFlash(ctx)
	if err != nil {
		s.log.WithError(err).WithField("session", s.ID).Warn("could not read flash message")
		return ""
	}
	return msg
}

func isValidID(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}
