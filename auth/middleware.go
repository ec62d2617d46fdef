package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jimiolaniyan/gomotors/session"
)

const (
	TokenCookieName = "jwt"
	LoginPath       = "/account/login"

	msgLoginRequired    = "Please log in to continue."
	msgPermissionDenied = "You do not have permission to access that area."
)

type viewerContextKey struct{}

// NewContext attaches claim to ctx as the current viewer.
func NewContext(ctx context.Context, claim Claim) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, claim)
}

// ViewerFrom returns the current viewer. ok is false for anonymous requests.
func ViewerFrom(ctx context.Context) (claim Claim, ok bool) {
	claim, ok = ctx.Value(viewerContextKey{}).(Claim)
	return claim, ok
}

// Authenticate recovers the viewer from the token cookie. It never rejects a
// request: a missing, malformed or expired token leaves the request anonymous,
// and a bad token cookie is cleared so the browser stops sending it.
func Authenticate(tokens *TokenCodec, secure bool, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claim, err := tokens.Verify(cookie.Value)
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("discarding token cookie")
				clearTokenCookie(w, secure)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), claim)))
		})
	}
}

// RequireAuthenticated sends anonymous viewers to the login page.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ViewerFrom(r.Context()); !ok {
			session.Flash(r.Context(), msgLoginRequired)
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireElevatedRole sends every viewer that is not an employee or admin,
// anonymous ones included, to the login page.
func RequireElevatedRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := ViewerFrom(r.Context())
		if !ok || !viewer.Role.Elevated() {
			session.Flash(r.Context(), msgPermissionDenied)
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Viewer adapts ViewerFrom for page rendering.
func Viewer(ctx context.Context) (interface{}, bool) {
	return ViewerFrom(ctx)
}

func setTokenCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
