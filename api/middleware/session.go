package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/smehta-dev/storefront-backend/api/responses"
	pkgAuth "github.com/smehta-dev/storefront-backend/pkg/auth"
	"github.com/smehta-dev/storefront-backend/pkg/config"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
)

// Session resolves the shopper's session from the signed cookie, minting a
// fresh one when the cookie is absent or no longer valid. Every request past
// this middleware carries a session id in its context.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""

			if cookie, err := r.Cookie(cfg.CookieName); err == nil && cookie.Value != "" {
				sid, parseErr := pkgAuth.ParseSessionToken(cfg, cookie.Value)
				if parseErr == nil {
					sessionID = sid
				}
			}

			if sessionID == "" {
				token, sid, err := pkgAuth.MintSessionToken(cfg, time.Now().UTC(), "")
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session"))
					return
				}
				sessionID = sid
				http.SetCookie(w, sessionCookie(cfg, token))
			}

			ctx := context.WithValue(r.Context(), ctxSessionID, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionCookie(cfg config.SessionConfig, token string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
