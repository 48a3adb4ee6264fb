package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/xbrlmap/internal/config"
	"github.com/JonMunkholm/xbrlmap/internal/core"
	"github.com/JonMunkholm/xbrlmap/internal/logging"
)

// ErrorResponder writes err to the client in the server's error format.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// APIKeyAuth checks the X-API-Key header when cfg.RequireAPIKey is set.
// A missing key is reported as core.ErrUnauthorized, an unknown one as
// core.ErrForbidden.
func APIKeyAuth(cfg *config.SecurityConfig, respond ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			var err error
			switch key := r.Header.Get("X-API-Key"); {
			case key == "":
				err = core.ErrUnauthorized
			case !knownKey(key, cfg.APIKeys):
				err = core.ErrForbidden
			}
			if err != nil {
				logging.FromContext(r.Context()).Warn("api key rejected",
					"path", r.URL.Path,
					"ip", r.RemoteAddr,
					"error", err,
				)
				respond(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// knownKey compares against every configured key so timing does not reveal
// which one matched.
func knownKey(key string, keys []string) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}
