package http

import (
	"net/http"

	"fintrack/internal/api"
	"fintrack/internal/auth"
	"fintrack/internal/log"
)

// Authenticator verifies an access token.
type Authenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

// withIdentity attaches the bearer token's identity to the request context.
// Requests without a valid token continue anonymously; protected operations
// reject them.
func withIdentity(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a == nil {
				next.ServeHTTP(w, r)
				return
			}
			token, err := auth.GetBearerToken(r.Header)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := a.Authenticate(token)
			if err != nil {
				log.FromContext(ctx).DebugContext(ctx, "Rejected bearer token",
					log.FieldError, err)
				next.ServeHTTP(w, r)
				return
			}

			ctx = api.WithIdentity(ctx, api.Identity{UserID: claims.UserID, Email: claims.Email})
			ctx = log.NewContext(ctx, log.FromContext(ctx).WithUser(claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
