package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"
)

const (
	googleAudience = "847293615204-back-office.apps.googleusercontent.com"
	adminScope     = "admin"
)

var scopeValidators map[string]func(jwt *idtoken.Payload) error = map[string]func(jwt *idtoken.Payload) error{
	adminScope: func(jwt *idtoken.Payload) error {
		org, ok := jwt.Claims["hd"]
		if !ok {
			return fmt.Errorf("hd claim not in JWT")
		}
		if org != "mga-alliance.org" {
			return fmt.Errorf("user is not an admin")
		}

		return nil
	},
}

func (a *API) validateGoogleOauthToken(ctx context.Context, token string, scopes []string) (*idtoken.Payload, error) {
	jwt, err := a.googleIdVerifier.Validate(ctx, token, googleAudience)
	if err != nil {
		return nil, err
	}

	for _, scope := range scopes {
		validator, ok := scopeValidators[scope]
		if !ok {
			return nil, fmt.Errorf("unknown scope: %q", scope)
		}

		err = validator(jwt)
		if err != nil {
			return nil, fmt.Errorf("user does not have scope %q", scope)
		}
	}

	return jwt, nil
}

// requireAdmin guards the back-office endpoints behind a Google bearer
// token whose hosted domain marks the user as an administrator.
func (a *API) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := a.getLoggerOrBaseLogger(ctx)

		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, AuthError, "Missing bearer token")
			return
		}

		jwt, err := a.validateGoogleOauthToken(ctx, token, []string{adminScope})
		if err != nil {
			logger.Warn("Rejected admin request", slog.String("error", err.Error()))

			writeJSONError(w, http.StatusForbidden, AuthError, "Not authorized")
			return
		}

		next(w, r.WithContext(ctxWithJWT(ctx, jwt)))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	return token, true
}
