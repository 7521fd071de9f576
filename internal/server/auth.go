package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alfredjeanlab/switchboard/internal/auth"
	"github.com/alfredjeanlab/switchboard/internal/model"
)

type claimsKey struct{}

// authed is the per-request result of bearer verification.
type authed struct {
	token  string
	claims *auth.Claims
}

func fromContext(ctx context.Context) (authed, bool) {
	a, ok := ctx.Value(claimsKey{}).(authed)
	return a, ok
}

// base holds what the three service handlers share.
type base struct {
	service  string
	verifier auth.TokenVerifier
	logger   *slog.Logger
	// envelope selects the failed-envelope error body.
	envelope bool
}

// fail writes err in this service's error shape. Internal errors are
// logged with their full detail.
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if model.KindOf(err) == model.KindInternal {
		b.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()), "error", err)
	}
	if b.envelope {
		writeEnvelopeError(w, err)
		return
	}
	writeError(w, err)
}

// authenticated verifies the bearer token and, when role is non-empty,
// requires it exactly.
func (b *base) authenticated(role model.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.ExtractBearerToken(r)
		if !ok {
			b.fail(w, r, fmt.Errorf("%w: missing bearer token", model.ErrUnauthenticated))
			return
		}
		claims, err := b.verifier.Verify(token)
		if err != nil {
			b.fail(w, r, err)
			return
		}
		if role != "" && claims.Role != role {
			b.fail(w, r, fmt.Errorf("%w: requires role %s", model.ErrForbidden, role))
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, authed{token: token, claims: claims})
		next(w, r.WithContext(ctx))
	}
}

// optionalClaims verifies a bearer token when one is present. A present but
// invalid token is still an error.
func (b *base) optionalClaims(r *http.Request) (*auth.Claims, error) {
	token, ok := auth.ExtractBearerToken(r)
	if !ok {
		return nil, nil
	}
	return b.verifier.Verify(token)
}
