// Package idgen generates request ids backed by nanoid.
package idgen

import (
	"context"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix marks ids minted by the services for X-Request-ID.
const RequestPrefix = "req-"

// Header carries a request id on HTTP requests and responses and on NATS
// messages published while handling them.
const Header = "X-Request-ID"

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	size     = 12

	// maxClientLen bounds request ids accepted from callers.
	maxClientLen = 64
)

// New returns prefix followed by a random suffix.
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// RequestID returns a fresh request id. It only fails when the system
// entropy source does, and then returns a fixed placeholder.
func RequestID() string {
	id, err := New(RequestPrefix)
	if err != nil {
		return RequestPrefix + "unknown"
	}
	return id
}

// IsValid reports whether a caller-supplied request id can be propagated
// as is: non-empty, bounded, and limited to URL-safe characters.
func IsValid(id string) bool {
	if id == "" || len(id) > maxClientLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

type ctxKey struct{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id carried by ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
