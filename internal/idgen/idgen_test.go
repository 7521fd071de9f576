package idgen

import (
	"context"
	"regexp"
	"strings"
	"testing"
)

var requestIDPattern = regexp.MustCompile(`^req-[a-zA-Z0-9]{12}$`)

func TestRequestID_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := RequestID()
		if !requestIDPattern.MatchString(id) {
			t.Fatalf("RequestID() = %q, does not match %s", id, requestIDPattern)
		}
	}
}

func TestRequestID_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id := RequestID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNew_Prefix(t *testing.T) {
	id, err := New("evt-")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !strings.HasPrefix(id, "evt-") || len(id) != len("evt-")+size {
		t.Errorf("New(%q) = %q", "evt-", id)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"req-abc123", true},
		{"trace_01.A", true},
		{"", false},
		{"has space", false},
		{"quote\"", false},
		{"line\nbreak", false},
		{strings.Repeat("a", maxClientLen), true},
		{strings.Repeat("a", maxClientLen+1), false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.id); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("empty context returned %q", got)
	}
	ctx := WithRequestID(context.Background(), "req-xyz")
	if got := FromContext(ctx); got != "req-xyz" {
		t.Fatalf("FromContext = %q, want req-xyz", got)
	}
}
