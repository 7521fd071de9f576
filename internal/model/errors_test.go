package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{errors.New("boom"), KindInternal},
		{fmt.Errorf("%w: agent 7", ErrNotFound), KindNotFound},
		{fmt.Errorf("apply: %w", fmt.Errorf("%w: old", ErrStaleEvent)), KindStaleEvent},
		{&SkillsAppliedError{Err: fmt.Errorf("%w: BREAK", ErrUnknownEventType)}, KindUnknownEventType},
		{ErrUnavailable, KindUnavailable},
	} {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestErrorForKind(t *testing.T) {
	for _, ke := range kindErrors {
		if got := ErrorForKind(ke.kind); got != ke.err {
			t.Errorf("ErrorForKind(%q) = %v, want %v", ke.kind, got, ke.err)
		}
		if KindOf(ErrorForKind(ke.kind)) != ke.kind {
			t.Errorf("kind %q does not survive a lookup", ke.kind)
		}
	}
	if err := ErrorForKind(KindInternal); err != nil {
		t.Errorf("ErrorForKind(internal) = %v, want nil", err)
	}
}

func TestSkillsApplied(t *testing.T) {
	base := fmt.Errorf("%w: SKILLS_UPDATE", ErrUnknownEventType)
	if SkillsApplied(base) {
		t.Error("plain error reported skills applied")
	}
	wrapped := fmt.Errorf("apply event: %w", &SkillsAppliedError{Err: base})
	if !SkillsApplied(wrapped) {
		t.Error("wrapped SkillsAppliedError not detected")
	}
	if !errors.Is(wrapped, ErrUnknownEventType) {
		t.Error("SkillsAppliedError hides the underlying sentinel")
	}
}
