package model

import "errors"

// Sentinel errors shared by every service. Wrap them with fmt.Errorf("%w: ...")
// to add detail; callers classify with errors.Is or KindOf.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStaleEvent       = errors.New("stale event")
	ErrInvalidSkill     = errors.New("invalid skill")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnavailable      = errors.New("service unavailable")
)

// Kind is the stable, wire-visible name of an error class.
type Kind string

const (
	KindUnauthenticated  Kind = "unauthenticated"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindStaleEvent       Kind = "stale_event"
	KindInvalidSkill     Kind = "invalid_skill"
	KindUnknownEventType Kind = "unknown_event_type"
	KindInvalidInput     Kind = "invalid_input"
	KindUnavailable      Kind = "unavailable"
	KindInternal         Kind = "internal"
)

var kindErrors = []struct {
	kind Kind
	err  error
}{
	{KindUnauthenticated, ErrUnauthenticated},
	{KindForbidden, ErrForbidden},
	{KindNotFound, ErrNotFound},
	{KindConflict, ErrConflict},
	{KindStaleEvent, ErrStaleEvent},
	{KindInvalidSkill, ErrInvalidSkill},
	{KindUnknownEventType, ErrUnknownEventType},
	{KindInvalidInput, ErrInvalidInput},
	{KindUnavailable, ErrUnavailable},
}

// KindOf classifies err. Errors that wrap none of the sentinels are
// KindInternal; a nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, ke := range kindErrors {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}
	return KindInternal
}

// ErrorForKind returns the sentinel for k, or nil for KindInternal and
// unrecognized kinds.
func ErrorForKind(k Kind) error {
	for _, ke := range kindErrors {
		if ke.kind == k {
			return ke.err
		}
	}
	return nil
}

// SkillsAppliedError marks a failure that happened after the event's skill
// replacement was already persisted.
type SkillsAppliedError struct {
	Err error
}

func (e *SkillsAppliedError) Error() string { return e.Err.Error() }

func (e *SkillsAppliedError) Unwrap() error { return e.Err }

// SkillsApplied reports whether err (or anything it wraps) is a
// SkillsAppliedError.
func SkillsApplied(err error) bool {
	var sa *SkillsAppliedError
	return errors.As(err, &sa)
}
