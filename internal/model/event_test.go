package model

import (
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func TestNextState(t *testing.T) {
	for _, tc := range []struct {
		name string
		typ  EventType
		ts   string
		want AgentState
	}{
		{"CallStarted", EventCallStarted, "2024-01-01T10:00:00Z", StateOnCall},
		{"CallEnded", EventCallEnded, "2024-01-01T10:00:00Z", StateAvailable},
		{"EndDND", EventEndDoNotDisturb, "2024-01-01T23:59:00Z", StateAvailable},
		{"DNDMorning", EventStartDoNotDisturb, "2024-01-01T09:00:00Z", StateDoNotDisturb},
		{"DNDLunchStart", EventStartDoNotDisturb, "2024-01-01T11:00:00Z", StateOnLunch},
		{"DNDLunchMiddle", EventStartDoNotDisturb, "2024-01-01T12:30:00Z", StateOnLunch},
		{"DNDLunchLastMinute", EventStartDoNotDisturb, "2024-01-01T12:59:59Z", StateOnLunch},
		{"DNDLunchOver", EventStartDoNotDisturb, "2024-01-01T13:00:00Z", StateDoNotDisturb},
		{"DNDBeforeLunch", EventStartDoNotDisturb, "2024-01-01T10:59:59Z", StateDoNotDisturb},
		{"DNDOffsetLocalLunch", EventStartDoNotDisturb, "2024-01-01T12:15:00+02:00", StateDoNotDisturb},
		{"DNDOffsetUTCLunch", EventStartDoNotDisturb, "2024-01-01T07:30:00-05:00", StateOnLunch},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for _, cur := range AgentStates {
				got, ok := NextState(cur, tc.typ, mustTime(t, tc.ts))
				if !ok {
					t.Fatalf("NextState(%s, %s) reported no transition", cur, tc.typ)
				}
				if got != tc.want {
					t.Errorf("NextState(%s, %s, %s) = %s, want %s", cur, tc.typ, tc.ts, got, tc.want)
				}
			}
		})
	}
}

func TestNextState_Unknown(t *testing.T) {
	ts := mustTime(t, "2024-01-01T10:00:00Z")
	for _, typ := range []EventType{"", "BREAK", "call_started", EventSkillsUpdate} {
		if got, ok := NextState(StateAvailable, typ, ts); ok {
			t.Errorf("NextState(%q) = %s, want no transition", typ, got)
		}
	}
}

func TestCheckFreshness(t *testing.T) {
	now := mustTime(t, "2024-01-01T12:00:00Z")
	for _, tc := range []struct {
		name  string
		ts    time.Time
		stale bool
	}{
		{"Now", now, false},
		{"ThirtyMinutesAgo", now.Add(-30 * time.Minute), false},
		{"ExactlyAtWindow", now.Add(-FreshnessWindow), false},
		{"JustPastWindow", now.Add(-FreshnessWindow - time.Second), true},
		{"NinetyMinutesAgo", now.Add(-90 * time.Minute), true},
		{"Future", now.Add(2 * time.Hour), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckFreshness(tc.ts, now)
			if tc.stale {
				if !errors.Is(err, ErrStaleEvent) {
					t.Fatalf("CheckFreshness = %v, want ErrStaleEvent", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckFreshness = %v, want nil", err)
			}
		})
	}
}

func TestParseAgentState(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    AgentState
		wantErr bool
	}{
		{"", StateAvailable, false},
		{"AVAILABLE", StateAvailable, false},
		{"on_call", StateOnCall, false},
		{" Do_Not_Disturb ", StateDoNotDisturb, false},
		{"ON_LUNCH", StateOnLunch, false},
		{"Available ", StateAvailable, false},
		{"BUSY", "", true},
	} {
		got, err := ParseAgentState(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseAgentState(%q) err = %v, want ErrInvalidInput", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseAgentState(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestActionEvents(t *testing.T) {
	for _, action := range Actions() {
		ev, ok := EventForAction(action)
		if !ok {
			t.Fatalf("EventForAction(%q) not found", action)
		}
		back, ok := ActionForEvent(ev)
		if !ok || back != action {
			t.Errorf("ActionForEvent(%s) = %q, want %q", ev, back, action)
		}
		if _, ok := NextState(StateAvailable, ev, time.Now()); !ok {
			t.Errorf("action %q maps to %s which has no transition", action, ev)
		}
	}
	if _, ok := EventForAction("take_break"); ok {
		t.Error("unknown action resolved")
	}
}
