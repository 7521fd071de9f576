package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/ui"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func joinOrDash(ss []string) string {
	if len(ss) == 0 {
		return "-"
	}
	return strings.Join(ss, ",")
}

// since renders how long ago t was, coarsely.
func since(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Local().Format("2006-01-02")
}

func printAgent(a *model.Agent) {
	fmt.Printf("ID:           %d\n", a.ID)
	fmt.Printf("Name:         %s\n", a.Name)
	fmt.Printf("User ID:      %d\n", a.UserID)
	fmt.Printf("State:        %s\n", ui.RenderState(a.State))
	fmt.Printf("Since:        %s (%s)\n",
		a.LastStateChange.Local().Format(time.DateTime), since(a.LastStateChange, time.Now()))
	fmt.Printf("Skills:       %s\n", joinOrDash(a.Skills))
}

func printAgentList(agents []*model.Agent) {
	now := time.Now()
	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tSTATE\tSINCE\tSKILLS")
	counts := make(map[model.AgentState]int)
	for _, a := range agents {
		counts[a.State]++
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			a.ID, a.Name, ui.RenderState(a.State), since(a.LastStateChange, now), joinOrDash(a.Skills))
	}
	w.Flush()

	var parts []string
	for _, st := range model.AgentStates {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(st))))
		}
	}
	summary := fmt.Sprintf("\n%d agents", len(agents))
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	fmt.Println(ui.RenderMuted(summary))
}

func printActivity(r *model.ActivityResult) {
	fmt.Printf("Agent %d: %s at %s", r.AgentID, r.Action, r.Timestamp.Local().Format(time.DateTime))
	if len(r.Skills) > 0 {
		fmt.Printf(" (skills %s)", strings.Join(r.Skills, ","))
	}
	fmt.Println()
}

func printSkill(s *model.Skill) {
	fmt.Printf("ID:           %d\n", s.ID)
	fmt.Printf("Name:         %s\n", s.Name)
	if s.Description != "" {
		fmt.Printf("Description:  %s\n", s.Description)
	}
	fmt.Printf("Active:       %t\n", s.IsActive)
	fmt.Printf("Created At:   %s\n", s.CreatedAt.Local().Format(time.DateTime))
}

func printSkillList(skills []*model.Skill) {
	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tACTIVE\tDESCRIPTION")
	for _, s := range skills {
		desc := s.Description
		if len(desc) > 50 {
			desc = desc[:47] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", s.ID, s.Name, s.IsActive, desc)
	}
	w.Flush()
	fmt.Println(ui.RenderMuted(fmt.Sprintf("\n%d skills", len(skills))))
}

func printUserList(users []*model.User) {
	w := newTable()
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role())
	}
	w.Flush()
}
