package main

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/alfredjeanlab/switchboard/internal/ui"
	"github.com/spf13/cobra"
)

// helpRule paints every match of pattern. group selects the submatch to
// paint; 0 paints the whole match.
type helpRule struct {
	pattern *regexp.Regexp
	group   int
	paint   func(string) string
}

var helpRules = []helpRule{
	// Group headers such as "Agent:" or "Flags:". "Usage:" stays plain.
	{regexp.MustCompile(`(?m)^((?:[A-TV-Z]|U[^s])[^\n]*:)\s*$`), 1, ui.RenderAccent},
	// Command names: two-space indent, a word, then a gap before the summary.
	{regexp.MustCompile(`(?m)^  (\S+)  `), 1, ui.RenderCommand},
	{regexp.MustCompile(`--?\S+\s+(string|strings|int|int64|duration)\b`), 1, ui.RenderMuted},
	{regexp.MustCompile(`\(default "[^"]*"\)`), 0, ui.RenderMuted},
}

// colorizedHelpFunc post-processes cobra's help text with ANSI colors when
// stdout supports them.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}
		orig := cmd.OutOrStdout()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(orig)
		fmt.Fprint(orig, colorizeHelpOutput(buf.String()))
	}
}

func colorizeHelpOutput(s string) string {
	for _, r := range helpRules {
		s = r.pattern.ReplaceAllStringFunc(s, func(match string) string {
			if r.group == 0 {
				return r.paint(match)
			}
			sub := r.pattern.FindStringSubmatchIndex(match)
			lo, hi := sub[2*r.group], sub[2*r.group+1]
			return match[:lo] + r.paint(match[lo:hi]) + match[hi:]
		})
	}
	return s
}
