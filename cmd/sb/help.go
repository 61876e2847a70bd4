package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/ui"
)

// flagLine matches "  -p, --project string   project id" style lines; the
// second group is the value type, if any.
var flagLine = regexp.MustCompile(`^(\s+(?:-\w, )?--[\w-]+)( (?:string|int|duration|bool))?(\s{2,}.*)$`)

var defaultValue = regexp.MustCompile(`\(default [^)]*\)`)

// colorizedHelpFunc styles cobra's usage text when stdout takes color.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

// colorizeHelpOutput walks the usage text section by section: headers in
// the accent color, command names in command sections, flag types and
// defaults muted.
func colorizeHelpOutput(s string) string {
	lines := strings.Split(s, "\n")
	inFlags := false
	for i, line := range lines {
		switch {
		case line == "":
		case !strings.HasPrefix(line, " ") && strings.HasSuffix(strings.TrimSpace(line), ":"):
			header := strings.TrimSpace(line)
			inFlags = strings.HasSuffix(header, "Flags:")
			lines[i] = ui.RenderAccent(header)
		case inFlags:
			if m := flagLine.FindStringSubmatch(line); m != nil {
				line = m[1] + ui.RenderMuted(m[2]) + m[3]
			}
			lines[i] = defaultValue.ReplaceAllStringFunc(line, ui.RenderMuted)
		case strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "   "):
			name, rest, ok := strings.Cut(line[2:], " ")
			if ok && strings.HasPrefix(rest, " ") {
				lines[i] = "  " + ui.RenderAccent(name) + " " + rest
			}
		}
	}
	return strings.Join(lines, "\n")
}
