package ui

import "testing"

func TestColorFromEnv(t *testing.T) {
	for _, tc := range []struct {
		name   string
		env    map[string]string
		want   bool
		wantOK bool
	}{
		{"NoColorWins", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, false, true},
		{"Force", map[string]string{"CLICOLOR_FORCE": "1", "TERM": "dumb"}, true, true},
		{"Disabled", map[string]string{"CLICOLOR": "0"}, false, true},
		{"DumbTerminal", map[string]string{"TERM": "dumb"}, false, true},
		{"Unset", map[string]string{"TERM": "xterm-256color"}, false, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			use, ok := colorFromEnv(func(k string) string { return tc.env[k] })
			if use != tc.want || ok != tc.wantOK {
				t.Errorf("colorFromEnv() = %v, %v; want %v, %v", use, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestShouldUseColor_Env(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 should enable color without a terminal")
	}
}

func TestRenderLevel_NoColor(t *testing.T) {
	prev := noColor
	t.Cleanup(func() { noColor = prev })
	ForceNoColor()

	for _, level := range []string{"success", "noop", "transient", "failure", "other"} {
		if got := RenderLevel(level, "msg"); got != "msg" {
			t.Errorf("RenderLevel(%q) = %q, want plain text", level, got)
		}
	}
}

func TestRenderLevel_Color(t *testing.T) {
	prev := noColor
	t.Cleanup(func() { noColor = prev })
	noColor = false

	if got := RenderLevel("failure", "x"); got != "\x1b[38;5;203mx\x1b[0m" {
		t.Errorf("RenderLevel(failure) = %q", got)
	}
	if got := RenderLevel("other", "x"); got != "x" {
		t.Errorf("RenderLevel(other) = %q", got)
	}
}
