package supervisor

import (
	"strings"
	"testing"
)

func TestParseIsActive(t *testing.T) {
	cases := map[string]Status{
		"active":        StatusRunning,
		"active\n":      StatusRunning,
		"activating":    StatusRunning,
		"inactive":      StatusStopped,
		"failed":        StatusStopped,
		"deactivating":  StatusStopped,
		"unknown":       StatusUnknown,
		"":              StatusUnknown,
		"not-found\n":   StatusUnknown,
		"some garbage?": StatusUnknown,
	}
	for out, want := range cases {
		if got := parseIsActive(out); got != want {
			t.Errorf("parseIsActive(%q) = %s, want %s", out, got, want)
		}
	}
}

func TestRenderUnit(t *testing.T) {
	def := Definition{
		Name:       "pingtunnel",
		BinaryPath: "/opt/pingtunnel/bin/pingtunnel",
		Args:       []string{"-mode", "server", "-l", "0.0.0.0:4000", "-password", "two words"},
		WorkingDir: "/opt/pingtunnel",
		LogDir:     "/var/log/pingtunnel",
	}
	unit := renderUnit(def)

	wantExec := `ExecStart=/opt/pingtunnel/bin/pingtunnel -mode server -l 0.0.0.0:4000 -password "two words"`
	if !strings.Contains(unit, wantExec) {
		t.Fatalf("unit missing %q:\n%s", wantExec, unit)
	}
	for _, want := range []string{
		"[Unit]",
		"[Service]",
		"[Install]",
		"Restart=on-failure",
		"WorkingDirectory=/opt/pingtunnel",
		"StandardOutput=append:/var/log/pingtunnel/pingtunnel.log",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q", want)
		}
	}
}

func TestQuoteUnitArg(t *testing.T) {
	if got := quoteUnitArg("plain"); got != "plain" {
		t.Errorf("plain arg must not be quoted, got %q", got)
	}
	if got := quoteUnitArg(`a "b" c`); got != `"a \"b\" c"` {
		t.Errorf("unexpected quoting: %q", got)
	}
	if got := quoteUnitArg(`key\with\backslash`); got != `"key\\with\\backslash"` {
		t.Errorf("backslashes must be escaped, got %q", got)
	}
	if got := quoteUnitArg(`a \"b`); got != `"a \\\"b"` {
		t.Errorf("mixed escaping wrong, got %q", got)
	}
}
