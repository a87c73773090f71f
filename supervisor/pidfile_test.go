package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPidfileStatusNotInstalled(t *testing.T) {
	p := NewPidfile("pingtunnel", t.TempDir(), t.TempDir())
	status, err := p.QueryStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusNotInstalled {
		t.Fatalf("expected NOT_INSTALLED, got %s", status)
	}
}

func TestPidfileInstallThenStopped(t *testing.T) {
	p := NewPidfile("pingtunnel", t.TempDir(), t.TempDir())
	def := Definition{
		Name:       "pingtunnel",
		BinaryPath: "/bin/true",
		Args:       []string{"-mode", "server"},
	}
	if err := p.Install(context.Background(), def); err != nil {
		t.Fatal(err)
	}
	status, err := p.QueryStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusStopped {
		t.Fatalf("expected STOPPED after install, got %s", status)
	}
}

func TestPidfileStaleNonLivePid(t *testing.T) {
	stateDir := t.TempDir()
	p := NewPidfile("pingtunnel", stateDir, t.TempDir())
	if err := p.Install(context.Background(), Definition{BinaryPath: "/bin/true"}); err != nil {
		t.Fatal(err)
	}
	// A pidfile naming a dead pid must read as stopped, and stop must be
	// a clean no-op.
	if err := os.WriteFile(filepath.Join(stateDir, "pingtunnel.pid"), []byte("999999"), 0o644); err != nil {
		t.Fatal(err)
	}
	status, err := p.QueryStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusStopped {
		t.Fatalf("expected STOPPED with stale pidfile, got %s", status)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop with stale pidfile: %v", err)
	}
}

func TestPidfileUninstallIdempotent(t *testing.T) {
	p := NewPidfile("pingtunnel", t.TempDir(), t.TempDir())
	if err := p.Uninstall(context.Background()); err != nil {
		t.Fatalf("uninstall with nothing installed: %v", err)
	}
}

func TestPidfileLogsTail(t *testing.T) {
	logDir := t.TempDir()
	p := NewPidfile("pingtunnel", t.TempDir(), logDir)
	content := "one\ntwo\nthree\nfour\n"
	if err := os.WriteFile(filepath.Join(logDir, "pingtunnel.log"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	ch, err := p.Logs(context.Background(), 2, false)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for line := range ch {
		got = append(got, line)
	}
	if len(got) != 2 || got[0] != "three" || got[1] != "four" {
		t.Fatalf("expected tail [three four], got %v", got)
	}
}

func TestPidfileLogsNonPositiveLines(t *testing.T) {
	logDir := t.TempDir()
	p := NewPidfile("pingtunnel", t.TempDir(), logDir)
	if err := os.WriteFile(filepath.Join(logDir, "pingtunnel.log"), []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, lines := range []int{0, -1} {
		ch, err := p.Logs(context.Background(), lines, false)
		if err != nil {
			t.Fatalf("Logs(%d): %v", lines, err)
		}
		for line := range ch {
			t.Errorf("Logs(%d) must emit nothing, got %q", lines, line)
		}
	}
}

func TestPidfileLogsHoldBackPartialLine(t *testing.T) {
	logDir := t.TempDir()
	p := NewPidfile("pingtunnel", t.TempDir(), logDir)
	logPath := filepath.Join(logDir, "pingtunnel.log")
	if err := os.WriteFile(logPath, []byte("complete\npartial"), 0o644); err != nil {
		t.Fatal(err)
	}
	ch, err := p.Logs(context.Background(), 10, false)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for line := range ch {
		got = append(got, line)
	}
	if len(got) != 1 || got[0] != "complete" {
		t.Fatalf("a line without its newline must be held back, got %v", got)
	}
}

func TestReadCompleteLinesAdvancesOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := os.WriteFile(path, []byte("complete\npartial"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var offset int64
	lines, err := readCompleteLines(f, &offset)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "complete" {
		t.Fatalf("expected [complete], got %v", lines)
	}

	// Finish the pending line; the next read must deliver it whole.
	if err := os.WriteFile(path, []byte("complete\npartial-done\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err = readCompleteLines(f, &offset)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "partial-done" {
		t.Fatalf("expected [partial-done], got %v", lines)
	}
}

func TestPidfileLogsMissingFile(t *testing.T) {
	p := NewPidfile("pingtunnel", t.TempDir(), t.TempDir())
	ch, err := p.Logs(context.Background(), 10, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, open := <-ch; open {
		t.Fatal("expected an empty closed channel when no log file exists")
	}
}
