package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func zipWithEntry(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testInstaller(serverURL string) *GithubInstaller {
	return &GithubInstaller{
		BaseURL: serverURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
		Retries: 3,
	}
}

func TestFetchAndPlaceBinary(t *testing.T) {
	payload := zipWithEntry(t, "pingtunnel", []byte("fake elf"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	target := t.TempDir()
	binPath, err := testInstaller(srv.URL).FetchAndPlaceBinary(context.Background(), "2.8", target)
	if err != nil {
		t.Fatalf("FetchAndPlaceBinary: %v", err)
	}
	info, err := os.Stat(binPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0o111 == 0 {
		t.Fatal("binary must be executable")
	}
	data, err := os.ReadFile(binPath)
	if err != nil || string(data) != "fake elf" {
		t.Fatalf("unexpected binary content: %q, %v", data, err)
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	payload := zipWithEntry(t, "pingtunnel", []byte("ok"))
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	if _, err := testInstaller(srv.URL).FetchAndPlaceBinary(context.Background(), "", t.TempDir()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	inst := testInstaller(srv.URL)
	inst.Retries = 1
	if _, err := inst.FetchAndPlaceBinary(context.Background(), "", t.TempDir()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestSafeExtractRejectsZipSlip(t *testing.T) {
	payload := zipWithEntry(t, "../evil", []byte("nope"))
	zipPath := filepath.Join(t.TempDir(), "payload.zip")
	if err := os.WriteFile(zipPath, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	target := t.TempDir()
	if err := safeExtract(zipPath, target); err == nil {
		t.Fatal("expected unsafe zip entry to be rejected")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(target), "evil")); err == nil {
		t.Fatal("zip slip escaped the target directory")
	}
}

func TestFindBinaryMissing(t *testing.T) {
	if _, err := FindBinary(t.TempDir()); err == nil {
		t.Fatal("expected error when no binary present")
	}
}
