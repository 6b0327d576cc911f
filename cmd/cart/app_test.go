package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args    []string
		want    command
		wantErr bool
	}{
		{args: []string{"list"}, want: command{name: "list"}},
		{args: []string{"add", "42"}, want: command{name: "add", productID: 42}},
		{args: []string{"remove", "7"}, want: command{name: "remove", productID: 7}},
		{args: []string{"update", "7", "8"}, want: command{name: "update", productID: 7, amount: 8}},
		{args: []string{"update", "7", "-1"}, want: command{name: "update", productID: 7, amount: -1}},
		{args: []string{"notifications"}, want: command{name: "notifications"}},
		{args: []string{"notifications", "5"}, want: command{name: "notifications", limit: 5}},
		{args: nil, wantErr: true},
		{args: []string{"clear"}, wantErr: true},
		{args: []string{"add"}, wantErr: true},
		{args: []string{"add", "shoes"}, wantErr: true},
		{args: []string{"update", "7"}, wantErr: true},
		{args: []string{"update", "7", "many"}, wantErr: true},
		{args: []string{"notifications", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseCommand(tt.args)
		if tt.wantErr {
			if !errors.Is(err, errUsage) {
				t.Fatalf("parseCommand(%v) expected usage error, got %v", tt.args, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseCommand(%v) returned error: %v", tt.args, err)
		}
		if got != tt.want {
			t.Fatalf("parseCommand(%v) = %+v, want %+v", tt.args, got, tt.want)
		}
	}
}

func fakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://example.com/1.jpg"}`))
	})
	mux.HandleFunc("/stock/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"amount":2}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type session struct {
	t       *testing.T
	envFile string
}

func newSession(t *testing.T) *session {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ROCKETSHOES_STORAGE_BACKEND", "sqlite")
	t.Setenv("ROCKETSHOES_DB_DSN", "")
	t.Setenv("ROCKETSHOES_DB_SQLITE_PATH", filepath.Join(dir, "cart.db"))
	t.Setenv("ROCKETSHOES_CATALOG_BASE_URL", fakeCatalog(t).URL)
	t.Setenv("ROCKETSHOES_NOTIFY_PERSIST", "true")
	t.Setenv("ROCKETSHOES_LOG_LEVEL", "error")
	t.Setenv("ROCKETSHOES_METRICS_TEXTFILE", filepath.Join(dir, "cart.prom"))
	return &session{t: t, envFile: filepath.Join(dir, "missing.env")}
}

func (s *session) run(args ...string) (int, string, string) {
	s.t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := run(context.Background(), append([]string{"-env-file", s.envFile}, args...), stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func decodeView(t *testing.T, raw string) cartView {
	t.Helper()
	var view cartView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		t.Fatalf("decode cart view: %v\n%s", err, raw)
	}
	return view
}

func TestRunPersistsCartAcrossInvocations(t *testing.T) {
	s := newSession(t)

	code, out, errOut := s.run("add", "1")
	if code != exitOK {
		t.Fatalf("add exited %d: %s", code, errOut)
	}
	if view := decodeView(t, out); len(view.Items) != 1 || view.Items[0].Amount != 1 {
		t.Fatalf("unexpected cart after add: %s", out)
	}

	code, out, _ = s.run("add", "1")
	if code != exitOK {
		t.Fatalf("second add exited %d", code)
	}
	view := decodeView(t, out)
	if view.TotalAmount != 2 || view.Subtotal.String() != "359.8" {
		t.Fatalf("unexpected totals: %s", out)
	}

	code, out, errOut = s.run("add", "1")
	if code != exitNotified {
		t.Fatalf("expected exit %d at stock limit, got %d", exitNotified, code)
	}
	if !strings.Contains(errOut, "error: Requested quantity is out of stock") {
		t.Fatalf("expected stock notification on stderr, got %s", errOut)
	}
	if view := decodeView(t, out); view.TotalAmount != 2 {
		t.Fatalf("cart should be unchanged: %s", out)
	}

	code, out, _ = s.run("notifications")
	if code != exitOK {
		t.Fatalf("notifications exited %d", code)
	}
	var history []map[string]any
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(history) != 1 || history[0]["kind"] != "stock_exceeded" {
		t.Fatalf("unexpected history %s", out)
	}

	code, out, _ = s.run("remove", "1")
	if code != exitOK {
		t.Fatalf("remove exited %d", code)
	}
	if view := decodeView(t, out); len(view.Items) != 0 || !view.Subtotal.IsZero() {
		t.Fatalf("expected empty cart: %s", out)
	}

	if _, err := os.Stat(os.Getenv("ROCKETSHOES_METRICS_TEXTFILE")); err != nil {
		t.Fatalf("expected metrics textfile: %v", err)
	}
}

func TestRunPortugueseNotifications(t *testing.T) {
	s := newSession(t)

	code, _, errOut := s.run("-lang", "pt-BR", "add", "99")
	if code != exitNotified {
		t.Fatalf("expected exit %d, got %d", exitNotified, code)
	}
	if !strings.Contains(errOut, "error: Erro na adição do produto") {
		t.Fatalf("expected portuguese message, got %s", errOut)
	}
}

func TestRunUsageErrors(t *testing.T) {
	s := newSession(t)

	if code, _, errOut := s.run("checkout"); code != exitFailure || !strings.Contains(errOut, "usage: cart") {
		t.Fatalf("expected usage failure, got %d %s", code, errOut)
	}
	if code, _, _ := s.run("-lang", "fr", "list"); code != exitFailure {
		t.Fatalf("expected unsupported language to fail, got %d", code)
	}
}

func TestRunMemoryBackendHasNoHistory(t *testing.T) {
	s := newSession(t)
	t.Setenv("ROCKETSHOES_STORAGE_BACKEND", "memory")

	if code, out, _ := s.run("list"); code != exitOK || decodeView(t, out).Products != 0 {
		t.Fatalf("expected empty cart listing, got %d %s", code, out)
	}
	if code, _, _ := s.run("notifications"); code != exitFailure {
		t.Fatalf("expected history to need a sql backend, got %d", code)
	}
}
