package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/footprint/internal/catalog"
	"github.com/nao1215/footprint/internal/config"
	"github.com/nao1215/footprint/internal/database"
	"github.com/nao1215/footprint/internal/model"
)

// newProfileServer serves a profile page for any path, a 404 under /missing/
// and a page containing an absence marker under /marker/.
func newProfileServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	mux.HandleFunc("/marker/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>User not found</body></html>")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><head><title>Profile %s</title></head></html>", strings.TrimPrefix(r.URL.Path, "/"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// writeSearchConfig writes a config file whose username catalog points at server.
func writeSearchConfig(t *testing.T, server *httptest.Server) string {
	t.Helper()

	content := fmt.Sprintf(`defaults:
  workers: 2
  timeout: 2s
catalogs:
  username:
    replace: true
    endpoints:
      - name: Alpha
        category: social_media
        url: %[1]s/{}
      - name: Beta
        category: gaming
        url: %[1]s/missing/{}
      - name: Gamma
        category: gaming
        url: %[1]s/marker/{}
        absence_marker: User not found
`, server.URL)

	path := filepath.Join(t.TempDir(), ".footprint")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// searchJSON is the part of the JSON report the tests look at.
type searchJSON struct {
	Batch struct {
		ID      string `json:"id"`
		Subject string `json:"subject"`
		Status  string `json:"status"`
	} `json:"batch"`
	Statistics model.BatchStatistics `json:"statistics"`
}

func decodeReports(t *testing.T, r io.Reader) []searchJSON {
	t.Helper()

	var reports []searchJSON
	dec := json.NewDecoder(r)
	for {
		var rep searchJSON
		err := dec.Decode(&rep)
		if errors.Is(err, io.EOF) {
			return reports
		}
		if err != nil {
			t.Fatalf("failed to decode JSON report: %v", err)
		}
		reports = append(reports, rep)
	}
}

func TestNewSearchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewSearchCmd()

	t.Run("has kind subcommands", func(t *testing.T) {
		t.Parallel()

		want := []string{"username", "phone", "subdomain", "dir"}
		for _, name := range want {
			sub, _, err := cmd.Find([]string{name})
			if err != nil || sub == cmd {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
		}{
			{"workers", "w"},
			{"timeout", "t"},
			{"deadline", "d"},
			{"header", "H"},
			{"proxy", "x"},
			{"config", "c"},
			{"json", "j"},
			{"markdown", "m"},
			{"output", "o"},
			{"user-agent", ""},
			{"category", ""},
			{"catalog", ""},
			{"tor", ""},
			{"tor-timeout", ""},
			{"show-absent", ""},
			{"no-history", ""},
			{"db-dir", ""},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
		}
	})

	t.Run("only username has variations flags", func(t *testing.T) {
		t.Parallel()

		username, _, err := cmd.Find([]string{"username"})
		if err != nil {
			t.Fatal(err)
		}
		if username.Flags().Lookup("variations") == nil || username.Flags().Lookup("limit") == nil {
			t.Error("expected variations and limit flags on username")
		}

		phone, _, err := cmd.Find([]string{"phone"})
		if err != nil {
			t.Fatal(err)
		}
		if phone.Flags().Lookup("variations") != nil {
			t.Error("phone should not have a variations flag")
		}
	})

	t.Run("default values", func(t *testing.T) {
		t.Parallel()

		if got := cmd.PersistentFlags().Lookup("workers").DefValue; got != fmt.Sprint(config.DefaultWorkers) {
			t.Errorf("workers default = %s", got)
		}
		if got := cmd.PersistentFlags().Lookup("timeout").DefValue; got != config.DefaultTimeout.String() {
			t.Errorf("timeout default = %s", got)
		}
	})
}

func TestSearchUsername(t *testing.T) {
	t.Parallel()

	server := newProfileServer(t)
	configPath := writeSearchConfig(t, server)

	t.Run("json report counts every outcome", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--db-dir", t.TempDir(), "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		reports := decodeReports(t, strings.NewReader(stdout))
		if len(reports) != 1 {
			t.Fatalf("expected 1 report, got %d", len(reports))
		}
		rep := reports[0]
		if rep.Batch.Subject != "alice" {
			t.Errorf("subject = %q, want alice", rep.Batch.Subject)
		}
		if rep.Batch.Status != string(model.StatusComplete) {
			t.Errorf("status = %q, want complete", rep.Batch.Status)
		}
		st := rep.Statistics
		if st.Total != 3 || st.FoundCount != 1 || st.NotFoundCount != 2 || st.ErrorCount != 0 {
			t.Errorf("unexpected statistics: %+v", st)
		}
	})

	t.Run("text report names the found endpoint", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--db-dir", t.TempDir(), "--show-absent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"FOOTPRINT REPORT", "alice", "Alpha", "Profile alice", "NOT FOUND", "Beta", "Gamma"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("category filter", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "--json", "--category", "gaming")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		reports := decodeReports(t, strings.NewReader(stdout))
		if len(reports) != 1 {
			t.Fatalf("expected 1 report, got %d", len(reports))
		}
		if reports[0].Statistics.Total != 2 || reports[0].Statistics.FoundCount != 0 {
			t.Errorf("unexpected statistics: %+v", reports[0].Statistics)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "--category", "nope")
		if !errors.Is(err, catalog.ErrUnknownCategory) {
			t.Errorf("expected ErrUnknownCategory, got %v", err)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("invalid workers", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "--workers", "0")
		if !errors.Is(err, config.ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
	})

	t.Run("invalid username", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "search", "username", "a/b",
			"--config", configPath, "--no-history")
		if !errors.Is(err, catalog.ErrInvalidSubject) {
			t.Errorf("expected ErrInvalidSubject, got %v", err)
		}
	})

	t.Run("missing explicit config", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "missing.yaml")
		_, _, err := executeRoot(t, "search", "username", "alice", "--config", missing, "--no-history")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("catalog kind mismatch", func(t *testing.T) {
		t.Parallel()

		catalogPath := filepath.Join(t.TempDir(), "phone.yaml")
		content := "kind: phone\nendpoints:\n  - name: Lookup\n    category: lookup\n    url: https://example.com/{}\n"
		if err := os.WriteFile(catalogPath, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		_, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "--catalog", catalogPath)
		if !errors.Is(err, catalog.ErrKindMismatch) {
			t.Errorf("expected ErrKindMismatch, got %v", err)
		}
	})

	t.Run("extra catalog file is merged", func(t *testing.T) {
		t.Parallel()

		catalogPath := filepath.Join(t.TempDir(), "extra.yaml")
		content := fmt.Sprintf("kind: username\nendpoints:\n  - name: Delta\n    category: forums\n    url: %s/{}\n", server.URL)
		if err := os.WriteFile(catalogPath, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		stdout, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "--json", "--catalog", catalogPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		reports := decodeReports(t, strings.NewReader(stdout))
		if len(reports) != 1 || reports[0].Statistics.Total != 4 || reports[0].Statistics.FoundCount != 2 {
			t.Errorf("unexpected reports: %+v", reports)
		}
	})

	t.Run("writes report to output file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "reports", "alice.md")
		stdout, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "--markdown", "--output", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(stdout, "# Footprint Report") {
			t.Error("report should not be printed to stdout")
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(content), "# Footprint Report") {
			t.Error("expected Markdown report in output file")
		}
	})

	t.Run("saves history unless disabled", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		if _, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--db-dir", dbDir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		db, err := database.Open(dbDir, database.Options{})
		if err != nil {
			t.Fatalf("expected history database: %v", err)
		}
		defer db.Close()

		history, err := db.History(context.Background(), "alice", model.KindUsername)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 1 || history[0].FoundCount != 1 {
			t.Errorf("unexpected history: %+v", history)
		}

		noHistoryDir := t.TempDir()
		if _, _, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--db-dir", noHistoryDir, "--no-history"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(noHistoryDir, database.DBFileName)); !os.IsNotExist(err) {
			t.Error("expected no database with --no-history")
		}
	})

	t.Run("variations run one batch each", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		stdout, stderr, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--db-dir", dbDir, "--json", "--variations", "--limit", "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if reports := decodeReports(t, strings.NewReader(stdout)); len(reports) != 3 {
			t.Errorf("expected 3 reports, got %d", len(reports))
		}
		if !strings.Contains(stderr, "[3/3]") {
			t.Errorf("expected progress header in stderr, got %q", stderr)
		}

		db, err := database.Open(dbDir, database.Options{})
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		subjects, err := db.ListSubjects(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(subjects) != 3 {
			t.Errorf("expected 3 subjects in history, got %d", len(subjects))
		}
	})

	t.Run("verbose prints progress", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := executeRoot(t, "search", "username", "alice",
			"--config", configPath, "--no-history", "-v")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "[+]") || !strings.Contains(stderr, "[-]") {
			t.Errorf("expected progress lines, got %q", stderr)
		}
	})
}

func TestRunSearchCancelled(t *testing.T) {
	t.Parallel()

	server := newProfileServer(t)
	fc, err := config.LoadConfigFile(writeSearchConfig(t, server))
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.FileConfig = fc
	fc.ApplyDefaults(cfg)
	cfg.DBDir = t.TempDir()
	cfg.JSONReport = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr strings.Builder
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runSearch(ctx, cfg, model.KindUsername, "alice", &stdout, &stderr, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reports := decodeReports(t, strings.NewReader(stdout.String()))
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	if reports[0].Batch.Status != string(model.StatusCancelled) {
		t.Errorf("status = %q, want cancelled", reports[0].Batch.Status)
	}
	if reports[0].Statistics.ErrorCount != 3 {
		t.Errorf("expected every endpoint to be cancelled, got %+v", reports[0].Statistics)
	}
	if !strings.Contains(stderr.String(), "partial results") {
		t.Errorf("expected interruption notice, got %q", stderr.String())
	}

	db, err := database.Open(cfg.DBDir, database.Options{})
	if err != nil {
		t.Fatalf("partial batch should still be saved: %v", err)
	}
	defer db.Close()
	rec, err := db.LatestBatch(context.Background(), "alice", model.KindUsername)
	if err != nil || rec == nil {
		t.Fatalf("expected saved batch, got %v, %v", rec, err)
	}
}

var errDiskFull = errors.New("disk full")

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errDiskFull
}

func TestRunSearchReportWriteFails(t *testing.T) {
	t.Parallel()

	server := newProfileServer(t)
	fc, err := config.LoadConfigFile(writeSearchConfig(t, server))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		json       bool
		variations bool
	}{
		{"text report", false, false},
		{"json report", true, false},
		{"stops after the first failed variation", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.FileConfig = fc
			fc.ApplyDefaults(cfg)
			cfg.DBDir = t.TempDir()
			cfg.JSONReport = tt.json
			cfg.Variations = tt.variations
			cfg.VariationLimit = 3

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			err := runSearch(context.Background(), cfg, model.KindUsername, "alice", failingWriter{}, io.Discard, logger)
			if !errors.Is(err, errDiskFull) {
				t.Fatalf("expected the write error, got %v", err)
			}

			db, err := database.Open(cfg.DBDir, database.Options{})
			if err != nil {
				t.Fatalf("batch should still be saved: %v", err)
			}
			defer db.Close()

			subjects, err := db.ListSubjects(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(subjects) != 1 {
				t.Errorf("expected 1 saved subject, got %d", len(subjects))
			}
		})
	}
}

func TestSearchOutputToDirectoryFails(t *testing.T) {
	t.Parallel()

	server := newProfileServer(t)
	configPath := writeSearchConfig(t, server)

	// the output path is an existing directory, so it cannot be opened for writing
	_, _, err := executeRoot(t, "search", "username", "alice",
		"--config", configPath, "--no-history", "--output", t.TempDir())
	if err == nil {
		t.Error("expected an error when the report file cannot be created")
	}
}

func TestProgressPrinter(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	printResult := progressPrinter(&sb, 3)
	printResult(model.Result{Endpoint: model.EndpointDescriptor{Name: "Alpha"}, Outcome: model.NewFound("u", 200, 1, 1, "")})
	printResult(model.Result{Endpoint: model.EndpointDescriptor{Name: "Beta"}, Outcome: model.NewStatusNotFound("u", 404)})
	printResult(model.Result{Endpoint: model.EndpointDescriptor{Name: "Gamma"}, Outcome: model.NewError(model.ErrorTimeout, "u", "slow")})

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	tests := []struct {
		mark string
		rest string
	}{
		{"[+]", "  1/3 Alpha"},
		{"[-]", "  2/3 Beta"},
		{"[!]", "  3/3 Gamma"},
	}
	for i, tt := range tests {
		if !strings.Contains(lines[i], tt.mark) || !strings.Contains(lines[i], tt.rest) {
			t.Errorf("line %d = %q, want %q and %q", i, lines[i], tt.mark, tt.rest)
		}
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("empty path is stdout", func(t *testing.T) {
		t.Parallel()
		var sb strings.Builder
		w, closeFn, err := openOutput("", &sb)
		if err != nil {
			t.Fatal(err)
		}
		if w != io.Writer(&sb) {
			t.Error("expected stdout writer")
		}
		if err := closeFn(); err != nil {
			t.Errorf("closing stdout destination: %v", err)
		}
	})

	t.Run("file is owner only", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "a", "b", "report.txt")
		_, closeFn, err := openOutput(path, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		if err := closeFn(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
		if err := closeFn(); err == nil {
			t.Error("expected the second close to report an error")
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	})
}
