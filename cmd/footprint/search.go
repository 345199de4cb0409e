package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/net/proxy"

	"github.com/nao1215/footprint/internal/catalog"
	"github.com/nao1215/footprint/internal/config"
	"github.com/nao1215/footprint/internal/database"
	"github.com/nao1215/footprint/internal/engine"
	"github.com/nao1215/footprint/internal/log"
	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/probe"
	"github.com/nao1215/footprint/internal/report"
	"github.com/nao1215/footprint/internal/stats"
	"github.com/nao1215/footprint/internal/tor"
)

// NewSearchCmd creates the search command and its per-kind subcommands.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a catalog of endpoints for a subject",
		Long: `Search probes every endpoint of a catalog for one subject and reports
where the subject was found.

Press Ctrl+C to stop a running search. Endpoints that had not answered yet
are reported as cancelled, and the partial result is still printed and saved.`,
	}

	flags := cmd.PersistentFlags()
	flags.IntP("workers", "w", config.DefaultWorkers, "Number of probes in flight at once")
	flags.DurationP("timeout", "t", config.DefaultTimeout, "Budget for a single probe")
	flags.DurationP("deadline", "d", config.DefaultDeadline, "Budget for the whole search (0 disables)")
	flags.String("user-agent", config.DefaultUserAgent, "User-Agent header sent with every probe")
	flags.StringToStringP("header", "H", nil, "Extra request header as key=value (repeatable)")
	flags.StringSlice("category", nil, "Only probe endpoints in these categories")
	flags.String("catalog", "", "Extra catalog YAML file merged into the built-in catalog")
	flags.StringP("proxy", "x", "", "Route probes through a SOCKS5 proxy (host:port)")
	flags.Bool("tor", false, "Start an embedded Tor daemon and route probes through it")
	flags.Duration("tor-timeout", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")
	flags.StringP("config", "c", "", "Configuration file path (default: .footprint in current or home directory)")
	flags.BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	flags.BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	flags.StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
	flags.Bool("show-absent", false, "List endpoints where the subject was not found")
	flags.Bool("no-history", false, "Do not save the result to the history database")
	flags.String("db-dir", "", "History database directory (default: XDG data directory)")

	cmd.AddCommand(newSearchKindCmd(model.KindUsername, "username <handle>",
		"Search social and community platforms for a username",
		`  footprint search username alice
  footprint search username alice --category social_media,gaming
  footprint search username alice --variations --limit 10`))
	cmd.AddCommand(newSearchKindCmd(model.KindPhone, "phone <number>",
		"Search messaging and lookup services for a phone number",
		`  footprint search phone +15551234567`))
	cmd.AddCommand(newSearchKindCmd(model.KindSubdomain, "subdomain <domain>",
		"Enumerate common subdomains of a domain",
		`  footprint search subdomain example.com --workers 20`))
	cmd.AddCommand(newSearchKindCmd(model.KindDirectory, "dir <base-url>",
		"Discover common paths on a web site",
		`  footprint search dir https://example.com --category admin,backup`))

	return cmd
}

func newSearchKindCmd(kind model.SubjectKind, use, short, examples string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: examples,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchCmd(cmd, kind, args[0])
		},
	}

	if kind == model.KindUsername {
		cmd.Flags().Bool("variations", false, "Also search generated variations of the username")
		cmd.Flags().Int("limit", config.DefaultVariationLimit, "Maximum number of variations to search (0 means no limit)")
	}

	return cmd
}

func runSearchCmd(cmd *cobra.Command, kind model.SubjectKind, subject string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling search")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runSearch(ctx, cfg, kind, subject, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildConfig creates a Config from the config file and the command flags.
// Flags only override file values when they were set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		cfg.FileConfig, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.FileConfig.ApplyDefaults(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("deadline") {
		if cfg.Deadline, err = flags.GetDuration("deadline"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}

	headers, err := flags.GetStringToString("header")
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}

	if cfg.Categories, err = flags.GetStringSlice("category"); err != nil {
		return nil, err
	}
	if cfg.CatalogFile, err = flags.GetString("catalog"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ShowNotFound, err = flags.GetBool("show-absent"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	if dbDir, err := flags.GetString("db-dir"); err != nil {
		return nil, err
	} else if dbDir != "" {
		cfg.DBDir = dbDir
	}

	// only defined on the username subcommand
	if flags.Lookup("variations") != nil {
		if cfg.Variations, err = flags.GetBool("variations"); err != nil {
			return nil, err
		}
		if cfg.VariationLimit, err = flags.GetInt("limit"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// runSearch runs one batch per subject (one, or one per username variation)
// and writes a report for each. A batch whose report cannot be written is
// still saved to history before the write error is returned.
func runSearch(ctx context.Context, cfg *config.Config, kind model.SubjectKind, raw string, stdout, stderr io.Writer, logger *slog.Logger) (retErr error) {
	subject, err := catalog.Normalize(kind, raw)
	if err != nil {
		return err
	}

	cat, err := buildCatalog(cfg, kind)
	if err != nil {
		return err
	}

	subjects := []string{subject}
	if cfg.Variations && kind == model.KindUsername {
		subjects = catalog.Variations(subject, time.Now(), cfg.VariationLimit)
	}

	dialer, stopProxy, err := setupProxy(ctx, cfg, stderr, logger)
	if err != nil {
		return err
	}
	defer stopProxy()

	prober := probe.New(proberOptions(cfg, dialer)...)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	out, closeOut, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeOut(); err != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close report file: %w", err)
		}
	}()
	writer := newReportWriter(cfg, out)

	for i, s := range subjects {
		if len(subjects) > 1 {
			fmt.Fprintf(stderr, "[%d/%d] Searching %s across %d endpoints...\n", i+1, len(subjects), s, cat.Len())
		}

		sched, err := engine.NewScheduler(prober, schedulerOptions(cfg, cat.Len(), stderr, logger)...)
		if err != nil {
			return err
		}

		batch, err := sched.Run(ctx, s, cat)
		if err != nil {
			return err
		}
		st := stats.Summarize(batch)

		_, writeErr := writer.Write(batch, st)

		// a cancelled ctx must not prevent saving the partial batch
		if err := saveBatch(context.WithoutCancel(ctx), db, batch, st, logger); err != nil {
			logger.Error("failed to save batch", "batch_id", batch.ID, "error", err)
		}

		if writeErr != nil {
			return fmt.Errorf("failed to write report for %s: %w", s, writeErr)
		}

		if batch.Status == model.StatusCancelled {
			fmt.Fprintln(stderr, "Search interrupted; partial results were reported.")
			return nil
		}
	}

	return nil
}

// buildCatalog assembles the catalog for kind from the built-in list,
// the config file and the --catalog file.
func buildCatalog(cfg *config.Config, kind model.SubjectKind) (*model.Catalog, error) {
	opts := catalog.BuildOptions{Categories: cfg.Categories}

	if cfg.FileConfig != nil {
		cc := cfg.FileConfig.CatalogFor(kind)
		opts.ReplaceBuiltin = cc.Replace
		opts.Custom = append(opts.Custom, cc.Endpoints...)
	}

	if cfg.CatalogFile != "" {
		extra, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		if extra.Kind != kind {
			return nil, fmt.Errorf("%w: %s declares %q, searching %q",
				catalog.ErrKindMismatch, cfg.CatalogFile, extra.Kind, kind)
		}
		opts.Custom = append(opts.Custom, extra.Endpoints...)
	}

	c, err := catalog.Build(kind, opts)
	if err != nil {
		if errors.Is(err, model.ErrEmptyCatalog) {
			return nil, fmt.Errorf("%w: nothing to probe for %s", err, kind)
		}
		return nil, err
	}
	return c, nil
}

func proberOptions(cfg *config.Config, dialer proxy.Dialer) []probe.Option {
	opts := []probe.Option{
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, probe.WithHeaders(cfg.Headers))
	}
	if dialer != nil {
		opts = append(opts, probe.WithDialer(dialer))
	}
	return opts
}

func schedulerOptions(cfg *config.Config, total int, stderr io.Writer, logger *slog.Logger) []engine.Option {
	opts := []engine.Option{
		engine.WithWorkers(cfg.Workers),
		engine.WithTaskTimeout(cfg.Timeout),
		engine.WithDeadline(cfg.Deadline),
		engine.WithLogger(logger),
	}
	if cfg.Verbose {
		opts = append(opts, engine.WithResultCallback(progressPrinter(stderr, total)))
	}
	return opts
}

// progressPrinter returns a callback printing one line per classified result.
// Markers are colored unless NO_COLOR is set or stdout is not a terminal.
func progressPrinter(w io.Writer, total int) engine.ResultFunc {
	var (
		mu   sync.Mutex
		done int
	)
	found := color.New(color.FgGreen, color.Bold).Sprint("[+]")
	absent := color.New(color.FgHiBlack).Sprint("[-]")
	failed := color.New(color.FgYellow).Sprint("[!]")

	return func(r model.Result) {
		mu.Lock()
		defer mu.Unlock()
		done++

		mark := absent
		switch r.Outcome.Kind {
		case model.OutcomeFound:
			mark = found
		case model.OutcomeError:
			mark = failed
		}
		fmt.Fprintf(w, "%s %3d/%d %-20s %s\n", mark, done, total, r.Endpoint.Name, r.Outcome)
	}
}

// setupProxy returns the dialer probes should use, or nil for direct connections.
// The returned stop function releases an embedded Tor daemon if one was started.
func setupProxy(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *slog.Logger) (proxy.Dialer, func(), error) {
	noop := func() {}

	switch {
	case cfg.UseTor:
		fmt.Fprintln(stderr, "Starting embedded Tor daemon...")
		fmt.Fprintf(stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

		embeddedTor := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := embeddedTor.Start(ctx); err != nil {
			return nil, noop, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		stop := func() {
			logger.Info("stopping embedded Tor daemon")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}

		client, err := embeddedTor.NewClient()
		if err != nil {
			stop()
			return nil, noop, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			stop()
			return nil, noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
		}

		logger.Info("embedded Tor daemon started", "socks_addr", embeddedTor.SocksAddr())
		return client.Dialer(), stop, nil

	case cfg.ProxyAddress != "":
		client, err := tor.NewClient(cfg.ProxyAddress)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid proxy %q: %w", cfg.ProxyAddress, err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, noop, fmt.Errorf("proxy check failed for %s: %w", cfg.ProxyAddress, status.Error())
		}

		logger.Info("SOCKS5 proxy verified", "address", cfg.ProxyAddress)
		return client.Dialer(), noop, nil
	}

	return nil, noop, nil
}

// openOutput returns the report destination: the file at path, or stdout.
// The returned close function reports the error of closing the file.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// reports name the accounts of a real person; keep them owner-only
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter picks the report format requested by cfg.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out,
			report.WithVerbose(cfg.Verbose),
			report.WithShowNotFound(cfg.ShowNotFound),
		)
	}
}

// saveBatch stores the batch in the history database. A nil db is a no-op.
func saveBatch(ctx context.Context, db *database.HistoryDB, b *model.Batch, st model.BatchStatistics, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveBatch(ctx, b, st); err != nil {
		return err
	}

	logger.Debug("batch saved to history", "batch_id", b.ID, "status", b.Status)
	return nil
}
