package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nao1215/footprint/internal/config"
	"github.com/nao1215/footprint/internal/database"
	"github.com/nao1215/footprint/internal/model"
)

// errNoHistory is returned when the history database does not exist yet.
var errNoHistory = errors.New("no search history yet")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [subject]",
		Short: "Show past searches",
		Long: `History shows searches saved in the local history database.

Without arguments it lists every searched subject. With a subject it lists
the searches for that subject, newest first. --show prints the full report
of one search by its batch ID.`,
		Example: `  footprint history
  footprint history alice --kind username
  footprint history --show 3b1f0c2e-... --markdown
  footprint history --delete alice`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")
	cmd.Flags().String("kind", "", "Only list searches of this subject kind")
	cmd.Flags().String("show", "", "Print the report of the search with this batch ID")
	cmd.Flags().String("delete", "", "Delete every saved search for this subject")
	cmd.Flags().BoolP("json", "j", false, "Print --show report as JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Print --show report as Markdown")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := openHistory(dbDir)
	if err != nil {
		if errors.Is(err, errNoHistory) {
			fmt.Fprintln(cmd.OutOrStdout(), "No search history yet.")
			return nil
		}
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if id, _ := flags.GetString("show"); id != "" { //nolint:errcheck // flag is defined above
		return showBatch(cmd, db, id)
	}

	if subject, _ := flags.GetString("delete"); subject != "" { //nolint:errcheck // flag is defined above
		n, err := db.DeleteSubject(cmd.Context(), subject)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d searches for %s\n", n, subject)
		return nil
	}

	if len(args) == 0 {
		return listSubjects(cmd, db, out)
	}

	var kind model.SubjectKind
	if k, _ := flags.GetString("kind"); k != "" { //nolint:errcheck // flag is defined above
		if kind, err = model.ParseSubjectKind(k); err != nil {
			return err
		}
	}
	return listBatches(cmd, db, out, args[0], kind)
}

// openHistory opens an existing history database without creating one.
func openHistory(dbDir string) (*database.HistoryDB, error) {
	if _, err := os.Stat(filepath.Join(dbDir, database.DBFileName)); os.IsNotExist(err) {
		return nil, errNoHistory
	}

	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func listSubjects(cmd *cobra.Command, db *database.HistoryDB, out io.Writer) error {
	subjects, err := db.ListSubjects(cmd.Context())
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		fmt.Fprintln(out, "No search history yet.")
		return nil
	}

	table := tablewriter.NewTable(out)
	table.Header("Subject", "Kind", "Searches", "Last Search")
	for _, s := range subjects {
		if err := table.Append(s.Subject, string(s.Kind), strconv.Itoa(s.Batches),
			s.LastRun.Local().Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	return table.Render()
}

func listBatches(cmd *cobra.Command, db *database.HistoryDB, out io.Writer, subject string, kind model.SubjectKind) error {
	history, err := db.History(cmd.Context(), subject, kind)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(out, "No searches saved for %s\n", subject)
		return nil
	}

	table := tablewriter.NewTable(out)
	table.Header("Batch ID", "Kind", "Started", "Status", "Found", "Endpoints", "Success")
	for _, h := range history {
		if err := table.Append(
			h.ID,
			string(h.Kind),
			h.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(h.Status),
			strconv.Itoa(h.FoundCount),
			strconv.Itoa(h.EndpointsTotal),
			fmt.Sprintf("%.2f%%", h.SuccessRatePct),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func showBatch(cmd *cobra.Command, db *database.HistoryDB, id string) error {
	rec, err := db.GetBatch(cmd.Context(), id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no saved search with batch ID %s", id)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if asJSON && asMarkdown {
		return config.ErrConflictingReportFormats
	}

	cfg := config.NewConfig()
	cfg.JSONReport = asJSON
	cfg.MarkdownReport = asMarkdown
	cfg.Verbose = getVerboseFlag(cmd)

	w := newReportWriter(cfg, cmd.OutOrStdout())
	_, err = w.Write(rec.Batch, rec.Stats)
	return err
}
