package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"feeledger/internal/amqp"
	"feeledger/internal/backend"
	"feeledger/internal/core"
	"feeledger/internal/log"
	"feeledger/internal/receipt"
	"feeledger/internal/sheets"
	"feeledger/internal/storage"
	"feeledger/internal/table"
	"feeledger/internal/tui"
	"feeledger/internal/worker"
)

const defaultSession = "default"

var errEmptySheet = errors.New("spreadsheet has no fee rows")

// rowStore builds the configured spreadsheet store. A backend that does
// not outlive the process is refused: importing from it would replace a
// session with nothing and exporting to it would discard the rows.
func rowStore(ctx context.Context, e *env) (sheets.RowStore, error) {
	bcfg, err := backend.FromAppConfig(e.cfg)
	if err != nil {
		return nil, err
	}
	if !bcfg.Type.Persistent() {
		return nil, fmt.Errorf("EXPORT_BACKEND=%s keeps no rows between runs: set it to file or sheets", bcfg.Type)
	}
	return backend.NewFactory(e.logger.WithComponent(log.ComponentSheets)).CreateRowStore(ctx, bcfg)
}

// readSheet returns the spreadsheet rows, or errEmptySheet when there are
// none so a session is never replaced by an empty read.
func readSheet(ctx context.Context, e *env) ([][]string, error) {
	store, err := rowStore(ctx, e)
	if err != nil {
		return nil, err
	}
	rows, err := store.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, errEmptySheet
	}
	return rows, nil
}

// loadSession returns the saved rows of session, or none when it was
// never saved.
func loadSession(ctx context.Context, e *env, session string) ([][]string, error) {
	rows, err := e.repo.LoadProgress(ctx, session)
	if errors.Is(err, storage.ErrNoProgress) {
		e.logger.Info("Starting new session", log.FieldSession, session)
		return nil, nil
	}
	return rows, err
}

// validRecords parses rows and logs a warning for every row it skips.
func validRecords(e *env, rows [][]string) []core.FeeRecord {
	records, skipped := core.ParseRows(rows)
	for _, s := range skipped {
		e.logger.Warn("Skipping row", "row", s.Index+1, log.FieldError, s.Reason)
	}
	return records
}

func runEdit(ctx context.Context, e *env, args []string) error {
	var session string
	var fromSheet bool
	flagSet := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	flagSet.StringVarP(&session, "session", "s", defaultSession, "session name to open")
	flagSet.BoolVar(&fromSheet, "from-sheet", false, "replace the session with the spreadsheet contents (undoable)")
	if ok, err := parseFlags(flagSet, "edit [--session NAME] [--from-sheet]", args); !ok {
		return err
	}

	var sheetRows [][]string
	if fromSheet {
		var err error
		if sheetRows, err = readSheet(ctx, e); err != nil {
			return err
		}
	}

	rows, err := loadSession(ctx, e, session)
	if err != nil {
		return err
	}

	t := table.New(core.Headers)
	fillTable(t, rows)
	editor := table.NewEditor(t, table.Options{
		HistoryCapacity: e.cfg.HistoryCapacity,
		Clipboard:       table.NewSystemClipboard(),
	})

	if fromSheet {
		editor.Import(sheetRows)
	}

	p := tea.NewProgram(tui.NewModel(editor, e.repo, session), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// fillTable loads rows into t before an editor is attached, so they form
// the baseline rather than an undoable edit.
func fillTable(t *table.Table, rows [][]string) {
	for i, cells := range rows {
		t.InsertRow(i)
		for c, v := range cells {
			t.SetCell(i, c, v)
		}
	}
}

func runImport(ctx context.Context, e *env, args []string) error {
	var session string
	flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flagSet.StringVarP(&session, "session", "s", defaultSession, "session to replace with the imported rows")
	if ok, err := parseFlags(flagSet, "import [--session NAME]", args); !ok {
		return err
	}

	rows, err := readSheet(ctx, e)
	if err != nil {
		return err
	}

	records := validRecords(e, rows)
	if len(records) == 0 {
		return fmt.Errorf("%w: all %d rows were skipped", errEmptySheet, len(rows))
	}
	valid := make([][]string, 0, len(records))
	for _, rec := range records {
		valid = append(valid, rec.Row())
	}
	if err := e.repo.SaveProgress(ctx, session, valid); err != nil {
		return err
	}

	e.logger.Info("Import finished",
		log.NewFields().
			WithOperation(log.OpImport).
			WithSession(session).
			WithRows(len(valid), len(rows)-len(valid)).
			ToSlice()...)
	fmt.Fprintf(e.out, "imported %d of %d rows into %q\n", len(valid), len(rows), session)
	return nil
}

func runExport(ctx context.Context, e *env, args []string) error {
	var session string
	var async bool
	flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
	flagSet.StringVarP(&session, "session", "s", defaultSession, "session to export")
	flagSet.BoolVar(&async, "async", false, "queue the export for feeledger-worker over AMQP")
	if ok, err := parseFlags(flagSet, "export [--session NAME] [--async]", args); !ok {
		return err
	}

	if async {
		return queueExport(ctx, e, session)
	}

	store, err := rowStore(ctx, e)
	if err != nil {
		return err
	}
	w := worker.NewExportWorker(e.repo, store, e.cfg.ExportTimeout, 0)
	id, err := w.ExportNow(ctx, session)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "exported %q (request %s)\n", session, id)
	return nil
}

func queueExport(ctx context.Context, e *env, session string) error {
	if e.cfg.AMQPURL == "" {
		return errors.New("--async requires AMQP_URL")
	}
	if _, err := e.repo.LoadProgress(ctx, session); err != nil {
		return err
	}

	client, err := amqp.NewClient(e.cfg.AMQPURL, e.cfg.AMQPExchange, e.cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	req := amqp.NewExportRequest(session)
	if err := e.repo.CreateExport(ctx, req.RequestID, req.Session); err != nil {
		return err
	}
	if err := client.PublishExportRequest(ctx, req); err != nil {
		// the worker's startup check picks up the pending row
		e.logger.Warn("Export queued locally only", log.FieldRequestID, req.RequestID, log.FieldError, err)
		return fmt.Errorf("publish export request: %w", err)
	}
	fmt.Fprintf(e.out, "queued export of %q (request %s)\n", session, req.RequestID)
	return nil
}

func runReceipts(ctx context.Context, e *env, args []string) error {
	var session, outDir string
	var merge bool
	flagSet := pflag.NewFlagSet("receipts", pflag.ContinueOnError)
	flagSet.StringVarP(&session, "session", "s", defaultSession, "session to render")
	flagSet.StringVarP(&outDir, "out-dir", "o", e.cfg.ReceiptOutputDir, "directory for the receipt files")
	flagSet.BoolVar(&merge, "merge", false, "merge the receipts into one document afterwards")
	if ok, err := parseFlags(flagSet, "receipts [--session NAME] [--out-dir DIR] [--merge]", args); !ok {
		return err
	}

	rows, err := e.repo.LoadProgress(ctx, session)
	if err != nil {
		return err
	}
	records := validRecords(e, rows)

	tmpl, err := receipt.LoadTemplate(e.cfg.ReceiptTemplateFile)
	if err != nil {
		return err
	}

	result, err := receipt.NewGenerator(tmpl, outDir, e.cfg.ReceiptWorkers).Generate(ctx, records)
	if err != nil {
		return err
	}
	printSummary(e.out, core.Summarize(records))
	fmt.Fprintf(e.out, "wrote %d receipts to %s (%d failed)\n", len(result.Written), outDir, result.Failed)

	if !merge {
		return nil
	}
	return mergeReceipts(e, outDir, filepath.Join(outDir, e.cfg.ReceiptMergedName), tmpl.Title)
}

func runMerge(ctx context.Context, e *env, args []string) error {
	var dir, out string
	flagSet := pflag.NewFlagSet("merge", pflag.ContinueOnError)
	flagSet.StringVarP(&dir, "dir", "d", e.cfg.ReceiptOutputDir, "directory holding the receipt files")
	flagSet.StringVarP(&out, "out", "o", "", "merged document path (default: <dir>/"+e.cfg.ReceiptMergedName+")")
	if ok, err := parseFlags(flagSet, "merge [--dir DIR] [--out FILE]", args); !ok {
		return err
	}
	if out == "" {
		out = filepath.Join(dir, e.cfg.ReceiptMergedName)
	}

	tmpl, err := receipt.LoadTemplate(e.cfg.ReceiptTemplateFile)
	if err != nil {
		return err
	}
	return mergeReceipts(e, dir, out, tmpl.Title)
}

func mergeReceipts(e *env, dir, out, title string) error {
	result, err := receipt.Merge(dir, out, title)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "merged %d receipts into %s (%d skipped)\n", result.Merged, out, result.Skipped)
	return nil
}

func runSessions(ctx context.Context, e *env, args []string) error {
	var del string
	flagSet := pflag.NewFlagSet("sessions", pflag.ContinueOnError)
	flagSet.StringVar(&del, "delete", "", "delete the named session")
	if ok, err := parseFlags(flagSet, "sessions [--delete NAME]", args); !ok {
		return err
	}

	if del != "" {
		if err := e.repo.DeleteProgress(ctx, del); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "deleted %q\n", del)
		return nil
	}

	sessions, err := e.repo.ListProgress(ctx)
	if err != nil {
		return err
	}
	printSessions(e.out, sessions)
	return nil
}

func printSessions(w io.Writer, sessions []storage.SessionInfo) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "no saved sessions")
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%-20s %5d rows  %s\n", s.Name, s.Rows, s.SavedAt.Local().Format("2006-01-02 15:04"))
	}
}

func printSummary(w io.Writer, s core.Summary) {
	for _, d := range s.ByDepartment {
		fmt.Fprintf(w, "%-24s %3d  %12s\n", d.Department, d.Records, d.Amount)
	}
	fmt.Fprintf(w, "%-24s %3d  %12s\n", "total", s.Records, s.Total)
}
