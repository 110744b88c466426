// feeledger edits monthly per-department fee tables in the terminal,
// keeps named sessions in SQLite, exports them to a spreadsheet and
// renders one payment receipt per fee.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"feeledger/internal/cli"
	"feeledger/internal/config"
	"feeledger/internal/log"
	"feeledger/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every subcommand shares.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	repo   *storage.SQLiteRepository
	out    io.Writer
}

type command struct {
	name    string
	summary string
	// interactive commands log to the log file instead of stdout
	interactive bool
	run         func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{name: "edit", summary: "open a session in the table editor", interactive: true, run: runEdit},
	{name: "import", summary: "import rows from the spreadsheet into a session", run: runImport},
	{name: "export", summary: "write a session to the spreadsheet", run: runExport},
	{name: "receipts", summary: "render one receipt per fee in a session", run: runReceipts},
	{name: "merge", summary: "merge rendered receipts into one document", run: runMerge},
	{name: "sessions", summary: "list or delete saved sessions", run: runSessions},
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(os.Stderr)
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := cli.SetupLogger(cfg, log.ComponentApp, cmd.interactive)
	if err != nil {
		return err
	}
	defer closer.Close()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open progress database: %w", err)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = log.WithContext(ctx, logger)
	logger.Debug("Running command", "command", cmd.name)
	return cmd.run(ctx, &env{cfg: cfg, logger: logger, repo: repo, out: os.Stdout}, args[1:])
}

// parseFlags parses args into flagSet, turning -h into a nil, handled
// result. It reports whether the command should continue.
func parseFlags(flagSet *pflag.FlagSet, usage string, args []string) (bool, error) {
	flagSet.BoolP("help", "h", false, "show help")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printCommandHelp(flagSet, usage)
			return false, nil
		}
		return false, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printCommandHelp(flagSet, usage)
		return false, nil
	}
	return true, nil
}

func printCommandHelp(flagSet *pflag.FlagSet, usage string) {
	fmt.Fprintf(os.Stderr, "Usage:\n  feeledger %s\n\nFlags:\n", usage)
	flagSet.PrintDefaults()
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `feeledger keeps monthly department fee tables and renders their receipts.

Configuration is read from the environment and an optional .env file
(SQLITE_DB_PATH, EXPORT_BACKEND, SPREADSHEET_FILE, GOOGLE_SPREADSHEET_ID,
AMQP_URL, ...).

Usage:
  feeledger <command> [flags]

Commands:
`)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, `
Examples:
  # Edit the May session, starting empty if it was never saved
  feeledger edit --session 2024-05

  # Queue an export for the worker instead of writing the sheet directly
  feeledger export --session 2024-05 --async

  # Render receipts and merge them into one printable file
  feeledger receipts --session 2024-05 --merge
`)
}
