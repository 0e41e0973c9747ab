package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nconklindev/rentport/internal/config"
	"github.com/nconklindev/rentport/internal/converter"
	"github.com/nconklindev/rentport/internal/types"
	"github.com/nconklindev/rentport/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK            = 0
	exitNoRecords     = 1
	exitInvalidConfig = 2
)

// interactiveLogFile receives logs while the terminal UI owns the screen.
const interactiveLogFile = "rentport.log"

const (
	defaultWidth = 80
	// summaryMargin leaves room for the labels in front of a path.
	summaryMargin = 10
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	code := exitOK
	cmd := newRootCmd(stdout, stderr, &code)
	if args == nil {
		// cobra falls back to os.Args on a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalidConfig
	}
	return code
}

// newRootCmd builds the command line. Errors returned from it are
// configuration errors; the conversion outcome is reported through code.
func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	cfg := config.Defaults()
	cmd := &cobra.Command{
		Use:   "rentport",
		Short: "Convert property and lease spreadsheets into import CSV files",
		Long: "rentport reads property lists and lease summaries exported as Excel, HTML or CSV\n" +
			"and writes properties, leases and lease-to-property match CSV files.",
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Resolve(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if cfg.Interactive {
				*code = runInteractive(cfg, stderr)
			} else {
				*code = runBatch(cfg, stdout, stderr)
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("rentport {{.Version}}\n")
	config.BindFlags(cmd.Flags(), &cfg)
	return cmd
}

func runBatch(cfg config.Config, stdout, stderr io.Writer) int {
	logger := newLogger(stderr, cfg.Verbose, true)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("configuration")
		return exitInvalidConfig
	}

	result, err := converter.New(converter.OptionsFromConfig(cfg), logger).Run(nil)
	if err != nil {
		logger.Error().Err(err).Msg("conversion failed")
		return exitNoRecords
	}

	fmt.Fprintln(stdout, ui.RenderSummary(result, termWidth(stdout)-summaryMargin))
	return exitCode(result)
}

func runInteractive(cfg config.Config, stderr io.Writer) int {
	if err := cfg.ValidateSettings(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalidConfig
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(stderr, "Error: interactive mode needs a terminal; pass --properties or --leases instead")
		return exitInvalidConfig
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalidConfig
	}
	logPath := filepath.Join(cfg.OutputDir, interactiveLogFile)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalidConfig
	}
	defer logFile.Close()

	logger := newLogger(logFile, cfg.Verbose, false)

	p := tea.NewProgram(ui.NewModel(cfg, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitNoRecords
	}

	m, ok := final.(ui.Model)
	if !ok || m.Result() == nil {
		return exitOK
	}
	return exitCode(m.Result())
}

// newLogger writes human-readable lines to a terminal and JSON lines to a
// log file.
func newLogger(w io.Writer, verbose, console bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := w
	if console {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// termWidth reports the width of w when it is a terminal.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= summaryMargin {
		return defaultWidth
	}
	return width
}

func exitCode(result *types.ConversionResult) int {
	if result.Empty() {
		return exitNoRecords
	}
	return exitOK
}
