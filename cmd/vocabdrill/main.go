// Package main provides the CLI entrypoint for vocabdrill.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/vocabdrill/internal/catalog"
	"github.com/verte-zerg/vocabdrill/internal/config"
	"github.com/verte-zerg/vocabdrill/internal/ledger"
	"github.com/verte-zerg/vocabdrill/internal/logging"
	"github.com/verte-zerg/vocabdrill/internal/model"
	"github.com/verte-zerg/vocabdrill/internal/round"
	"github.com/verte-zerg/vocabdrill/internal/stats"
	"github.com/verte-zerg/vocabdrill/internal/statsui"
	"github.com/verte-zerg/vocabdrill/internal/store"
	"github.com/verte-zerg/vocabdrill/internal/tui"
)

const (
	defaultWords       = 20
	defaultFilter      = "all"
	defaultCurveWindow = 5
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	dotenvFile         = ".env"
)

var (
	practiceFile   string
	practiceWords  int
	practiceFilter string

	dbPath    string
	logLevel  string
	logFormat string

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTUI         bool

	wordsLetter string
	wordsSearch string
	wordsExport string

	resetYes     bool
	resetHistory bool
)

// settings is the resolved configuration of one command run.
type settings struct {
	practice model.Config
	dbPath   string
	log      logging.Options
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vocabdrill",
		Short:         "TUI vocabulary drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&practiceFile, "file", config.DefaultWordsPath(), "tab-separated word file with word and meaning columns")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "progress database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "questions per round")
	rootCmd.Flags().StringVar(&practiceFilter, "filter", defaultFilter, "word filter: all, random or a letter A-Z")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newAbandonCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// loadSettings merges defaults, the config file, the environment and flags,
// in increasing priority.
func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv(dotenvFile)
	if err != nil {
		return settings{}, err
	}

	applyStringConfig(cmd, "file", &practiceFile, fileCfg.Practice.File)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyStringConfig(cmd, "filter", &practiceFilter, fileCfg.Practice.Filter)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)

	applyStringEnv(cmd, "file", &practiceFile, envCfg.File)
	applyIntEnv(cmd, "words", &practiceWords, envCfg.Words)
	applyStringEnv(cmd, "filter", &practiceFilter, envCfg.Filter)
	applyStringEnv(cmd, "db", &dbPath, envCfg.DB)
	applyStringEnv(cmd, "log-level", &logLevel, envCfg.LogLevel)
	applyStringEnv(cmd, "log-format", &logFormat, envCfg.LogFormat)

	filter, err := model.ParseFilter(practiceFilter)
	if err != nil {
		return settings{}, fmt.Errorf("--filter: %w", err)
	}
	s := settings{
		practice: model.Config{
			WordsFile: practiceFile,
			Words:     practiceWords,
			Filter:    filter,
		},
		dbPath: dbPath,
		log:    logging.Options{Level: logLevel, Format: logFormat},
	}
	if err := validateSettings(s); err != nil {
		return settings{}, err
	}
	return s, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := logging.OpenFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()
	log := logging.New(s.log, logFile)

	words, err := catalog.Load(s.practice.WordsFile)
	if err != nil {
		return wordsLoadError(s.practice.WordsFile, err)
	}

	ctx := context.Background()
	st, err := store.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	engine, err := round.New(ctx, st, round.Options{History: st, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	m, err := tui.NewModel(engine, words, s.practice, log)
	if errors.Is(err, round.ErrEmptyPool) {
		logErrf("No eligible words in %s for filter %s.\n", s.practice.WordsFile, s.practice.Filter)
		logErrln("Every matching word is mastered or ignored. Try another --filter or run: vocabdrill reset")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to start round: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress and round history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "round mode filter (normal, drill)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsTUI, "tui", false, "browse stats interactively")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log := logging.New(s.log, os.Stderr)

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	switch statsMode {
	case "", model.ModeNormal, model.ModeDrill:
	default:
		return fmt.Errorf("--mode must be %q or %q", model.ModeNormal, model.ModeDrill)
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	cfg := model.StatsConfig{
		Mode:        statsMode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	ctx := context.Background()
	st, err := store.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	engine, err := round.New(ctx, st, round.Options{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	words, err := catalog.Load(s.practice.WordsFile)
	if err != nil {
		log.Warn("word file unavailable, mastery percentage omitted", "path", s.practice.WordsFile, "error", err)
	}
	cumulative := engine.Cumulative(len(words))

	if statsTUI {
		program := tea.NewProgram(statsui.NewModel(st, cfg, cumulative, words, engine), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats UI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(ctx, st, cfg, cumulative)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), stats.TerminalWidth())
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "List or export the word file",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
	cmd.Flags().StringVar(&wordsLetter, "letter", "", "only words starting with this letter")
	cmd.Flags().StringVar(&wordsSearch, "search", "", "only words starting with this prefix")
	cmd.Flags().StringVar(&wordsExport, "export", "", "write the selection to a .csv, .tsv or .xlsx file (or a directory)")
	return cmd
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log := logging.New(s.log, os.Stderr)

	var letter rune
	if wordsLetter != "" {
		f, err := model.ParseFilter(wordsLetter)
		if err != nil || f.Kind != model.FilterLetter {
			return fmt.Errorf("--letter must be a single letter A-Z")
		}
		letter = f.Letter
	}

	words, err := catalog.Load(s.practice.WordsFile)
	if err != nil {
		return wordsLoadError(s.practice.WordsFile, err)
	}
	selection := catalog.View(words, letter, wordsSearch)

	if wordsExport != "" {
		path := wordsExport
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, catalog.ExportName(letter, wordsSearch, string(catalog.FormatCSV)))
		}
		if err := catalog.ExportFile(path, selection); err != nil {
			if errors.Is(err, catalog.ErrNothingToExport) {
				return fmt.Errorf("no words match the selection")
			}
			return fmt.Errorf("failed to export: %w", err)
		}
		logErrf("Exported %d words to %s\n", len(selection), path)
		return nil
	}

	ctx := context.Background()
	st, err := store.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)
	marks, err := ledger.Load(ctx, st, log)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	return stats.RenderWords(cmd.OutOrStdout(), catalog.Annotate(selection, marks), stats.TerminalWidth())
}

func newAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Discard the saved round",
		Args:  cobra.NoArgs,
		RunE:  runAbandonCmd,
	}
}

func runAbandonCmd(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(ctx context.Context, engine *round.Engine, _ *store.Store) error {
		phase := engine.Phase()
		if err := engine.Abandon(ctx); err != nil {
			return err
		}
		if phase == round.Idle {
			logErrln("No round in progress.")
			return nil
		}
		logErrln("Round abandoned.")
		return nil
	})
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear mastered and ignored words, counters and the saved round",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&resetHistory, "history", false, "also delete the round history")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		ok, err := confirm(cmd.InOrStdin(), "Reset all progress? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Aborted.")
			return nil
		}
	}
	return withEngine(cmd, func(ctx context.Context, engine *round.Engine, st *store.Store) error {
		if err := engine.ResetAll(ctx); err != nil {
			return err
		}
		if resetHistory {
			if err := st.ClearRounds(ctx); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
		}
		logErrln("Progress reset.")
		return nil
	})
}

func withEngine(cmd *cobra.Command, fn func(ctx context.Context, engine *round.Engine, st *store.Store) error) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log := logging.New(s.log, os.Stderr)

	ctx := context.Background()
	st, err := store.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)
	engine, err := round.New(ctx, st, round.Options{History: st, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	return fn(ctx, engine, st)
}

func confirm(in io.Reader, prompt string) (bool, error) {
	logErrf("%s", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		slog.Warn("failed to close db", "error", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringEnv(cmd *cobra.Command, name string, target *string, value string) {
	if value == "" {
		return
	}
	applyStringConfig(cmd, name, target, &value)
}

func applyIntEnv(cmd *cobra.Command, name string, target *int, value int) {
	if value == 0 {
		return
	}
	applyIntConfig(cmd, name, target, &value)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# vocabdrill configuration
# Uncomment a value to enable it. Environment variables (VOCABDRILL_*)
# override config values and CLI flags override both.

[practice]
# file = %q   # Tab-separated word file (word, meaning columns)
# words = %d              # Questions per round
# filter = %q          # all, random or a single letter A-Z

[log]
# level = %q           # debug, info, warn, error
# format = %q          # text or json
`,
		config.DefaultWordsPath(),
		defaultWords,
		defaultFilter,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func validateSettings(s settings) error {
	if s.practice.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if strings.TrimSpace(s.practice.WordsFile) == "" {
		return fmt.Errorf("--file must not be empty")
	}
	if strings.TrimSpace(s.dbPath) == "" {
		return fmt.Errorf("--db must not be empty")
	}
	return s.log.Validate()
}

func wordsLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word file: %v", err),
		fmt.Sprintf("expected word file at: %s", path),
	}
	if errors.Is(err, catalog.ErrSourceMalformed) {
		lines = append(lines, "The first line must be a tab-separated header with word and meaning columns.")
	} else {
		lines = append(lines, "Pass --file, set VOCABDRILL_FILE or add file to [practice] in: vocabdrill config")
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
