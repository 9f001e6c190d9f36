// Package main provides the CLI entrypoint for blindcode.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/blindcode/internal/catalog"
	"github.com/verte-zerg/blindcode/internal/config"
	"github.com/verte-zerg/blindcode/internal/judge"
	"github.com/verte-zerg/blindcode/internal/kiosk"
	"github.com/verte-zerg/blindcode/internal/logging"
	"github.com/verte-zerg/blindcode/internal/model"
	"github.com/verte-zerg/blindcode/internal/results"
	"github.com/verte-zerg/blindcode/internal/session"
	"github.com/verte-zerg/blindcode/internal/store"
	"github.com/verte-zerg/blindcode/internal/tui"
)

const (
	defaultLanguage      = string(model.LanguagePython)
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
	terminalWidthBackup  = 80
	minCardTitleWidth    = 16
	cardFixedColumnWidth = 40
)

var (
	rootDB           string
	rootLanguage     string
	rootJudgeURL     string
	rootMaxWait      time.Duration
	rootPollInterval time.Duration
	rootChallenges   string

	resultsOut   string
	resultsColor bool
)

// settings is the resolved configuration: defaults, then config file, then flags.
type settings struct {
	DBPath            string
	Language          string
	JudgeURL          string
	JudgeHost         string
	PollInterval      time.Duration
	MaxWait           time.Duration
	RequestTimeout    time.Duration
	Passcode          string
	UnlockMaxAttempts int
	Challenges        string
	LogLevel          string
	LogFormat         string
	LogPath           string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blindcode",
		Short:         "Timed blind coding challenge kiosk",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runKioskCmd,
	}

	rootCmd.PersistentFlags().StringVar(&rootDB, "db", config.DefaultDBPath(), "path to the SQLite database")
	rootCmd.PersistentFlags().StringVar(&rootChallenges, "challenges", "", "path to a TOML challenge catalog")
	rootCmd.Flags().StringVar(&rootLanguage, "language", defaultLanguage, "submission language")
	rootCmd.Flags().StringVar(&rootJudgeURL, "judge-url", judge.DefaultBaseURL, "Judge0 base URL")
	rootCmd.Flags().DurationVar(&rootMaxWait, "max-wait", judge.DefaultMaxWait, "maximum time to wait for one execution")
	rootCmd.Flags().DurationVar(&rootPollInterval, "poll-interval", judge.DefaultPollInterval, "delay between result polls")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newChallengesCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runKioskCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := validateSettings(cfg); err != nil {
		return err
	}
	if err := config.LoadEnv(".env", config.DefaultEnvPath()); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Path: cfg.LogPath})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer closeLog()

	cat, err := loadCatalog(cfg.Challenges)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	apiKey := config.APIKey()
	if apiKey == "" {
		logErrf("warning: %s is not set; submissions will fail until it is configured\n", config.APIKeyEnv)
	}
	client := judge.New(judge.Config{
		BaseURL:        cfg.JudgeURL,
		Host:           cfg.JudgeHost,
		APIKey:         apiKey,
		PollInterval:   cfg.PollInterval,
		MaxWait:        cfg.MaxWait,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger.Named("judge"),
	})
	svc := kiosk.New(cat, client, st, kiosk.Options{
		Language: model.Language(cfg.Language),
		Logger:   logger.Named("kiosk"),
	})
	if _, err := svc.Resume(context.Background()); err != nil && !errors.Is(err, kiosk.ErrNotRegistered) {
		return err
	}

	logger.Info("kiosk starting",
		zap.String("judge_url", cfg.JudgeURL),
		zap.Int("challenges", cat.Count()),
		zap.Duration("max_wait", cfg.MaxWait),
	)
	m := tui.NewModel(svc, tui.Options{
		Passcode:          cfg.Passcode,
		MaxUnlockAttempts: cfg.UnlockMaxAttempts,
		Logger:            logger.Named("tui"),
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "language", &rootLanguage, fileCfg.Judge.Language)
	applyStringConfig(cmd, "judge-url", &rootJudgeURL, fileCfg.Judge.URL)
	applyDurationConfig(cmd, "max-wait", &rootMaxWait, fileCfg.Judge.MaxWait)
	applyDurationConfig(cmd, "poll-interval", &rootPollInterval, fileCfg.Judge.PollInterval)
	applyStringConfig(cmd, "challenges", &rootChallenges, fileCfg.Kiosk.Challenges)

	cfg := settings{
		DBPath:         rootDB,
		Language:       rootLanguage,
		JudgeURL:       rootJudgeURL,
		PollInterval:   rootPollInterval,
		MaxWait:        rootMaxWait,
		RequestTimeout: judge.DefaultRequestTimeout,
		Passcode:       session.DefaultPasscode,
		Challenges:     rootChallenges,
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		LogPath:        config.DefaultLogPath(),
	}
	setString(&cfg.JudgeHost, fileCfg.Judge.Host)
	if fileCfg.Judge.RequestTimeout != nil {
		cfg.RequestTimeout = fileCfg.Judge.RequestTimeout.Duration
	}
	setString(&cfg.Passcode, fileCfg.Kiosk.Passcode)
	if fileCfg.Kiosk.UnlockMaxAttempts != nil {
		cfg.UnlockMaxAttempts = *fileCfg.Kiosk.UnlockMaxAttempts
	}
	setString(&cfg.LogLevel, fileCfg.Log.Level)
	setString(&cfg.LogFormat, fileCfg.Log.Format)
	setString(&cfg.LogPath, fileCfg.Log.Path)
	return cfg, nil
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

func newChallengesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "challenges",
		Short: "List challenges",
		Args:  cobra.NoArgs,
		RunE:  runChallengesCmd,
	}
}

func runChallengesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg.Challenges)
	if err != nil {
		return err
	}
	return writeChallenges(cmd.OutOrStdout(), cat)
}

func writeChallenges(w io.Writer, cat *catalog.Catalog) error {
	for i, ch := range cat.All() {
		line := fmt.Sprintf("%2d. %s (%02d:%02d)", i+1, ch.Title, ch.TimerSeconds/60, ch.TimerSeconds%60)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Print the results card",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
	cmd.Flags().StringVar(&resultsOut, "out", "", "write the card to a file")
	cmd.Flags().BoolVar(&resultsColor, "color", false, "force colored output")
	return cmd
}

func runResultsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg.Challenges)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	reg, ok, err := st.LoadRegistration(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registration: %w", err)
	}
	if !ok {
		logErrln("No participant registered. Start the kiosk with: blindcode")
		return kiosk.ErrNotRegistered
	}
	ledger, err := st.LoadResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	if resultsOut != "" {
		card := results.FormatCard(reg, ledger, cat.Count(), results.CardOptions{})
		if err := results.WriteCard(resultsOut, card); err != nil {
			return err
		}
		logErrf("Results card written to %s\n", resultsOut)
		return nil
	}

	out := cmd.OutOrStdout()
	opts := results.CardOptions{
		Color:         shouldUseColor(out, resultsColor),
		MaxTitleWidth: max(minCardTitleWidth, terminalWidth()-cardFixedColumnWidth),
	}
	if _, err := fmt.Fprintln(out, results.FormatCard(reg, ledger, cat.Count(), opts)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the registration, progress and results",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Path: cfg.LogPath})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer closeLog()

	cat, err := loadCatalog(cfg.Challenges)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	svc := kiosk.New(cat, judge.New(judge.Config{Logger: logger}), st, kiosk.Options{Logger: logger.Named("kiosk")})
	if err := svc.Reset(context.Background()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Kiosk state cleared."); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenges: %w", err)
	}
	return cat, nil
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

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func setString(target, value *string) {
	if value == nil {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# blindcode configuration
# Uncomment a value to enable it. CLI flags override config values.
# The judge credential is read from %s (environment or .env file).

[judge]
# url = %q
# host = ""                   # RapidAPI host header (default: host of url)
# language = %q
# poll-interval = %q
# max-wait = %q
# request-timeout = %q

[kiosk]
# passcode = %q
# unlock-max-attempts = 0     # 0 = unlimited
# challenges = ""             # Path to a TOML challenge catalog

[log]
# level = %q
# format = %q
# path = %q
`,
		config.APIKeyEnv,
		judge.DefaultBaseURL,
		defaultLanguage,
		judge.DefaultPollInterval.String(),
		judge.DefaultMaxWait.String(),
		judge.DefaultRequestTimeout.String(),
		session.DefaultPasscode,
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultLogPath(),
	)
}

func validateSettings(cfg settings) error {
	if _, ok := catalog.LanguageID(model.Language(cfg.Language)); !ok {
		return fmt.Errorf("--language %q is not supported", cfg.Language)
	}
	if strings.TrimSpace(cfg.JudgeURL) == "" {
		return fmt.Errorf("--judge-url must not be empty")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("--poll-interval must be > 0")
	}
	if cfg.MaxWait <= 0 {
		return fmt.Errorf("--max-wait must be > 0")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request-timeout must be > 0")
	}
	if len(cfg.Passcode) != session.PasscodeLength || session.SanitizePasscode(cfg.Passcode) != cfg.Passcode {
		return fmt.Errorf("passcode must be exactly %d digits", session.PasscodeLength)
	}
	if cfg.UnlockMaxAttempts < 0 {
		return fmt.Errorf("unlock-max-attempts must be >= 0")
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
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
