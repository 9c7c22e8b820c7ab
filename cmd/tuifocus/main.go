// Package main provides the CLI entrypoint for tuifocus.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuifocus/internal/audio"
	"github.com/verte-zerg/tuifocus/internal/config"
	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
	"github.com/verte-zerg/tuifocus/internal/notify"
	"github.com/verte-zerg/tuifocus/internal/session"
	"github.com/verte-zerg/tuifocus/internal/stats"
	"github.com/verte-zerg/tuifocus/internal/statsui"
	"github.com/verte-zerg/tuifocus/internal/store"
	"github.com/verte-zerg/tuifocus/internal/tui"
)

const (
	defaultLogLevel    = "warn"
	defaultStatsPeriod = "week"
	defaultExportFmt   = "csv,json"
)

var (
	configPath   string
	eventLogPath string
	debugLogPath string
	logLevel     string

	timerMinutes      float64
	timerPlain        bool
	timerTick         time.Duration
	timerMusic        bool
	timerNotify       bool
	timerAutoBreak    bool
	timerAutoWork     bool
	timerLongInterval int

	statsPeriod string
	statsTUI    bool
	statsExport string
	statsFormat string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuifocus",
		Short:         "Pomodoro focus timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTimerCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file (.toml, or legacy .yml)")
	rootCmd.PersistentFlags().StringVar(&eventLogPath, "log", "", "session event log (default from config, then XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&debugLogPath, "log-file", "", "write diagnostics to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "diagnostics level (trace, debug, info, warn, error)")
	addTimerFlags(rootCmd)

	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newQuickCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addTimerFlags(cmd *cobra.Command) {
	defaults := model.DefaultSettings()
	cmd.Flags().Float64Var(&timerMinutes, "minutes", 0, "session length in minutes (default from config)")
	cmd.Flags().BoolVar(&timerPlain, "plain", false, "print a countdown instead of the TUI")
	cmd.Flags().DurationVar(&timerTick, "tick-interval", time.Second, "wall-clock length of one timer second")
	cmd.Flags().BoolVar(&timerMusic, "music", defaults.MusicEnabled, "play background music during work sessions")
	cmd.Flags().BoolVar(&timerNotify, "notify", defaults.NotifyEnabled, "announce session milestones")
	cmd.Flags().BoolVar(&timerAutoBreak, "auto-start-break", defaults.AutoStartBreak, "start the break automatically after work")
	cmd.Flags().BoolVar(&timerAutoWork, "auto-start-work", defaults.AutoStartWork, "start work automatically after a break")
	cmd.Flags().IntVar(&timerLongInterval, "long-break-interval", defaults.LongBreakInterval, "work sessions before a long break")
	if err := cmd.Flags().MarkHidden("tick-interval"); err != nil {
		logErrf("failed to hide flag: %v\n", err)
	}
}

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [work|short|long|custom]",
		Short: "Start a session",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTimerCmd,
	}
	addTimerFlags(cmd)
	return cmd
}

func runTimerCmd(cmd *cobra.Command, args []string) error {
	sessionType := model.SessionWork
	if len(args) == 1 {
		parsed, err := model.ParseSessionType(args[0])
		if err != nil {
			return err
		}
		sessionType = parsed
	}
	if timerMinutes < 0 {
		return fmt.Errorf("--minutes must be >= 0")
	}
	if timerTick <= 0 {
		return fmt.Errorf("--tick-interval must be > 0")
	}

	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "music", &timerMusic, fileCfg.Music.Enabled)
	applyBoolConfig(cmd, "notify", &timerNotify, fileCfg.Notify.Enabled)
	applyBoolConfig(cmd, "auto-start-break", &timerAutoBreak, fileCfg.Behavior.AutoStartBreak)
	applyBoolConfig(cmd, "auto-start-work", &timerAutoWork, fileCfg.Behavior.AutoStartWork)
	applyIntConfig(cmd, "long-break-interval", &timerLongInterval, fileCfg.Timer.LongBreakInterval)

	settings := resolveSettings(fileCfg)
	settings.MusicEnabled = timerMusic
	settings.NotifyEnabled = timerNotify
	settings.AutoStartBreak = timerAutoBreak
	settings.AutoStartWork = timerAutoWork
	settings.LongBreakInterval = timerLongInterval
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	plain := timerPlain || !isTerminal(os.Stdout)
	logger, closeLog, err := newLogger(!plain)
	if err != nil {
		return err
	}
	defer closeLog()

	if plain {
		return runPlain(cmd.Context(), cmd.OutOrStdout(), settings, logger, sessionType, timerMinutes)
	}
	return runTUI(settings, logger, sessionType, timerMinutes)
}

// resolveSettings overlays the config file and the --log flag on the
// defaults.
func resolveSettings(fileCfg config.FileConfig) model.Settings {
	settings := fileCfg.Settings()
	if eventLogPath != "" {
		settings.LogPath = eventLogPath
	}
	if settings.LogPath == "" {
		settings.LogPath = config.DefaultLogPath()
	}
	return settings
}

func newEngine(settings model.Settings, logger hclog.Logger, sinks ...notify.Sink) (*session.Engine, error) {
	options := session.Options{
		Settings:     settings,
		Events:       eventlog.NewWriter(settings.LogPath),
		Logger:       logger.Named("session"),
		TickInterval: timerTick,
	}
	if settings.MusicEnabled {
		options.Audio = audio.FromSettings(settings, logger.Named("audio"))
	}
	if settings.NotifyEnabled {
		options.Notifier = notify.New(logger.Named("notify"), sinks...)
	}
	return session.New(options)
}

func desktopSink(settings model.Settings) notify.Sink {
	if !settings.DesktopNotify {
		return nil
	}
	return notify.NewDesktop(notify.DesktopOptions{Duration: settings.NotifyDuration})
}

func runTUI(settings model.Settings, logger hclog.Logger, sessionType model.SessionType, minutes float64) error {
	bridge := tui.NewBridge()
	engine, err := newEngine(settings, logger, notify.Multi{bridge, desktopSink(settings)})
	if err != nil {
		return err
	}
	engine.AddListener(bridge)

	m := tui.NewModel(engine, settings, sessionType, minutes)
	program := tea.NewProgram(m, tea.WithAltScreen())
	bridge.Attach(program)
	_, runErr := program.Run()
	if err := engine.Close(); err != nil {
		logger.Warn("failed to stop session", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

// runPlain drives the engine without a TUI. It returns once a completed
// session has no automatic follow-up, or on interrupt.
func runPlain(ctx context.Context, out io.Writer, settings model.Settings, logger hclog.Logger, sessionType model.SessionType, minutes float64) error {
	engine, err := newEngine(settings, logger, desktopSink(settings), notify.NewConsole(out))
	if err != nil {
		return err
	}
	countdown := isTerminal(os.Stdout)
	suggestions := make(chan session.Decision, 1)
	engine.AddListener(session.ListenerFuncs{
		Tick: func(elapsed, total int) {
			if countdown {
				fmt.Fprintf(out, "\r%s ", session.FormatRemaining(total-elapsed))
			}
		},
		Suggest: func(d session.Decision) {
			select {
			case suggestions <- d:
			default:
			}
		},
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(sessionType, minutes); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			if countdown {
				fmt.Fprintln(out)
			}
			logErrln("Interrupted, session stopped.")
			return engine.Close()
		case d := <-suggestions:
			if countdown {
				fmt.Fprintln(out)
			}
			next := fmt.Sprintf("Next: %s (%s min)", d.Next.Label(), eventlog.FormatMinutes(d.Minutes))
			if !d.AutoStart {
				fmt.Fprintf(out, "%s. Run: tuifocus start %s\n", next, startArg(d.Next))
				return engine.Close()
			}
			fmt.Fprintf(out, "%s, starting in %s\n", next, d.Delay)
		}
	}
}

func startArg(t model.SessionType) string {
	switch t {
	case model.SessionShortBreak:
		return "short"
	case model.SessionLongBreak:
		return "long"
	default:
		return string(t)
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the productivity dashboard",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsPeriod, "period", defaultStatsPeriod, "day, week, month, year or all")
	cmd.Flags().BoolVar(&statsTUI, "tui", false, "browse stats interactively")
	cmd.Flags().StringVar(&statsExport, "export", "", "export to this directory instead of printing")
	cmd.Flags().StringVar(&statsFormat, "format", defaultExportFmt, "export formats: csv, json, sqlite")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	period, err := model.ParsePeriod(statsPeriod)
	if err != nil {
		return err
	}
	analyzer, err := loadAnalyzer(cmd.Context())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("export") {
		return exportStats(cmd.Context(), cmd.OutOrStdout(), analyzer, period)
	}
	if statsTUI {
		if !isTerminal(os.Stdout) {
			return fmt.Errorf("--tui needs a terminal")
		}
		program := tea.NewProgram(statsui.NewModel(analyzer, period), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}
	return stats.RenderDashboard(cmd.OutOrStdout(), analyzer.BuildDashboard(period))
}

func loadAnalyzer(ctx context.Context) (*stats.Analyzer, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	settings := resolveSettings(fileCfg)
	analyzer := stats.NewAnalyzer(settings.LogPath, stats.AnalyzerOptions{})
	if err := analyzer.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return analyzer, nil
}

func exportStats(ctx context.Context, out io.Writer, analyzer *stats.Analyzer, period model.Period) error {
	dir := statsExport
	if dir == "" {
		dir = config.DefaultExportDir()
	}
	formats, err := parseFormats(statsFormat)
	if err != nil {
		return err
	}
	stamp := time.Now().Format(stats.ExportStamp)
	records := analyzer.FilterByPeriod(period)
	d := analyzer.BuildDashboard(period)

	var written []string
	for _, format := range formats {
		switch format {
		case "csv":
			paths, err := stats.ExportCSV(dir, records, d, stamp)
			if err != nil {
				return fmt.Errorf("failed to export csv: %w", err)
			}
			written = append(written, paths...)
		case "json":
			path, err := stats.ExportJSON(dir, d, stamp)
			if err != nil {
				return fmt.Errorf("failed to export json: %w", err)
			}
			written = append(written, path)
		case "sqlite":
			path, summary, err := exportSQLite(ctx, dir, records, stamp)
			if err != nil {
				return fmt.Errorf("failed to export sqlite: %w", err)
			}
			written = append(written, path+" "+summary)
		}
	}
	for _, path := range written {
		if _, err := fmt.Fprintf(out, "Exported %s\n", path); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func parseFormats(raw string) ([]string, error) {
	var formats []string
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || seen[part] {
			continue
		}
		switch part {
		case "csv", "json", "sqlite":
		default:
			return nil, fmt.Errorf("unknown export format %q (use csv, json or sqlite)", part)
		}
		seen[part] = true
		formats = append(formats, part)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("--format must not be empty")
	}
	return formats, nil
}

// exportSQLite snapshots records into a fresh database and describes what
// it holds.
func exportSQLite(ctx context.Context, dir string, records []model.EventRecord, stamp string) (path, summary string, err error) {
	path = filepath.Join(dir, "focus_"+stamp+".db")
	st, err := store.Open(path)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := st.ReplaceEvents(ctx, records); err != nil {
		return "", "", err
	}
	count, err := st.CountEvents(ctx)
	if err != nil {
		return "", "", err
	}
	days, err := st.ListDaily(ctx, time.Local)
	if err != nil {
		return "", "", err
	}
	return path, fmt.Sprintf("(%d events, %d days)", count, len(days)), nil
}

func newQuickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quick",
		Short: "Print a one-line summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, err := loadAnalyzer(cmd.Context())
			if err != nil {
				return err
			}
			return stats.RenderQuick(cmd.OutOrStdout(), analyzer.QuickStats())
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().Bool("print", false, "print the config template instead of opening an editor")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
		_, err := fmt.Fprint(cmd.OutOrStdout(), defaultConfigTemplate())
		return err
	}
	path := configPath
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
	c := exec.Command(parts[0], append(parts[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// newLogger builds the diagnostics logger. Interactive sessions discard
// diagnostics unless --log-file is set so the TUI stays intact.
func newLogger(interactive bool) (hclog.Logger, func(), error) {
	level := hclog.LevelFromString(logLevel)
	if level == hclog.NoLevel {
		return nil, nil, fmt.Errorf("invalid --log-level %q", logLevel)
	}
	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case debugLogPath != "":
		f, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() {
			if err := f.Close(); err != nil {
				logErrf("failed to close log file: %v\n", err)
			}
		}
	case interactive:
		out = io.Discard
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "tuifocus",
		Level:  level,
		Output: out,
	})
	return logger, closeFn, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	d := model.DefaultSettings()
	return fmt.Sprintf(`# tuifocus configuration
# Uncomment a value to enable it. CLI flags override config values.

[timer]
# work-mins = %s              # Work session length
# short-break-mins = %s        # Short break length
# long-break-mins = %s        # Long break length
# custom-mins = %s            # Custom session length
# long-break-interval = %d     # Work sessions before a long break
# early-warning-mins = %s      # Warn this many minutes before the end (0 disables)

[behavior]
# auto-start-break = %t     # Start the break after a work session
# auto-start-work = %t     # Start work after a break
# auto-start-delay = %s       # Seconds to wait before an automatic start

[music]
# enabled = %t              # Play music during work sessions
# stop-on-complete = %t     # Stop music when a work session completes
# player = %q              # Player executable
# playlist = ""             # File, directory or URL passed to the player
# playlist-dir = ""         # First *.m3u* file here is used when playlist is unset
# online-playlists = %s
# volume = %d               # 0-100
# extra-args = ""           # Extra player arguments

[notify]
# enabled = %t              # Announce session milestones
# desktop = %t              # Use notify-send / osascript when available
# duration = %d               # Seconds a desktop notification stays visible

[log]
# path = %q
`,
		eventlog.FormatMinutes(d.WorkMinutes),
		eventlog.FormatMinutes(d.ShortBreakMinutes),
		eventlog.FormatMinutes(d.LongBreakMinutes),
		eventlog.FormatMinutes(d.CustomMinutes),
		d.LongBreakInterval,
		eventlog.FormatMinutes(d.EarlyWarnMinutes),
		d.AutoStartBreak,
		d.AutoStartWork,
		eventlog.FormatMinutes(d.AutoStartDelay.Seconds()),
		d.MusicEnabled,
		d.StopMusicOnComplete,
		d.MusicPlayer,
		tomlStrings(d.MusicOnline),
		d.MusicVolume,
		d.NotifyEnabled,
		d.DesktopNotify,
		int(d.NotifyDuration/time.Second),
		config.DefaultLogPath(),
	)
}

func tomlStrings(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
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
