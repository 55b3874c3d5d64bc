// Package main provides the CLI entrypoint for chainpick.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/chainpick/internal/config"
	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/engine"
	"github.com/verte-zerg/chainpick/internal/ipc"
	"github.com/verte-zerg/chainpick/internal/lexicon"
	"github.com/verte-zerg/chainpick/internal/logger"
	"github.com/verte-zerg/chainpick/internal/model"
	"github.com/verte-zerg/chainpick/internal/stats"
	"github.com/verte-zerg/chainpick/internal/store"
	"github.com/verte-zerg/chainpick/internal/tui"
)

const (
	defaultLang        = "en"
	defaultLogLevel    = "info"
	defaultCurveWindow = 20
	defaultTop         = 10
)

var (
	engineLang        string
	engineLexiconDir  string
	engineDBPath      string
	engineLimit       int
	enginePriority    string
	enginePostfix     string
	engineGoals       string
	engineAutoSuicide bool
	engineCacheTTL    time.Duration
	engineSubmitDelay time.Duration
	engineLogLevel    string

	modeFoul      bool
	modePokemon   bool
	modeMinerals  bool
	modeRare      bool
	modeCoverage  bool
	modeLength    bool
	modeTargetLen int
	modeHyphen    bool
	modeContains  string

	suggestSpectator bool

	statsLang        string
	statsSince       string
	statsLast        int
	statsTop         int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chainpick",
		Short:         "Word-chain game assistant",
		Long:          "Suggests, ranks and submits words containing a given syllable.\nWithout a subcommand it opens the practice HUD.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}
	addEngineFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addEngineFlags(cmd *cobra.Command) {
	defaults := model.DefaultSettings()
	f := cmd.Flags()
	f.StringVar(&engineLang, "lang", defaultLang, "language name or code")
	f.StringVar(&engineLexiconDir, "lexicon-dir", config.DefaultLexiconDir(), "directory holding <lang>/<category>.txt lists")
	f.StringVar(&engineDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	f.IntVar(&engineLimit, "limit", model.DefaultLimit, "number of suggestions shown (1-20)")
	f.StringVar(&enginePriority, "priority", joinPriority(defaults.PriorityOrder), "comma separated ranking order")
	f.StringVar(&enginePostfix, "postfix", "", "text appended to submitted words")
	f.StringVar(&engineGoals, "goals", "", "coverage goal spec, e.g. \"majority2 x0 z0\"")
	f.BoolVar(&engineAutoSuicide, "auto-suicide", false, "submit /suicide instead of a word")
	f.DurationVar(&engineCacheTTL, "cache-ttl", lexicon.DefaultTTL, "lexicon cache lifetime")
	f.DurationVar(&engineSubmitDelay, "submit-delay", 0, "delay before submitting a word")
	f.StringVar(&engineLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	f.BoolVar(&modeFoul, "foul", false, "prefer profanity words on own turns")
	f.BoolVar(&modePokemon, "pokemon", false, "prefer pokemon names on own turns")
	f.BoolVar(&modeMinerals, "minerals", false, "prefer mineral names on own turns")
	f.BoolVar(&modeRare, "rare", false, "prefer rare words on own turns")
	f.BoolVar(&modeCoverage, "coverage", false, "rank by alphabet coverage on own turns")
	f.BoolVar(&modeLength, "length", false, "prefer words near the target length on own turns")
	f.IntVar(&modeTargetLen, "target-len", model.DefaultTargetLen, "target word length (3-21)")
	f.BoolVar(&modeHyphen, "hyphen", false, "prefer hyphenated words on own turns")
	f.StringVar(&modeContains, "contains", "", "prefer words containing this text on own turns")
}

type env struct {
	settings model.Settings
	logger   *log.Logger
	loader   *lexicon.Loader
	provider lexicon.DirProvider
	dbPath   string
}

// loadEnv merges defaults, the config file and flags. Flags win over the
// file; the file wins over defaults.
func loadEnv(cmd *cobra.Command, logOut io.Writer) (*env, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e := fileCfg.Engine
	applyStringConfig(cmd, "lang", &engineLang, e.Lang)
	applyStringConfig(cmd, "lexicon-dir", &engineLexiconDir, e.LexiconDir)
	applyStringConfig(cmd, "db", &engineDBPath, e.DBPath)
	applyStringConfig(cmd, "log-level", &engineLogLevel, e.LogLevel)
	applyDurationConfig(cmd, "cache-ttl", &engineCacheTTL, e.CacheTTL)

	settings := model.DefaultSettings()
	fileCfg.Apply(&settings)
	overrideString(cmd, "lang", &settings.Lang, engineLang)
	overrideInt(cmd, "limit", &settings.Limit, engineLimit)
	if cmd.Flags().Changed("priority") {
		settings.PriorityOrder = parsePriority(enginePriority)
	}
	if cmd.Flags().Changed("postfix") {
		settings.PostfixText = enginePostfix
		settings.PostfixEnabled = enginePostfix != ""
	}
	if cmd.Flags().Changed("goals") {
		settings.GoalSpec = engineGoals
		settings.GoalsEnabled = strings.TrimSpace(engineGoals) != ""
	}
	overrideBool(cmd, "auto-suicide", &settings.AutoSuicide, engineAutoSuicide)
	overrideDuration(cmd, "submit-delay", &settings.SubmitDelay, engineSubmitDelay)

	overrideBool(cmd, "foul", &settings.Self.Foul, modeFoul)
	overrideBool(cmd, "pokemon", &settings.Self.Pokemon, modePokemon)
	overrideBool(cmd, "minerals", &settings.Self.Minerals, modeMinerals)
	overrideBool(cmd, "rare", &settings.Self.Rare, modeRare)
	overrideBool(cmd, "coverage", &settings.Self.Coverage, modeCoverage)
	overrideBool(cmd, "length", &settings.Self.Length, modeLength)
	overrideInt(cmd, "target-len", &settings.Self.TargetLen, modeTargetLen)
	overrideBool(cmd, "hyphen", &settings.Self.Hyphen, modeHyphen)
	if cmd.Flags().Changed("contains") {
		settings.Self.ContainsText = modeContains
		settings.Self.Contains = strings.TrimSpace(modeContains) != ""
	}
	settings.Lang = lexicon.NormalizeLang(settings.Lang)
	settings.Normalize()

	lg := logger.NewWithWriter(logOut, "chainpick", engineLogLevel)
	provider := lexicon.DirProvider{Dir: engineLexiconDir}
	return &env{
		settings: settings,
		logger:   lg,
		loader:   lexicon.NewLoader(provider, engineCacheTTL, lg),
		provider: provider,
		dbPath:   engineDBPath,
	}, nil
}

// newEngine opens the store and builds an engine whose tallies are restored
// from and saved to it. The caller closes the returned store.
func (r *env) newEngine(ctx context.Context, sub engine.Submitter) (*engine.Engine, *store.Store, error) {
	st, err := store.Open(r.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	opts := engine.Options{
		Settings:  r.settings,
		Loader:    r.loader,
		Submitter: sub,
		Recorder:  st,
		Logger:    r.logger,
		OnCoverageChange: func(lang string, snap coverage.Snapshot) {
			if err := st.SaveCoverage(context.Background(), lang, snap); err != nil {
				r.logger.Warn("save coverage failed", "lang", lang, "err", err)
			}
		},
	}
	snap, found, err := st.LoadCoverage(ctx, r.settings.Lang)
	if err != nil {
		r.logger.Warn("load coverage failed", "lang", r.settings.Lang, "err", err)
	} else if found {
		snap.Targets = coverage.Targets(r.settings.GoalsEnabled, r.settings.GoalSpec)
		opts.Coverage = &snap
	}
	return engine.New(opts), st, nil
}

func (r *env) preload(ctx context.Context) error {
	if _, err := r.loader.Load(ctx, r.settings.Lang); err != nil {
		if errors.Is(err, lexicon.ErrNoLexiconAvailable) {
			return fmt.Errorf("no %s lexicon in %s (run: chainpick langs): %w", r.settings.Lang, r.provider.Dir, err)
		}
		return err
	}
	return nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	logPath := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			_ = cerr
		}
	}()

	rt, err := loadEnv(cmd, logFile)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := rt.preload(ctx); err != nil {
		return err
	}
	sub := tui.NewSubmitter()
	eng, st, err := rt.newEngine(ctx, sub)
	if err != nil {
		return err
	}
	defer closeStore(st)
	defer eng.Close()

	program := tea.NewProgram(tui.NewModel(ctx, eng), tea.WithAltScreen())
	sub.Bind(program.Send)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over msgpack on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	addEngineFlags(cmd)
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	rt, err := loadEnv(cmd, os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rt.preload(ctx); err != nil {
		return err
	}

	srv := ipc.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), rt.logger)
	eng, st, err := rt.newEngine(ctx, srv)
	if err != nil {
		return err
	}
	defer closeStore(st)
	defer eng.Close()

	rt.logger.Info("serving", "lang", rt.settings.Lang, "lexicons", rt.provider.Dir)
	if err := srv.Serve(ctx, eng); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func newSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <syllable>",
		Short: "Print ranked words for a syllable",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuggestCmd,
	}
	addEngineFlags(cmd)
	cmd.Flags().BoolVar(&suggestSpectator, "spectator", false, "rank with the spectator modes")
	return cmd
}

func runSuggestCmd(cmd *cobra.Command, args []string) error {
	rt, err := loadEnv(cmd, os.Stderr)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := rt.preload(ctx); err != nil {
		return err
	}
	st, err := store.Open(rt.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	opts := engine.Options{Settings: rt.settings, Loader: rt.loader, Logger: rt.logger}
	snap, found, err := st.LoadCoverage(ctx, rt.settings.Lang)
	if err != nil {
		return fmt.Errorf("failed to load coverage: %w", err)
	}
	if found {
		snap.Targets = coverage.Targets(rt.settings.GoalsEnabled, rt.settings.GoalSpec)
		opts.Coverage = &snap
	}
	eng := engine.New(opts)
	defer eng.Close()

	c := model.ContextSelf
	if suggestSpectator {
		c = model.ContextSpectator
	}
	sugg, err := eng.Suggest(ctx, c, args[0])
	if err != nil {
		return err
	}
	return writeSuggestions(cmd.OutOrStdout(), sugg)
}

func writeSuggestions(w io.Writer, sugg engine.Suggestions) error {
	if len(sugg.Display) == 0 {
		_, err := fmt.Fprintf(w, "No words contain %q.\n", sugg.Syllable)
		return err
	}
	for i, c := range sugg.Display {
		line := fmt.Sprintf("%2d. %s", i+1, c.Word)
		if c.Tone != model.ToneDefault {
			line += fmt.Sprintf("  [%s]", c.Tone)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	_, err := fmt.Fprintf(w, "%d of %d words\n", len(sugg.Display), len(sugg.Candidates))
	return err
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show play history and coverage",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N plays")
	cmd.Flags().IntVar(&statsTop, "top", defaultTop, "rows in the rejected and syllable tables")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&engineDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &engineDBPath, fileCfg.Engine.DBPath)

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	lang := ""
	if statsLang != "" {
		lang = lexicon.NormalizeLang(statsLang)
	}
	cfg := model.HistoryConfig{Lang: lang, Since: sinceTime, Last: statsLast, Top: statsTop}

	st, err := store.Open(engineDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	coverageLang := lang
	if coverageLang == "" {
		coverageLang = defaultLang
		if fileCfg.Engine.Lang != nil {
			coverageLang = lexicon.NormalizeLang(*fileCfg.Engine.Lang)
		}
	}
	report, err := stats.BuildReport(cmd.Context(), st, cfg, coverageLang)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	width := stats.TerminalWidth()
	if err := stats.RenderSummary(out, report.Plays); err != nil {
		return err
	}
	if err := stats.RenderAcceptanceCurve(out, report.Plays, statsCurveWindow, width); err != nil {
		return err
	}
	total := 0
	for _, p := range report.Plays {
		if !p.Accepted {
			total++
		}
	}
	if err := stats.RenderRejectedTable(out, report.Rejected, total); err != nil {
		return err
	}
	if err := stats.RenderHardestSyllables(out, stats.HardestSyllables(report.Plays, statsTop)); err != nil {
		return err
	}
	if report.Coverage != nil {
		return stats.RenderCoverage(out, *report.Coverage, width, stats.UseColor())
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "langs",
		Short: "List installed lexicon languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
	cmd.Flags().StringVar(&engineLexiconDir, "lexicon-dir", config.DefaultLexiconDir(), "directory holding <lang>/<category>.txt lists")
	return cmd
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lexicon-dir", &engineLexiconDir, fileCfg.Engine.LexiconDir)

	langs, err := lexicon.DirProvider{Dir: engineLexiconDir}.Languages()
	if err != nil {
		if os.IsNotExist(err) {
			logErrf("No lexicons found. Create %s/<lang>/main.txt\n", engineLexiconDir)
			return fmt.Errorf("lexicon directory does not exist")
		}
		return fmt.Errorf("failed to read lexicon directory: %w", err)
	}
	if len(langs) == 0 {
		logErrf("No lexicons found. Create %s/<lang>/main.txt\n", engineLexiconDir)
		return fmt.Errorf("no lexicons found")
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func parsePriority(s string) []model.Criterion {
	var out []model.Criterion
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, model.Criterion(part))
		}
	}
	return model.NormalizePriorityOrder(out)
}

func joinPriority(order []model.Criterion) string {
	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
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

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func overrideString(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func overrideInt(cmd *cobra.Command, name string, target *int, value int) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func overrideBool(cmd *cobra.Command, name string, target *bool, value bool) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func overrideDuration(cmd *cobra.Command, name string, target *time.Duration, value time.Duration) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func defaultConfigTemplate() string {
	defaults := model.DefaultSettings()
	return fmt.Sprintf(`# chainpick configuration
# Uncomment a value to enable it. CLI flags override config values.

[engine]
# lang = %q                 # Language name or code
# lexicon-dir = %q
# db-path = %q
# limit = %d                   # Suggestions shown (1-20)
# priority = [%s]
# postfix = ""                # Text appended to submitted words
# postfix-enabled = false
# goals = %q             # Coverage goals: majorityN, letter+count, bare letter excludes
# goals-enabled = false
# auto-suicide = false        # Submit /suicide instead of a word
# cache-ttl = "%s"            # Lexicon cache lifetime
# submit-delay = "0s"         # Delay before submitting
# log-level = %q

# Mode toggles for your own turns.
[self]
# foul = false
# pokemon = false
# minerals = false
# rare = false
# coverage = false
# length = false
# target-len = %d
# hyphen = false
# contains = false
# contains-text = ""

# Mode toggles for other players' turns.
[spectator]
# foul = false
# coverage = false
# length = false
# target-len = %d
`,
		defaultLang,
		config.DefaultLexiconDir(),
		config.DefaultDBPath(),
		model.DefaultLimit,
		quotePriority(defaults.PriorityOrder),
		model.DefaultGoalSpec,
		lexicon.DefaultTTL,
		defaultLogLevel,
		model.DefaultTargetLen,
		model.DefaultTargetLen,
	)
}

func quotePriority(order []model.Criterion) string {
	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, fmt.Sprintf("%q", c))
	}
	return strings.Join(parts, ", ")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
