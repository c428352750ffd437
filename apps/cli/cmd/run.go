package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abdul-hamid-achik/hitassert/packages/core/config"
	"github.com/abdul-hamid-achik/hitassert/packages/core/env"
	"github.com/abdul-hamid-achik/hitassert/packages/output"
	"github.com/abdul-hamid-achik/hitassert/packages/suite"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run assertion suites",
	Long: `Run the checks defined in YAML suite files.

Examples:
  hitassert run checks/smoke.yaml
  hitassert run checks/ --env staging
  hitassert run checks/ --tags smoke --output junit --output-file report.xml
  hitassert run checks/pages.yaml --name "login*" --var user=alice
  hitassert run checks/ --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFlag        string
	envFileFlag    string
	configFlag     string
	nameFlag       string
	tagsFlag       string
	varFlags       []string
	verboseFlag    int // 0=off, 1=-v, 2=-vv
	noColorFlag    bool
	outputFlag     string
	outputFileFlag string
	bailFlag       bool
	timeoutFlag    string
	watchFlag      bool
	proxyFlag      string
	insecureFlag   bool
	rateLimitFlag  float64
	retryDelayFlag time.Duration
)

func init() {
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("HITASSERT_ENV", ""), "Environment from the config file (env: HITASSERT_ENV)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HITASSERT_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITASSERT_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HITASSERT_CONFIG", ""), "Path to config file (env: HITASSERT_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only checks whose name matches the glob pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("HITASSERT_TAGS", ""), "Run only checks with any of the tags (comma-separated) (env: HITASSERT_TAGS)")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Set a variable (name=value), may be repeated")

	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output and logging (-v, -vv for debug logs)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITASSERT_NO_COLOR", false), "Disable colored output (env: HITASSERT_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HITASSERT_OUTPUT", ""), "Output format: "+strings.Join(output.Formats, ", ")+" (env: HITASSERT_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("HITASSERT_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HITASSERT_OUTPUT_FILE)")

	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HITASSERT_BAIL", false), "Stop on first failure (env: HITASSERT_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HITASSERT_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: HITASSERT_TIMEOUT)")
	runCmd.Flags().DurationVar(&retryDelayFlag, "retry-delay", suite.DefaultRetryDelay, "Pause between attempts of checks with retry set")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run suites")

	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HITASSERT_PROXY", ""), "Proxy URL for HTTP requests (env: HITASSERT_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HITASSERT_INSECURE", false), "Disable SSL certificate validation (env: HITASSERT_INSECURE)")
	runCmd.Flags().Float64Var(&rateLimitFlag, "rate-limit", getEnvFloat("HITASSERT_RATE_LIMIT", 0), "Maximum requests per second, 0 for no limit (env: HITASSERT_RATE_LIMIT)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// newLogger returns a development logger on stderr for -v (info) and -vv
// (debug), and a no-op logger otherwise.
func newLogger(verbosity int) (*zap.Logger, error) {
	if verbosity == 0 {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbosity > 1 {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// resolveConfig loads the config file and lets explicitly set flags win.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	flags := &config.Config{
		Proxy:      proxyFlag,
		RateLimit:  rateLimitFlag,
		Output:     outputFlag,
		OutputFile: outputFileFlag,
		EnvFile:    envFileFlag,
	}
	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		flags.Timeout = int(timeout.Milliseconds())
	}
	if cmd.Flags().Changed("insecure") || insecureFlag {
		flags.ValidateSSL = config.BoolPtr(!insecureFlag)
	}
	if cmd.Flags().Changed("bail") || bailFlag {
		flags.Bail = config.BoolPtr(bailFlag)
	}
	if cmd.Flags().Changed("no-color") || noColorFlag {
		flags.NoColor = config.BoolPtr(noColorFlag)
	}
	if verboseFlag > 0 {
		flags.Verbose = config.BoolPtr(true)
	}
	return cfg.Merge(flags), nil
}

// loadVariables layers config environment, .env file, HITASSERT_VAR_*
// variables and --var flags, later sources winning.
func loadVariables(cfg *config.Config) (map[string]any, error) {
	var dotenv map[string]any
	if cfg.EnvFile != "" {
		vars, err := env.LoadDotEnv(cfg.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
		dotenv = env.Strings(vars)
	}

	cli := make(map[string]string, len(varFlags))
	for _, kv := range varFlags {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q (want name=value)", kv)
		}
		cli[name] = value
	}

	return env.Merge(
		cfg.Variables(envFlag),
		dotenv,
		env.SystemVariables(env.VarPrefix),
		env.Strings(cli),
	), nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// runSummary totals one pass over all files.
type runSummary struct {
	passed, failed, skipped int
	networkOnly             bool
	loadErrors              int
	duration                time.Duration
}

func (s runSummary) exitCode() int {
	switch {
	case s.loadErrors > 0:
		return ExitParseError
	case s.failed > 0 && s.networkOnly:
		return ExitNetworkError
	case s.failed > 0:
		return ExitTestFailure
	}
	return ExitSuccess
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	vars, err := loadVariables(cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	logger, err := newLogger(verboseFlag)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("creating logger: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, errors.New("no .yaml or .yml suite files found"))
	}

	var outWriter io.Writer = cmd.OutOrStdout()
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		outWriter = f
	}

	newFormatter := func() (output.Formatter, error) {
		return output.New(cfg.Output, output.Options{
			Writer:  outWriter,
			Verbose: cfg.GetVerbose(),
			NoColor: cfg.GetNoColor(),
		})
	}
	if _, err := newFormatter(); err != nil {
		return withExitCode(ExitUsageError, err)
	}

	runnerConfig := &suite.Config{
		Timeout:         cfg.TimeoutDuration(),
		FollowRedirects: cfg.GetFollowRedirects(),
		MaxRedirects:    cfg.MaxRedirects,
		SkipTLSVerify:   !cfg.GetValidateSSL(),
		Proxy:           cfg.Proxy,
		Headers:         cfg.Headers,
		RateLimit:       cfg.RateLimit,
		Bail:            cfg.GetBail(),
		SuppressErrors:  cfg.GetSuppressErrors(),
		NameFilter:      nameFlag,
		TagsFilter:      splitTags(tagsFlag),
		RetryDelay:      retryDelayFlag,
		Variables:       vars,
		Logger:          logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runAll := func() runSummary {
		formatter, _ := newFormatter()
		formatter.FormatHeader(version)

		// Captures carry across files of one pass, not across passes.
		r := suite.NewRunner(runnerConfig)
		sum := runSummary{networkOnly: true}
		start := time.Now()

		for _, file := range files {
			result, err := r.RunFile(ctx, file)
			if err != nil {
				formatter.FormatError(err)
				logger.Error("suite not run", zap.String("file", file), zap.Error(err))
				sum.loadErrors++
				if runnerConfig.Bail {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			sum.passed += result.Passed
			sum.failed += result.Failed
			sum.skipped += result.Skipped
			for _, c := range result.Results {
				if !c.Passed && !c.Skipped && c.Error == nil {
					sum.networkOnly = false
				}
			}

			if runnerConfig.Bail && result.Failed > 0 {
				break
			}
		}

		sum.duration = time.Since(start)
		if flushable, ok := formatter.(output.Flushable); ok {
			if err := flushable.Flush(sum.duration); err != nil {
				formatter.FormatError(fmt.Errorf("error writing output: %w", err))
			}
		}
		return sum
	}

	sum := runAll()
	if !watchFlag {
		if code := sum.exitCode(); code != ExitSuccess {
			return withExitCode(code, nil)
		}
		return nil
	}

	return watch(ctx, cmd, args, files, logger, func() { runAll() })
}

// watch re-runs rerun whenever a watched file under the suites' directories
// is written, until ctx is done.
func watch(ctx context.Context, cmd *cobra.Command, args, files []string, logger *zap.Logger, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			}
			watchedDirs[dir] = true
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	changed := make(chan string, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isWatchedFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case changed <- name:
				default:
				}
			})

		case name := <-changed:
			fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nRe-running suites...\n\n", name)
			rerun()
			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
