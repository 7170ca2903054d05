// Command docprint sends Word, Excel and PDF documents to a Windows printer, switching
// the printer to the orientation of each document before its job is submitted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"

	"github.com/book-expert/docprint/internal/pdfgeom"
	"github.com/book-expert/docprint/internal/printdoc"
	"github.com/book-expert/docprint/internal/reportbus"
	"github.com/book-expert/docprint/internal/winprint"
)

const (
	logFileName          = "print_log.log"
	defaultReportSubject = "docprint.run.completed"
	natsConnectTimeout   = 5 * time.Second
	exitEnvironmentError = 1
	exitFilesFailed      = 2
)

// errFilesFailed is returned by run when at least one document could not be printed.
var errFilesFailed = errors.New("some documents could not be printed")

type configPaths struct {
	LogsDir string `toml:"logs_dir"`
}

type configPrint struct {
	ForceOrientation   *bool         `toml:"force_orientation"`
	RestoreOrientation *bool         `toml:"restore_orientation"`
	Printer            string        `toml:"printer"`
	SettleTimeout      time.Duration `toml:"settle_timeout"`
	ExitDelay          time.Duration `toml:"exit_delay"`
}

type configNATS struct {
	URL           string `toml:"url"`
	StreamName    string `toml:"stream_name"`
	ReportSubject string `toml:"report_subject"`
	UserID        string `toml:"user_id"`
	TenantID      string `toml:"tenant_id"`
}

// config represents the structure of the project.toml file.
type config struct {
	Paths configPaths `toml:"paths"`
	Print configPrint `toml:"print"`
	NATS  configNATS  `toml:"nats"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error returned by run to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, errFilesFailed) {
		return exitFilesFailed
	}

	return exitEnvironmentError
}

// hostChecks are the start-up checks made before any document is touched.
type hostChecks interface {
	CheckEnvironment() error
	CheckAutomation(apps ...winprint.App) error
}

// windowsHost runs the checks against the local machine.
type windowsHost struct{}

func (windowsHost) CheckEnvironment() error { return winprint.CheckEnvironment() }

func (windowsHost) CheckAutomation(apps ...winprint.App) error {
	return winprint.CheckAutomation(apps...)
}

// run is the main logic function, separated from main to allow for easier testing and
// clean exit handling.
func run(ctx context.Context, args []string, progressOut io.Writer) error {
	return runOnHost(ctx, args, progressOut, windowsHost{})
}

func runOnHost(ctx context.Context, args []string, progressOut io.Writer, host hostChecks) error {
	flgs, flagErr := parseFlags(args)
	if flagErr != nil {
		if errors.Is(flagErr, flag.ErrHelp) {
			return nil
		}

		return flagErr
	}

	projectRoot, configPath := resolveConfigPath(flgs.configPath)

	cfg, loadErr := safeLoadConfig(configPath)
	if loadErr != nil {
		return loadErr
	}

	settings := mergeConfigAndFlags(&cfg, flgs, projectRoot)
	settings.options.ProgressBarOutput = progressOut

	log, logErr := setupLogger(settings.logDir)
	if logErr != nil {
		return fmt.Errorf("could not set up logger: %w", logErr)
	}

	defer func() {
		cerr := log.Close()
		if cerr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", cerr)
		}
	}()

	envErr := checkHost(host, flgs.files)
	if envErr != nil {
		log.Error("CRITICAL: %v", envErr)

		return fmt.Errorf("environment check failed: %w", envErr)
	}

	return printAll(ctx, &settings, flgs.files, log)
}

// checkHost verifies the print spooler and, when files include Office documents, that
// the Office applications they need are registered for automation.
func checkHost(host hostChecks, files []string) error {
	if envErr := host.CheckEnvironment(); envErr != nil {
		return envErr
	}

	apps := printdoc.OfficeApps(files)
	if len(apps) == 0 {
		return nil
	}

	return host.CheckAutomation(apps...)
}

// printAll prints files, logs the summary and publishes the run report.
func printAll(ctx context.Context, settings *runSettings, files []string, log *logger.Logger) error {
	processor := printdoc.NewProcessor(&settings.options, printdoc.Collaborators{
		Office:   winprint.NewOffice(),
		Geometry: pdfgeom.NewDefaultChain(),
		Settings: winprint.NewSpooler(),
		Shell:    winprint.NewShell(),
	}, log)

	report := processor.Process(ctx, files)
	report.LogSummary(log)

	publishReport(ctx, &settings.nats, report, log)
	pause(ctx, settings.exitDelay)

	if report.Aborted != nil {
		return fmt.Errorf("run aborted: %w", report.Aborted)
	}

	failed := len(report.Failed())
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", errFilesFailed, failed, len(report.Outcomes))
	}

	return nil
}

// resolveConfigPath returns the project root and the config file to read. An explicit
// path wins; otherwise the project root is searched from the working directory.
func resolveConfigPath(explicit string) (string, string) {
	if explicit != "" {
		return filepath.Dir(explicit), explicit
	}

	projectRoot, configPath, findErr := configurator.FindProjectRoot(".")
	if findErr != nil {
		workDir, wdErr := os.Getwd()
		if wdErr != nil {
			workDir = "."
		}

		return workDir, ""
	}

	return projectRoot, configPath
}

// safeLoadConfig loads the TOML config, allowing missing file without error.
func safeLoadConfig(path string) (config, error) {
	if path == "" {
		return config{}, nil
	}

	cfg, err := loadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			var emptyCfg config

			return emptyCfg, nil
		}

		return config{}, fmt.Errorf("error loading config file: %w", err)
	}

	return cfg, nil
}

// loadConfig reads and parses the project.toml file.
func loadConfig(path string) (config, error) {
	var cfg config

	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		var zero config

		return zero, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

// flags represents the command-line arguments.
type flags struct {
	printer         string
	configPath      string
	files           []string
	settle          time.Duration
	exitDelay       time.Duration
	noOrientation   bool
	keepOrientation bool
}

// parseFlags defines and parses command-line flags. Positional arguments are the
// documents to print.
func parseFlags(args []string) (flags, error) {
	var flagsVar flags

	flagSet := flag.NewFlagSet("docprint", flag.ContinueOnError)
	flagSet.StringVar(&flagsVar.printer, "printer", "", "Target printer name (default printer when empty).")
	flagSet.StringVar(&flagsVar.configPath, "config", "", "Path to a project.toml file.")
	flagSet.DurationVar(
		&flagsVar.settle,
		"settle",
		0,
		"Maximum wait for the spooler to accept a PDF job.",
	)
	flagSet.DurationVar(&flagsVar.exitDelay, "exit-delay", 0, "Pause before exiting.")
	flagSet.BoolVar(
		&flagsVar.noOrientation,
		"no-orientation",
		false,
		"Print without changing the printer orientation.",
	)
	flagSet.BoolVar(
		&flagsVar.keepOrientation,
		"keep-orientation",
		false,
		"Leave the forced orientation on the printer after each job.",
	)

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		return flags{}, fmt.Errorf("failed to parse flags: %w", parseErr)
	}

	flagsVar.files = flagSet.Args()

	return flagsVar, nil
}

// runSettings is the merged configuration of one invocation.
type runSettings struct {
	nats      natsSettings
	logDir    string
	options   printdoc.Options
	exitDelay time.Duration
}

type natsSettings struct {
	url        string
	streamName string
	report     reportbus.Settings
}

// mergeConfigAndFlags combines settings from the config file and command-line flags.
// Flags take precedence over the config file settings.
func mergeConfigAndFlags(cfg *config, flgs flags, projectRoot string) runSettings {
	settings := runSettings{
		nats: natsSettings{
			url:        cfg.NATS.URL,
			streamName: cfg.NATS.StreamName,
			report: reportbus.Settings{
				Subject:  cfg.NATS.ReportSubject,
				UserID:   cfg.NATS.UserID,
				TenantID: cfg.NATS.TenantID,
			},
		},
		logDir: cfg.Paths.LogsDir,
		options: printdoc.Options{
			ProgressBarOutput: nil,
			Printer:           cfg.Print.Printer,
			SettleTimeout:     cfg.Print.SettleTimeout,
			PollInterval:      0,
			SkipOrientation:   cfg.Print.ForceOrientation != nil && !*cfg.Print.ForceOrientation,
			KeepOrientation:   cfg.Print.RestoreOrientation != nil && !*cfg.Print.RestoreOrientation,
		},
		exitDelay: cfg.Print.ExitDelay,
	}

	if settings.nats.report.Subject == "" {
		settings.nats.report.Subject = defaultReportSubject
	}

	switch {
	case settings.logDir == "":
		settings.logDir = projectRoot
	case !filepath.IsAbs(settings.logDir):
		settings.logDir = filepath.Join(projectRoot, settings.logDir)
	}

	// Command-line flags override config file values.
	if flgs.printer != "" {
		settings.options.Printer = flgs.printer
	}

	if flgs.settle > 0 {
		settings.options.SettleTimeout = flgs.settle
	}

	if flgs.exitDelay > 0 {
		settings.exitDelay = flgs.exitDelay
	}

	if flgs.noOrientation {
		settings.options.SkipOrientation = true
	}

	if flgs.keepOrientation {
		settings.options.KeepOrientation = true
	}

	return settings
}

// setupLogger initializes the logger, creating the log directory if needed.
func setupLogger(logDir string) (*logger.Logger, error) {
	log, err := logger.New(logDir, logFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// publishReport sends the run report to NATS when a server is configured. Failures
// are logged and never change the exit status.
func publishReport(ctx context.Context, settings *natsSettings, report *printdoc.Report, log *logger.Logger) {
	if settings.url == "" {
		return
	}

	conn, connErr := reportbus.Connect(settings.url, natsConnectTimeout)
	if connErr != nil {
		log.Warn("Run report not published: %v", connErr)

		return
	}

	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("Failed to close NATS connection: %v", closeErr)
		}
	}()

	if settings.streamName != "" {
		streamErr := reportbus.EnsureStream(ctx, conn.JetStream, settings.streamName, settings.report.Subject)
		if streamErr != nil {
			log.Warn("Run report not published: %v", streamErr)

			return
		}
	}

	publisher, pubErr := reportbus.NewPublisher(conn.JetStream, settings.report)
	if pubErr != nil {
		log.Warn("Run report not published: %v", pubErr)

		return
	}

	publishErr := publisher.PublishReport(ctx, report)
	if publishErr != nil {
		log.Warn("Run report not published: %v", publishErr)

		return
	}

	log.Info("Run report published to '%s' on %s", settings.report.Subject, conn.ConnectedURL())
}

// pause waits for delay or until ctx is done.
func pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
