// Package printdoc validates document paths and sends them to a printer, forcing the
// printer into the orientation of each document before its job is submitted.
package printdoc

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"

	"github.com/book-expert/docprint/internal/pdfgeom"
	"github.com/book-expert/docprint/internal/winprint"
)

// OfficeLauncher opens Office documents through their native application.
type OfficeLauncher interface {
	Open(app winprint.App, path string) (winprint.Document, error)
}

// GeometryReader measures the first page of a PDF.
type GeometryReader interface {
	FirstPageSize(ctx context.Context, path string) (pdfgeom.Size, error)
}

// PrinterSettings reads and changes the device configuration of printers.
type PrinterSettings interface {
	DefaultPrinter() (string, error)
	// SetOrientation writes a DMORIENT_* value and returns a function restoring
	// the previous device state.
	SetOrientation(printer string, orientation int16) (func() error, error)
	QueuedJobs(printer string) (int, error)
}

// Shell submits a file through the shell print verb.
type Shell interface {
	Print(path, printer string) error
}

// Collaborators are the external systems a Processor prints through.
type Collaborators struct {
	Office   OfficeLauncher
	Geometry GeometryReader
	Settings PrinterSettings
	Shell    Shell
}

// Options holds all configurable parameters for a Processor.
type Options struct {
	ProgressBarOutput io.Writer
	// Printer names the target printer. Empty selects the default printer.
	Printer string
	// SettleTimeout bounds the wait for the spooler to accept a shell print job.
	SettleTimeout time.Duration
	// PollInterval is how often the spooler queue is sampled while settling.
	PollInterval time.Duration
	// SkipOrientation prints without touching the printer configuration.
	SkipOrientation bool
	// KeepOrientation leaves the forced orientation on the printer after the job.
	KeepOrientation bool
}

const (
	defaultSettleTimeout = 5 * time.Second
	defaultPollInterval  = 250 * time.Millisecond
)

// Processor prints a list of documents one after another.
type Processor struct {
	deps   Collaborators
	log    *logger.Logger
	config Options
}

// NewProcessor creates and initializes a new Processor with the given options and logger.
// It sets sensible defaults for any zero-value fields in the Options struct.
func NewProcessor(opts *Options, deps Collaborators, log *logger.Logger) *Processor {
	applyDefaultOptions(opts)

	return &Processor{
		config: *opts,
		deps:   deps,
		log:    log,
	}
}

// applyDefaultOptions fills zero-value fields in Options with sensible defaults.
func applyDefaultOptions(opts *Options) {
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = defaultSettleTimeout
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	if opts.ProgressBarOutput == nil {
		opts.ProgressBarOutput = os.Stdout
	}
}

// Process prints paths in order and returns the per-path outcomes. A failure on one
// path never stops the run. A canceled context marks the remaining paths as failed,
// and so does Office automation turning out to be unavailable, which also sets
// Report.Aborted.
func (processor *Processor) Process(ctx context.Context, paths []string) *Report {
	report := &Report{
		Aborted:  nil,
		RunID:    uuid.New().String(),
		Outcomes: make([]Outcome, 0, len(paths)),
	}

	if len(paths) == 0 {
		processor.log.Warn("No files were given to print.")

		return report
	}

	processor.log.Info("Run %s: %d file(s) to print.", report.RunID, len(paths))

	progressBar := pb.New(len(paths)).
		SetTemplateString(`{{ bar . " " "━" "━" " " " "}} {{percent .}} {{rtime .}}`).
		SetWriter(processor.config.ProgressBarOutput).
		Start()
	defer progressBar.Finish()

	for _, path := range paths {
		progressBar.Increment()

		if report.Aborted != nil {
			report.Outcomes = append(report.Outcomes, skippedOutcome(path, KindAutomationUnavailable, report.Aborted))

			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			report.Outcomes = append(report.Outcomes, skippedOutcome(path, KindCanceled, ctxErr))

			continue
		}

		outcome := processor.printOne(ctx, path)
		report.Outcomes = append(report.Outcomes, outcome)

		if errors.Is(outcome.Err, winprint.ErrAutomationUnavailable) {
			report.Aborted = outcome.Err
			processor.log.Error("CRITICAL: %v. The remaining files are not printed.", outcome.Err)
		}
	}

	return report
}

// skippedOutcome records a path that was never attempted.
func skippedOutcome(path string, kind Kind, cause error) Outcome {
	return Outcome{
		Err:         newPrintError(kind, path, StageNone, cause),
		ConfigErr:   nil,
		Path:        path,
		JobID:       "",
		Format:      FormatOf(path),
		Orientation: OrientationUnknown,
		Stage:       StageNone,
	}
}

// printOne validates path and dispatches it to the adapter for its format.
func (processor *Processor) printOne(ctx context.Context, path string) Outcome {
	outcome := Outcome{
		Err:         nil,
		ConfigErr:   nil,
		Path:        path,
		JobID:       uuid.New().String(),
		Format:      FormatOf(path),
		Orientation: OrientationUnknown,
		Stage:       StageNone,
	}

	validateErr := validateAndLog(processor.log, path)
	if validateErr != nil {
		outcome.Err = validateErr

		return outcome
	}

	outcome.Stage = StageValidated
	processor.log.Info("Printing [%s] %s", outcome.JobID, path)

	switch outcome.Format {
	case FormatWord:
		processor.printOffice(ctx, winprint.Word, &outcome)
	case FormatExcel:
		processor.printOffice(ctx, winprint.Excel, &outcome)
	case FormatPDF:
		processor.printPDF(ctx, &outcome)
	default:
		outcome.Err = newPrintError(KindUnsupportedFormat, path, outcome.Stage, nil)
	}

	if outcome.Err != nil {
		processor.log.Error(
			"Failed to print [%s] %s at stage %s: %v",
			outcome.JobID,
			filepath.Base(path),
			outcome.Stage,
			outcome.Err,
		)
	} else {
		processor.log.Success("Submitted [%s] %s (%s)", outcome.JobID, filepath.Base(path), outcome.Orientation)
	}

	return outcome
}
