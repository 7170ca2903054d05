package printdoc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/book-expert/docprint/internal/winprint"
)

// printOffice prints a Word or Excel document through its application. The document
// is closed and the application quit whatever happens after it was opened.
func (processor *Processor) printOffice(ctx context.Context, app winprint.App, outcome *Outcome) {
	absPath, absErr := filepath.Abs(outcome.Path)
	if absErr != nil {
		outcome.Err = newPrintError(KindFileNotFound, outcome.Path, outcome.Stage, absErr)

		return
	}

	doc, openErr := processor.deps.Office.Open(app, absPath)
	if openErr != nil {
		kind := KindDocumentOpenFailed
		if errors.Is(openErr, winprint.ErrAutomationUnavailable) {
			kind = KindAutomationUnavailable
		}

		outcome.Err = newPrintError(kind, outcome.Path, outcome.Stage, openErr)

		return
	}

	outcome.Stage = StageOpened

	defer func() {
		closeErr := doc.Close()
		if closeErr != nil {
			processor.log.Warn("Failed to close %s document %s: %v", app, outcome.Path, closeErr)

			return
		}

		if outcome.Err == nil {
			outcome.Stage = StageClosed
		}
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		outcome.Err = newPrintError(KindCanceled, outcome.Path, outcome.Stage, ctxErr)

		return
	}

	if !processor.config.SkipOrientation {
		orientation, orientErr := officeOrientation(app, doc)
		if orientErr != nil {
			outcome.Err = newPrintError(KindOrientationUnknown, outcome.Path, outcome.Stage, orientErr)

			return
		}

		outcome.Orientation = orientation
		outcome.Stage = StageOrientationDetermined

		restore := processor.forceOrientation(orientation, outcome)
		defer restore()
	}

	printErr := doc.PrintOut(processor.config.Printer)
	if printErr != nil {
		outcome.Err = newPrintError(KindSpoolSubmitFailed, outcome.Path, outcome.Stage, printErr)

		return
	}

	outcome.Stage = StageSubmitted
}

func officeOrientation(app winprint.App, doc winprint.Document) (Orientation, error) {
	raw, readErr := doc.PageOrientation()
	if readErr != nil {
		return OrientationUnknown, readErr
	}

	if app == winprint.Excel {
		return FromExcel(raw)
	}

	return FromWord(raw)
}

// printPDF measures the first page, forces the matching orientation and submits the
// file through the shell print verb, then waits for the spooler to pick it up.
func (processor *Processor) printPDF(ctx context.Context, outcome *Outcome) {
	if !processor.config.SkipOrientation {
		size, sizeErr := processor.deps.Geometry.FirstPageSize(ctx, outcome.Path)
		if sizeErr != nil {
			outcome.Err = newPrintError(KindOrientationUnknown, outcome.Path, outcome.Stage, sizeErr)

			return
		}

		outcome.Orientation = FromPageSize(size)
		outcome.Stage = StageOrientationDetermined

		restore := processor.forceOrientation(outcome.Orientation, outcome)
		// Runs after the settle wait so the spooler sees the forced orientation.
		defer restore()
	}

	probe := processor.probeQueue()

	submitErr := processor.deps.Shell.Print(outcome.Path, processor.config.Printer)
	if submitErr != nil {
		outcome.Err = newPrintError(KindSpoolSubmitFailed, outcome.Path, outcome.Stage, submitErr)

		return
	}

	outcome.Stage = StageSubmitted

	processor.waitForSpool(ctx, probe, outcome.Path)

	outcome.Stage = StageClosed
}

// forceOrientation applies orientation to the target printer. Failure is recorded on
// the outcome and logged but never fails the document. The returned function restores
// the previous printer state and is always safe to call.
func (processor *Processor) forceOrientation(orientation Orientation, outcome *Outcome) func() {
	noop := func() {}

	printer, printerErr := processor.targetPrinter()
	if printerErr != nil {
		processor.recordConfigError(outcome, printerErr)

		return noop
	}

	restore, setErr := processor.deps.Settings.SetOrientation(printer, orientation.DevMode())
	if setErr != nil {
		processor.recordConfigError(outcome, fmt.Errorf("printer %q: %w", printer, setErr))

		return noop
	}

	outcome.Stage = StagePrinterConfigured
	processor.log.Info("Printer %q set to %s for %s", printer, orientation, filepath.Base(outcome.Path))

	if processor.config.KeepOrientation || restore == nil {
		return noop
	}

	return func() {
		if restoreErr := restore(); restoreErr != nil {
			processor.log.Warn("Failed to restore orientation of printer %q: %v", printer, restoreErr)
		}
	}
}

func (processor *Processor) recordConfigError(outcome *Outcome, cause error) {
	outcome.ConfigErr = newPrintError(KindPrinterConfigFailed, outcome.Path, outcome.Stage, cause)
	processor.log.Warn(
		"Could not force orientation for %s, printing with the current printer settings: %v",
		filepath.Base(outcome.Path),
		cause,
	)
}

// targetPrinter returns the configured printer, or the default printer.
func (processor *Processor) targetPrinter() (string, error) {
	if processor.config.Printer != "" {
		return processor.config.Printer, nil
	}

	printer, defaultErr := processor.deps.Settings.DefaultPrinter()
	if defaultErr != nil {
		return "", fmt.Errorf("could not resolve default printer: %w", defaultErr)
	}

	return printer, nil
}
