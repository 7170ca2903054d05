package printdoc

import (
	"strings"

	"github.com/book-expert/logger"
)

// Stage is the last step a document reached while it was being printed.
type Stage int

// Stages, in the order a document passes through them.
const (
	StageNone Stage = iota
	StageValidated
	StageOpened
	StageOrientationDetermined
	StagePrinterConfigured
	StageSubmitted
	StageClosed
)

func (s Stage) String() string {
	switch s {
	case StageValidated:
		return "validated"
	case StageOpened:
		return "opened"
	case StageOrientationDetermined:
		return "orientation-determined"
	case StagePrinterConfigured:
		return "printer-configured"
	case StageSubmitted:
		return "submitted"
	case StageClosed:
		return "closed"
	default:
		return "none"
	}
}

// Outcome records what happened to a single input path.
type Outcome struct {
	// Err is nil when the document was submitted.
	Err error
	// ConfigErr is set when the printer orientation could not be forced. It does
	// not fail the document.
	ConfigErr   error
	Path        string
	JobID       string
	Format      Format
	Orientation Orientation
	Stage       Stage
}

// Succeeded reports whether the document was handed to the spooler.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Report is the result of one run, with outcomes in input order.
type Report struct {
	// Aborted is set when the run stopped early because the host cannot print.
	Aborted  error
	RunID    string
	Outcomes []Outcome
}

// Succeeded returns the paths that were submitted, in input order.
func (r *Report) Succeeded() []string {
	return r.paths(true)
}

// Failed returns the paths that could not be printed, in input order.
func (r *Report) Failed() []string {
	return r.paths(false)
}

func (r *Report) paths(succeeded bool) []string {
	paths := make([]string, 0, len(r.Outcomes))
	for _, outcome := range r.Outcomes {
		if outcome.Succeeded() == succeeded {
			paths = append(paths, outcome.Path)
		}
	}

	return paths
}

var summaryRule = strings.Repeat("=", 30)

// LogSummary writes the end-of-run summary.
func (r *Report) LogSummary(log *logger.Logger) {
	succeeded := r.Succeeded()
	failed := r.Failed()

	log.Info("%s", summaryRule)

	if r.Aborted != nil {
		log.Error("CRITICAL: run aborted: %v", r.Aborted)
	}

	log.Info("All print jobs finished (run %s).", r.RunID)
	log.Info("Succeeded: %d", len(succeeded))

	for _, path := range succeeded {
		log.Info("  - %s", path)
	}

	log.Info("Failed: %d", len(failed))

	for _, outcome := range r.Outcomes {
		if !outcome.Succeeded() {
			log.Info("  - %s [%s]", outcome.Path, KindOf(outcome.Err))
		}
	}

	log.Info("%s", summaryRule)
}
