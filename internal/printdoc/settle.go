package printdoc

import (
	"context"
	"path/filepath"
	"time"
)

// queueProbe is the spooler queue length of a printer sampled before a submission.
type queueProbe struct {
	printer  string
	baseline int
	ok       bool
}

func (processor *Processor) probeQueue() queueProbe {
	printer, printerErr := processor.targetPrinter()
	if printerErr != nil {
		return queueProbe{printer: "", baseline: 0, ok: false}
	}

	jobs, queueErr := processor.deps.Settings.QueuedJobs(printer)
	if queueErr != nil {
		return queueProbe{printer: printer, baseline: 0, ok: false}
	}

	return queueProbe{printer: printer, baseline: jobs, ok: true}
}

// waitForSpool blocks until the printer queue grows past the probed baseline, the
// settle timeout elapses or ctx is done. Reaching the timeout is not an error: the
// shell print verb hands the file to another application and this process gets no
// completion signal. A job that is queued and finished between two polls is also
// only noticed by the timeout.
func (processor *Processor) waitForSpool(ctx context.Context, probe queueProbe, path string) {
	deadline := time.NewTimer(processor.config.SettleTimeout)
	defer deadline.Stop()

	if !probe.ok {
		select {
		case <-ctx.Done():
		case <-deadline.C:
		}

		return
	}

	ticker := time.NewTicker(processor.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			processor.log.Info(
				"Spooler on %q showed no new job for %s within %s; continuing.",
				probe.printer,
				filepath.Base(path),
				processor.config.SettleTimeout,
			)

			return
		case <-ticker.C:
			jobs, queueErr := processor.deps.Settings.QueuedJobs(probe.printer)
			if queueErr == nil && jobs > probe.baseline {
				return
			}
		}
	}
}
