package printdoc

import (
	"errors"
	"fmt"
)

// Kind classifies why a document could not be printed.
type Kind string

// Error kinds reported on outcomes.
const (
	KindFileNotFound          Kind = "FILE_NOT_FOUND"
	KindNotAFile              Kind = "NOT_A_FILE"
	KindUnsupportedFormat     Kind = "UNSUPPORTED_FORMAT"
	KindAutomationUnavailable Kind = "AUTOMATION_UNAVAILABLE"
	KindDocumentOpenFailed    Kind = "DOCUMENT_OPEN_FAILED"
	KindOrientationUnknown    Kind = "ORIENTATION_UNKNOWN"
	KindPrinterConfigFailed   Kind = "PRINTER_CONFIG_FAILED"
	KindSpoolSubmitFailed     Kind = "SPOOL_SUBMIT_FAILED"
	KindCanceled              Kind = "CANCELED"
)

var (
	// ErrFileNotFound is matched by PrintErrors of KindFileNotFound.
	ErrFileNotFound = errors.New("file not found")
	// ErrNotAFile is matched by PrintErrors of KindNotAFile.
	ErrNotAFile = errors.New("path is not a regular file")
	// ErrUnsupportedFormat is matched by PrintErrors of KindUnsupportedFormat.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrAutomationUnavailable is matched by PrintErrors of KindAutomationUnavailable.
	ErrAutomationUnavailable = errors.New("document automation unavailable")
	// ErrDocumentOpenFailed is matched by PrintErrors of KindDocumentOpenFailed.
	ErrDocumentOpenFailed = errors.New("document could not be opened")
	// ErrOrientationUnknown is matched by PrintErrors of KindOrientationUnknown.
	ErrOrientationUnknown = errors.New("page orientation could not be determined")
	// ErrPrinterConfigFailed is matched by PrintErrors of KindPrinterConfigFailed.
	ErrPrinterConfigFailed = errors.New("printer configuration failed")
	// ErrSpoolSubmitFailed is matched by PrintErrors of KindSpoolSubmitFailed.
	ErrSpoolSubmitFailed = errors.New("print job submission failed")
	// ErrCanceled is matched by PrintErrors of KindCanceled.
	ErrCanceled = errors.New("print run canceled")
)

var kindSentinels = map[Kind]error{
	KindFileNotFound:          ErrFileNotFound,
	KindNotAFile:              ErrNotAFile,
	KindUnsupportedFormat:     ErrUnsupportedFormat,
	KindAutomationUnavailable: ErrAutomationUnavailable,
	KindDocumentOpenFailed:    ErrDocumentOpenFailed,
	KindOrientationUnknown:    ErrOrientationUnknown,
	KindPrinterConfigFailed:   ErrPrinterConfigFailed,
	KindSpoolSubmitFailed:     ErrSpoolSubmitFailed,
	KindCanceled:              ErrCanceled,
}

// PrintError is returned by the validator and the printer adapters. It matches both
// its kind sentinel and its cause with errors.Is.
type PrintError struct {
	Cause error
	Kind  Kind
	Path  string
	Stage Stage
}

func newPrintError(kind Kind, path string, stage Stage, cause error) *PrintError {
	return &PrintError{Kind: kind, Path: path, Stage: stage, Cause: cause}
}

func (e *PrintError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, kindSentinels[e.Kind])
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *PrintError) Unwrap() []error {
	wrapped := make([]error, 0, 2)
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		wrapped = append(wrapped, sentinel)
	}

	if e.Cause != nil {
		wrapped = append(wrapped, e.Cause)
	}

	return wrapped
}

// KindOf returns the kind of err, or an empty Kind when err is not a PrintError.
func KindOf(err error) Kind {
	var printErr *PrintError
	if errors.As(err, &printErr) {
		return printErr.Kind
	}

	return ""
}
