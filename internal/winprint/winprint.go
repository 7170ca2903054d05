// Package winprint is the thin layer over the Windows facilities used for printing:
// the shell "print" verb, Office COM automation and the print spooler API.
//
// Every exported entry point has a non-Windows implementation that returns
// ErrUnsupportedPlatform, so callers compile and can be tested on any OS.
package winprint

import "errors"

var (
	// ErrUnsupportedPlatform is returned by every operation on a non-Windows host.
	ErrUnsupportedPlatform = errors.New("printing requires Windows")
	// ErrAutomationUnavailable is returned when an Office application cannot be
	// started through COM.
	ErrAutomationUnavailable = errors.New("office automation is unavailable")
	// ErrNoDefaultPrinter is returned when no default printer is configured.
	ErrNoDefaultPrinter = errors.New("no default printer is configured")
	// ErrNoDevMode is returned when a printer exposes no device-mode structure.
	ErrNoDevMode = errors.New("printer has no device mode")
	// ErrUnexpectedVariant is returned when a COM property has a non-numeric type.
	ErrUnexpectedVariant = errors.New("unexpected COM property type")
)

// App names an Office application driven through COM.
type App int

const (
	// Word is Microsoft Word, used for .doc and .docx files.
	Word App = iota + 1
	// Excel is Microsoft Excel, used for .xls and .xlsx files.
	Excel
)

func (app App) String() string {
	switch app {
	case Word:
		return "Word"
	case Excel:
		return "Excel"
	default:
		return "unknown"
	}
}

// ProgID returns the COM programmatic identifier of the application.
func (app App) ProgID() string {
	return app.String() + ".Application"
}

// Document is an Office document opened invisibly for printing.
type Document interface {
	// PageOrientation returns the raw page-setup orientation value of the document
	// (WdOrientation for Word, XlPageOrientation for Excel).
	PageOrientation() (int, error)
	// PrintOut sends the document to printer, or to the default printer when
	// printer is empty. It returns once the job has been handed to the spooler.
	PrintOut(printer string) error
	// Close discards any changes, closes the document and quits the application.
	Close() error
}

// DeviceMode orientation values (DMORIENT_*) and the DM_ORIENTATION field bit.
const (
	DMOrientPortrait   int16  = 1
	DMOrientLandscape  int16  = 2
	DMOrientationField uint32 = 0x00000001
)
