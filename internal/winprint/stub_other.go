//go:build !windows

package winprint

// CheckEnvironment reports whether the host can print documents.
func CheckEnvironment() error { return ErrUnsupportedPlatform }

// CheckAutomation reports whether Office automation is available for apps.
func CheckAutomation(_ ...App) error { return ErrUnsupportedPlatform }

// Office launches Office applications through COM.
type Office struct{}

// NewOffice returns an Office launcher.
func NewOffice() *Office { return &Office{} }

// Open is unsupported outside Windows.
func (office *Office) Open(_ App, _ string) (Document, error) {
	return nil, ErrUnsupportedPlatform
}

// Spooler manages printer device settings through the print spooler.
type Spooler struct{}

// NewSpooler returns a Spooler.
func NewSpooler() *Spooler { return &Spooler{} }

// DefaultPrinter is unsupported outside Windows.
func (spooler *Spooler) DefaultPrinter() (string, error) { return "", ErrUnsupportedPlatform }

// SetOrientation is unsupported outside Windows.
func (spooler *Spooler) SetOrientation(_ string, _ int16) (func() error, error) {
	return nil, ErrUnsupportedPlatform
}

// QueuedJobs is unsupported outside Windows.
func (spooler *Spooler) QueuedJobs(_ string) (int, error) { return 0, ErrUnsupportedPlatform }

// Shell prints files through the shell print verbs.
type Shell struct{}

// NewShell returns a Shell.
func NewShell() *Shell { return &Shell{} }

// Print is unsupported outside Windows.
func (shell *Shell) Print(_, _ string) error { return ErrUnsupportedPlatform }
