//go:build windows

package winprint

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// Shell prints files through the shell print verbs registered for their type.
type Shell struct{}

// NewShell returns a Shell.
func NewShell() *Shell { return &Shell{} }

// Print hands path to the application registered for its "print" verb, or for the
// "printto" verb when a printer is named. The call returns as soon as the shell has
// started that application; it does not wait for the spooler.
func (shell *Shell) Print(path, printer string) error {
	verb := "print"
	args := ""

	if printer != "" {
		verb = "printto"
		args = `"` + printer + `"`
	}

	verbPtr, verbErr := windows.UTF16PtrFromString(verb)
	if verbErr != nil {
		return fmt.Errorf("invalid shell verb: %w", verbErr)
	}

	filePtr, fileErr := windows.UTF16PtrFromString(path)
	if fileErr != nil {
		return fmt.Errorf("invalid file path %q: %w", path, fileErr)
	}

	dirPtr, dirErr := windows.UTF16PtrFromString(filepath.Dir(path))
	if dirErr != nil {
		return fmt.Errorf("invalid working directory for %q: %w", path, dirErr)
	}

	var argsPtr *uint16
	if args != "" {
		ptr, argsErr := windows.UTF16PtrFromString(args)
		if argsErr != nil {
			return fmt.Errorf("invalid printer name %q: %w", printer, argsErr)
		}

		argsPtr = ptr
	}

	execErr := windows.ShellExecute(0, verbPtr, filePtr, argsPtr, dirPtr, windows.SW_HIDE)
	if execErr != nil {
		return fmt.Errorf("ShellExecute %s failed for %s: %w", verb, path, execErr)
	}

	return nil
}
