package printdoc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/docprint/internal/winprint"
)

// Format is the document family a file belongs to, which selects its printer adapter.
type Format int

// Formats.
const (
	FormatUnknown Format = iota
	FormatWord
	FormatExcel
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatWord:
		return "word"
	case FormatExcel:
		return "excel"
	case FormatPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// supportedExtensions maps lower-case extensions to their format.
var supportedExtensions = map[string]Format{
	".docx": FormatWord,
	".doc":  FormatWord,
	".xlsx": FormatExcel,
	".xls":  FormatExcel,
	".pdf":  FormatPDF,
}

// FormatOf returns the format of path by extension, compared case-insensitively.
func FormatOf(path string) Format {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// ValidateFile checks that path exists, is a regular file and has a supported
// extension. It returns a *PrintError describing the first failed check.
func ValidateFile(path string) error {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return newPrintError(KindFileNotFound, path, StageNone, statErr)
		}

		return newPrintError(KindFileNotFound, path, StageNone, fmt.Errorf("stat failed: %w", statErr))
	}

	if !info.Mode().IsRegular() {
		return newPrintError(KindNotAFile, path, StageNone, nil)
	}

	if FormatOf(path) == FormatUnknown {
		return newPrintError(
			KindUnsupportedFormat,
			path,
			StageNone,
			fmt.Errorf("extension %q is not supported", filepath.Ext(path)),
		)
	}

	return nil
}

// Validate reports whether path can be printed, logging one line for each rejection.
// It never fails the caller. Processor runs the same check through validateAndLog,
// which also keeps the typed error for the outcome.
func Validate(log *logger.Logger, path string) bool {
	return validateAndLog(log, path) == nil
}

// validateAndLog runs ValidateFile and logs the rejection, if any.
func validateAndLog(log *logger.Logger, path string) error {
	validateErr := ValidateFile(path)

	switch KindOf(validateErr) {
	case "":
		return nil
	case KindFileNotFound:
		log.Error("File not found: %s", path)
	case KindNotAFile:
		log.Error("Path is not a file: %s", path)
	case KindUnsupportedFormat:
		log.Warn("Unsupported file format: %s", path)
	default:
		log.Error("Rejected %s: %v", path, validateErr)
	}

	return validateErr
}

// OfficeApps returns the Office applications needed to print paths, in the order they
// are first needed and without duplicates.
func OfficeApps(paths []string) []winprint.App {
	var apps []winprint.App

	for _, path := range paths {
		var app winprint.App

		switch FormatOf(path) {
		case FormatWord:
			app = winprint.Word
		case FormatExcel:
			app = winprint.Excel
		default:
			continue
		}

		if !slices.Contains(apps, app) {
			apps = append(apps, app)
		}
	}

	return apps
}
