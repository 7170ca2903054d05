package pdfgeom

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const pdfinfoBinary = "pdfinfo"

// ErrPdfInfoOutput is returned when pdfinfo output has no page size line.
var ErrPdfInfoOutput = errors.New("could not parse page size from pdfinfo output")

// CommandExecutor runs the pdfinfo binary for PDFInfoReader. Tests replace it with
// canned pdfinfo output.
type CommandExecutor interface {
	// Run executes a command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// defaultExecutor implements the CommandExecutor interface using the standard os/exec
// package.
type defaultExecutor struct{}

// Run is the production implementation for executing a command.
func (executor *defaultExecutor) Run(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFInfoReader measures pages by running poppler's `pdfinfo` tool.
type PDFInfoReader struct {
	executor CommandExecutor
}

// NewPDFInfoReader returns a Reader that shells out to pdfinfo. A nil executor selects
// os/exec.
func NewPDFInfoReader(executor CommandExecutor) *PDFInfoReader {
	if executor == nil {
		executor = &defaultExecutor{}
	}

	return &PDFInfoReader{executor: executor}
}

// FirstPageSize implements Reader.
func (reader *PDFInfoReader) FirstPageSize(ctx context.Context, path string) (Size, error) {
	if path == "" {
		return Size{Width: 0, Height: 0}, errors.New("pdf path cannot be empty")
	}

	// Without a page range pdfinfo reports the size and rotation of page 1.
	outputBytes, execErr := reader.executor.Run(ctx, pdfinfoBinary, path)
	if execErr != nil {
		return Size{Width: 0, Height: 0}, fmt.Errorf(
			"pdfinfo execution failed: %w. Output: %s",
			execErr,
			string(outputBytes),
		)
	}

	return parsePdfInfoOutput(string(outputBytes))
}

// parsePdfInfoOutput scans pdfinfo output for the "Page size:" and "Page rot:" lines,
// e.g. "Page size:      841.89 x 595.28 pts (A4)".
func parsePdfInfoOutput(output string) (Size, error) {
	var (
		width, height float64
		rotate        int
		found         bool
	)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "Page size:"):
			parts := strings.Fields(strings.TrimPrefix(line, "Page size:"))
			if len(parts) < 3 || parts[1] != "x" {
				continue
			}

			w, widthErr := strconv.ParseFloat(parts[0], 64)
			h, heightErr := strconv.ParseFloat(parts[2], 64)

			if widthErr == nil && heightErr == nil {
				width, height, found = w, h, true
			}
		case strings.HasPrefix(line, "Page rot:"):
			parts := strings.Fields(strings.TrimPrefix(line, "Page rot:"))
			if len(parts) > 0 {
				if rot, convErr := strconv.Atoi(parts[0]); convErr == nil {
					rotate = rot
				}
			}
		}
	}

	if !found {
		return Size{Width: 0, Height: 0}, ErrPdfInfoOutput
	}

	return rotated(width, height, rotate)
}
