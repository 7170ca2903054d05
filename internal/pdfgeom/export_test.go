package pdfgeom

// Exported test-only accessors for unexported functions.
// This file is compiled only during tests and does not affect the public API.

// ParsePdfInfoOutputForTest exposes parsePdfInfoOutput for tests in external package.
func ParsePdfInfoOutputForTest(s string) (Size, error) { return parsePdfInfoOutput(s) }

// RotatedForTest exposes rotated for tests in external package.
func RotatedForTest(width, height float64, rotate int) (Size, error) {
	return rotated(width, height, rotate)
}
