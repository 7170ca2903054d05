package printdoc

import (
	"fmt"

	"github.com/book-expert/docprint/internal/pdfgeom"
	"github.com/book-expert/docprint/internal/winprint"
)

// Orientation is the page orientation a document is printed in.
type Orientation int

// Orientations.
const (
	OrientationUnknown Orientation = iota
	Portrait
	Landscape
)

// Office page-setup enumerations.
const (
	wdOrientPortrait  = 0
	wdOrientLandscape = 1
	xlPortrait        = 1
	xlLandscape       = 2
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	default:
		return "unknown"
	}
}

// DevMode returns the DEVMODE dmOrientation value for o.
func (o Orientation) DevMode() int16 {
	if o == Landscape {
		return winprint.DMOrientLandscape
	}

	return winprint.DMOrientPortrait
}

// FromPageSize derives the orientation of a PDF page: landscape iff it is wider than
// it is tall.
func FromPageSize(size pdfgeom.Size) Orientation {
	if size.Landscape() {
		return Landscape
	}

	return Portrait
}

// FromWord maps a Word WdOrientation value.
func FromWord(raw int) (Orientation, error) {
	switch raw {
	case wdOrientPortrait:
		return Portrait, nil
	case wdOrientLandscape:
		return Landscape, nil
	default:
		return OrientationUnknown, fmt.Errorf("unexpected WdOrientation value %d", raw)
	}
}

// FromExcel maps an Excel XlPageOrientation value.
func FromExcel(raw int) (Orientation, error) {
	switch raw {
	case xlPortrait:
		return Portrait, nil
	case xlLandscape:
		return Landscape, nil
	default:
		return OrientationUnknown, fmt.Errorf("unexpected XlPageOrientation value %d", raw)
	}
}
