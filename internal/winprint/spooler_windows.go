//go:build windows

package winprint

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modWinspool = windows.NewLazySystemDLL("winspool.drv")

	procGetDefaultPrinterW = modWinspool.NewProc("GetDefaultPrinterW")
	procOpenPrinterW       = modWinspool.NewProc("OpenPrinterW")
	procClosePrinter       = modWinspool.NewProc("ClosePrinter")
	procGetPrinterW        = modWinspool.NewProc("GetPrinterW")
	procSetPrinterW        = modWinspool.NewProc("SetPrinterW")
)

const (
	printerAccessUse = 0x00000008
	printerAllAccess = 0x000F000C
	printerInfoLevel = 2
)

// printerDefaults mirrors PRINTER_DEFAULTSW.
type printerDefaults struct {
	datatype      *uint16
	devMode       uintptr
	desiredAccess uint32
}

// devMode mirrors the leading fields of DEVMODEW up to dmPaperSize. The driver-owned
// tail is left untouched in the spooler's buffer.
type devMode struct {
	deviceName    [32]uint16
	specVersion   uint16
	driverVersion uint16
	size          uint16
	driverExtra   uint16
	fields        uint32
	orientation   int16
	paperSize     int16
}

// printerInfo2 mirrors PRINTER_INFO_2W.
type printerInfo2 struct {
	serverName         *uint16
	printerName        *uint16
	shareName          *uint16
	portName           *uint16
	driverName         *uint16
	comment            *uint16
	location           *uint16
	devMode            *devMode
	sepFile            *uint16
	printProcessor     *uint16
	datatype           *uint16
	parameters         *uint16
	securityDescriptor uintptr
	attributes         uint32
	priority           uint32
	defaultPriority    uint32
	startTime          uint32
	untilTime          uint32
	status             uint32
	jobs               uint32
	averagePPM         uint32
}

// deviceState is the part of the device mode the spooler rewrites.
type deviceState struct {
	orientation int16
	fields      uint32
}

// CheckEnvironment reports whether the host can print documents.
func CheckEnvironment() error {
	if loadErr := modWinspool.Load(); loadErr != nil {
		return fmt.Errorf("print spooler API is unavailable: %w", loadErr)
	}

	return nil
}

// Spooler manages printer device settings through the print spooler.
type Spooler struct{}

// NewSpooler returns a Spooler.
func NewSpooler() *Spooler { return &Spooler{} }

// DefaultPrinter returns the name of the current user's default printer.
func (spooler *Spooler) DefaultPrinter() (string, error) {
	var size uint32

	// The first call only reports the required buffer length.
	_, _, _ = procGetDefaultPrinterW.Call(0, uintptr(unsafe.Pointer(&size)))
	if size == 0 {
		return "", ErrNoDefaultPrinter
	}

	buf := make([]uint16, size)

	ok, _, callErr := procGetDefaultPrinterW.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if ok == 0 {
		return "", fmt.Errorf("GetDefaultPrinterW failed: %w", callErr)
	}

	return windows.UTF16ToString(buf), nil
}

// SetOrientation forces orientation (a DMORIENT_* value) into the printer's device
// mode and returns a function that writes the previous orientation back.
func (spooler *Spooler) SetOrientation(printer string, orientation int16) (func() error, error) {
	previous, writeErr := writeDeviceState(printer, func(current deviceState) deviceState {
		return deviceState{
			orientation: orientation,
			fields:      current.fields | DMOrientationField,
		}
	})
	if writeErr != nil {
		return nil, writeErr
	}

	restore := func() error {
		_, restoreErr := writeDeviceState(printer, func(deviceState) deviceState {
			return previous
		})

		return restoreErr
	}

	return restore, nil
}

// QueuedJobs returns the number of jobs currently queued on printer.
func (spooler *Spooler) QueuedJobs(printer string) (int, error) {
	handle, openErr := openPrinter(printer, printerAccessUse)
	if openErr != nil {
		return 0, openErr
	}
	defer closePrinter(handle)

	buf, info, getErr := getPrinterInfo2(handle)
	if getErr != nil {
		return 0, getErr
	}

	jobs := int(info.jobs)
	runtime.KeepAlive(buf)

	return jobs, nil
}

// writeDeviceState opens printer with full access, applies update to its device mode,
// writes it back and returns the state it replaced.
func writeDeviceState(
	printer string,
	update func(deviceState) deviceState,
) (deviceState, error) {
	handle, openErr := openPrinter(printer, printerAllAccess)
	if openErr != nil {
		return deviceState{}, openErr
	}
	defer closePrinter(handle)

	buf, info, getErr := getPrinterInfo2(handle)
	if getErr != nil {
		return deviceState{}, getErr
	}

	if info.devMode == nil {
		return deviceState{}, ErrNoDevMode
	}

	previous := deviceState{orientation: info.devMode.orientation, fields: info.devMode.fields}
	next := update(previous)
	info.devMode.orientation = next.orientation
	info.devMode.fields = next.fields
	// SetPrinter rejects a security descriptor it did not ask for.
	info.securityDescriptor = 0

	ok, _, callErr := procSetPrinterW.Call(
		uintptr(handle),
		printerInfoLevel,
		uintptr(unsafe.Pointer(&buf[0])),
		0,
	)
	if ok == 0 {
		return deviceState{}, fmt.Errorf("SetPrinterW failed for %q: %w", printer, callErr)
	}

	return previous, nil
}

func openPrinter(printer string, access uint32) (windows.Handle, error) {
	namePtr, nameErr := windows.UTF16PtrFromString(printer)
	if nameErr != nil {
		return 0, fmt.Errorf("invalid printer name %q: %w", printer, nameErr)
	}

	defaults := printerDefaults{datatype: nil, devMode: 0, desiredAccess: access}

	var handle windows.Handle

	ok, _, callErr := procOpenPrinterW.Call(
		uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(&handle)),
		uintptr(unsafe.Pointer(&defaults)),
	)
	if ok == 0 {
		return 0, fmt.Errorf("OpenPrinterW failed for %q: %w", printer, callErr)
	}

	return handle, nil
}

func closePrinter(handle windows.Handle) {
	_, _, _ = procClosePrinter.Call(uintptr(handle))
}

// getPrinterInfo2 returns the PRINTER_INFO_2 buffer and a view of its header. The
// strings and device mode it points to live inside the same buffer.
func getPrinterInfo2(handle windows.Handle) ([]byte, *printerInfo2, error) {
	var needed uint32

	_, _, _ = procGetPrinterW.Call(
		uintptr(handle),
		printerInfoLevel,
		0,
		0,
		uintptr(unsafe.Pointer(&needed)),
	)
	if needed == 0 {
		return nil, nil, errors.New("GetPrinterW reported an empty PRINTER_INFO_2")
	}

	buf := make([]byte, needed)

	ok, _, callErr := procGetPrinterW.Call(
		uintptr(handle),
		printerInfoLevel,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(needed),
		uintptr(unsafe.Pointer(&needed)),
	)
	if ok == 0 {
		return nil, nil, fmt.Errorf("GetPrinterW failed: %w", callErr)
	}

	return buf, (*printerInfo2)(unsafe.Pointer(&buf[0])), nil
}
