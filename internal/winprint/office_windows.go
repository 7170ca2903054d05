//go:build windows

package winprint

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	// sFalse is returned by CoInitializeEx when COM is already initialised on the
	// thread. It still has to be balanced by CoUninitialize.
	sFalse = 0x00000001

	wdDoNotSaveChanges = 0
	wdAlertsNone       = 0
	// Excel's PrintOut takes a page range before the printer name.
	xlFirstPage = 1
	xlLastPage  = 32767
)

// Office launches Office applications through COM.
type Office struct{}

// NewOffice returns an Office launcher.
func NewOffice() *Office { return &Office{} }

// comDocument is an open Word document or Excel workbook together with the
// application instance that owns it.
type comDocument struct {
	app      App
	instance *ole.IDispatch
	document *ole.IDispatch
}

// Open starts app invisibly and opens path read-only. The calling goroutine stays
// locked to its OS thread until Close, because COM apartments are per thread.
func (office *Office) Open(app App, path string) (Document, error) {
	runtime.LockOSThread()

	if initErr := coInitialize(); initErr != nil {
		runtime.UnlockOSThread()

		return nil, fmt.Errorf("%w: CoInitializeEx: %w", ErrAutomationUnavailable, initErr)
	}

	instance, startErr := startApplication(app)
	if startErr != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()

		return nil, startErr
	}

	doc := &comDocument{app: app, instance: instance, document: nil}

	document, openErr := doc.openDocument(path)
	if openErr != nil {
		closeErr := doc.Close()

		return nil, errors.Join(openErr, closeErr)
	}

	doc.document = document

	return doc, nil
}

// CheckAutomation reports whether every app in apps is registered for COM
// automation. It does not start the applications.
func CheckAutomation(apps ...App) error {
	if len(apps) == 0 {
		return nil
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if initErr := coInitialize(); initErr != nil {
		return fmt.Errorf("%w: CoInitializeEx: %w", ErrAutomationUnavailable, initErr)
	}
	defer ole.CoUninitialize()

	for _, app := range apps {
		if _, classErr := ole.ClassIDFrom(app.ProgID()); classErr != nil {
			return fmt.Errorf("%w: %s is not registered: %w", ErrAutomationUnavailable, app.ProgID(), classErr)
		}
	}

	return nil
}

func coInitialize() error {
	initErr := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)
	if initErr == nil {
		return nil
	}

	var oleErr *ole.OleError
	if errors.As(initErr, &oleErr) && oleErr.Code() == sFalse {
		return nil
	}

	return initErr
}

func startApplication(app App) (*ole.IDispatch, error) {
	unknown, createErr := oleutil.CreateObject(app.ProgID())
	if createErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAutomationUnavailable, app.ProgID(), createErr)
	}
	defer unknown.Release()

	instance, queryErr := unknown.QueryInterface(ole.IID_IDispatch)
	if queryErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAutomationUnavailable, app.ProgID(), queryErr)
	}

	if _, visibleErr := oleutil.PutProperty(instance, "Visible", false); visibleErr != nil {
		instance.Release()

		return nil, fmt.Errorf("%w: failed to hide %s: %w", ErrAutomationUnavailable, app, visibleErr)
	}

	var alerts any = false
	if app == Word {
		alerts = wdAlertsNone
	}

	if _, alertsErr := oleutil.PutProperty(instance, "DisplayAlerts", alerts); alertsErr != nil {
		instance.Release()

		return nil, fmt.Errorf("%w: failed to silence %s alerts: %w", ErrAutomationUnavailable, app, alertsErr)
	}

	return instance, nil
}

func (doc *comDocument) openDocument(path string) (*ole.IDispatch, error) {
	collectionName := "Documents"
	// Documents.Open(FileName, ConfirmConversions, ReadOnly)
	// Workbooks.Open(FileName, UpdateLinks, ReadOnly)
	var second any = false

	if doc.app == Excel {
		collectionName = "Workbooks"
		second = 0
	}

	collectionVar, getErr := oleutil.GetProperty(doc.instance, collectionName)
	if getErr != nil {
		return nil, fmt.Errorf("failed to get %s.%s: %w", doc.app, collectionName, getErr)
	}

	collection := collectionVar.ToIDispatch()
	defer collection.Release()

	documentVar, openErr := oleutil.CallMethod(collection, "Open", path, second, true)
	if openErr != nil {
		return nil, fmt.Errorf("%s failed to open %s: %w", doc.app, path, openErr)
	}

	return documentVar.ToIDispatch(), nil
}

// PageOrientation implements Document.
func (doc *comDocument) PageOrientation() (int, error) {
	owner := doc.document

	if doc.app == Excel {
		sheetVar, sheetErr := oleutil.GetProperty(doc.document, "ActiveSheet")
		if sheetErr != nil {
			return 0, fmt.Errorf("failed to get active sheet: %w", sheetErr)
		}

		sheet := sheetVar.ToIDispatch()
		defer sheet.Release()

		owner = sheet
	}

	pageSetupVar, setupErr := oleutil.GetProperty(owner, "PageSetup")
	if setupErr != nil {
		return 0, fmt.Errorf("failed to get page setup: %w", setupErr)
	}

	pageSetup := pageSetupVar.ToIDispatch()
	defer pageSetup.Release()

	orientationVar, orientErr := oleutil.GetProperty(pageSetup, "Orientation")
	if orientErr != nil {
		return 0, fmt.Errorf("failed to read page orientation: %w", orientErr)
	}

	return variantInt(orientationVar.Value())
}

// PrintOut implements Document.
func (doc *comDocument) PrintOut(printer string) error {
	var printErr error

	switch doc.app {
	case Word:
		if printer != "" {
			if _, activeErr := oleutil.PutProperty(doc.instance, "ActivePrinter", printer); activeErr != nil {
				return fmt.Errorf("failed to select printer %q: %w", printer, activeErr)
			}
		}

		// Background=false returns only after Word has spooled the job.
		_, printErr = oleutil.CallMethod(doc.document, "PrintOut", false)
	case Excel:
		if printer != "" {
			_, printErr = oleutil.CallMethod(
				doc.document, "PrintOut", xlFirstPage, xlLastPage, 1, false, printer,
			)
		} else {
			_, printErr = oleutil.CallMethod(doc.document, "PrintOut")
		}
	}

	if printErr != nil {
		return fmt.Errorf("%s PrintOut failed: %w", doc.app, printErr)
	}

	return nil
}

// Close implements Document. It is safe to call on a partially opened document.
func (doc *comDocument) Close() error {
	var closeErrs []error

	if doc.document != nil {
		var saveChanges any = false
		if doc.app == Word {
			saveChanges = wdDoNotSaveChanges
		}

		if _, closeErr := oleutil.CallMethod(doc.document, "Close", saveChanges); closeErr != nil {
			closeErrs = append(closeErrs, fmt.Errorf("failed to close document: %w", closeErr))
		}

		doc.document.Release()
		doc.document = nil
	}

	if doc.instance != nil {
		if _, quitErr := oleutil.CallMethod(doc.instance, "Quit"); quitErr != nil {
			closeErrs = append(closeErrs, fmt.Errorf("failed to quit %s: %w", doc.app, quitErr))
		}

		doc.instance.Release()
		doc.instance = nil

		ole.CoUninitialize()
		runtime.UnlockOSThread()
	}

	return errors.Join(closeErrs...)
}

func variantInt(value any) (int, error) {
	switch typed := value.(type) {
	case int16:
		return int(typed), nil
	case int32:
		return int(typed), nil
	case int64:
		return int(typed), nil
	case int:
		return typed, nil
	case uint8:
		return int(typed), nil
	case uint16:
		return int(typed), nil
	case uint32:
		return int(typed), nil
	case float64:
		return int(typed), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnexpectedVariant, value)
	}
}
