package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/carefront/frontdesk-ai/internal/appointments"
	"github.com/carefront/frontdesk-ai/pkg/logging"
)

const sheetName = "Sheet1"

var headerRow = []any{"Timestamp", "Name", "Department", "Doctor", "Date", "Time", "Email", "Mobile"}

// ExcelExporter appends one row per confirmed appointment to a single .xlsx
// workbook, the export format the front desk staff actually opens.
type ExcelExporter struct {
	mu     sync.Mutex
	path   string
	logger *logging.Logger
	now    func() time.Time
}

// NewExcelExporter creates an exporter writing to the given workbook path.
// Parent directories are created on first append.
func NewExcelExporter(path string, logger *logging.Logger) *ExcelExporter {
	if path == "" {
		path = filepath.Join("appointments_data", "appointments.xlsx")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ExcelExporter{path: path, logger: logger, now: time.Now}
}

// Append adds the appointment as a new row, creating the workbook with a
// header row when it does not exist yet.
func (e *ExcelExporter) Append(rec *appointments.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("export: create folder: %w", err)
	}

	f, fresh, err := e.openWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if fresh {
		if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("export: read sheet: %w", err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("export: locate row: %w", err)
	}

	row := []any{
		e.now().Format("2006-01-02 15:04:05"),
		rec.Name,
		rec.Department,
		rec.Doctor,
		rec.Date,
		rec.Time,
		rec.Email,
		rec.Mobile,
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("export: write row: %w", err)
	}
	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("export: save workbook: %w", err)
	}

	e.logger.Info("appointment exported", "path", e.path, "row", len(rows)+1)
	return nil
}

func (e *ExcelExporter) openWorkbook() (*excelize.File, bool, error) {
	if _, err := os.Stat(e.path); err == nil {
		f, err := excelize.OpenFile(e.path)
		if err != nil {
			return nil, false, fmt.Errorf("export: open workbook: %w", err)
		}
		return f, false, nil
	} else if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("export: stat workbook: %w", err)
	}
	return excelize.NewFile(), true, nil
}
