package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Ledger"

var ledgerHeadings = []string{"Date", "Type", "Reference", "Debit", "Credit", "Balance"}

// ExportService renders reports as spreadsheets
type ExportService struct {
	outstanding *OutstandingService
}

// NewExportService creates a new export service
func NewExportService(outstanding *OutstandingService) *ExportService {
	return &ExportService{outstanding: outstanding}
}

// LedgerFilename is the download name of a customer's statement
func LedgerFilename(customerID uuid.UUID) string {
	return fmt.Sprintf("ledger-%s.xlsx", customerID)
}

// WriteCustomerLedger writes the customer's statement as an XLSX workbook
func (s *ExportService) WriteCustomerLedger(ctx context.Context, vendorID, customerID uuid.UUID, w io.Writer) error {
	ledger, err := s.outstanding.GetCustomerLedger(ctx, vendorID, customerID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(ledgerSheet, "A1", &[]any{"Customer", ledger.Customer.Name, ledger.Customer.Mobile}); err != nil {
		return err
	}
	headings := make([]any, len(ledgerHeadings))
	for i, h := range ledgerHeadings {
		headings[i] = h
	}
	if err := f.SetSheetRow(ledgerSheet, "A3", &headings); err != nil {
		return err
	}

	row := 4
	for _, e := range ledger.Entries {
		values := []any{
			e.Date.Format("2006-01-02"),
			e.Kind,
			e.Reference,
			e.Debit.InexactFloat64(),
			e.Credit.InexactFloat64(),
			e.Balance.InexactFloat64(),
		}
		if err := f.SetSheetRow(ledgerSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		row++
	}

	if err := f.SetSheetRow(ledgerSheet, fmt.Sprintf("E%d", row+1), &[]any{"Closing", ledger.Closing.InexactFloat64()}); err != nil {
		return err
	}

	return f.Write(w)
}
