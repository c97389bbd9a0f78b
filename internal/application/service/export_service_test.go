package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCustomerLedger(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	bill, err := env.bills.CreateBill(ctx, env.vendor.ID, &CreateBillInput{
		CustomerID: env.customer.ID,
		BillDate:   day(2026, time.March, 1),
		Items:      []BillItemInput{{Description: "Gravel", Qty: dec("2"), Rate: dec("125.25")}},
	})
	require.NoError(t, err)
	payment := customerCredit(env, "100")
	payment.PaymentDate = day(2026, time.March, 2)
	_, err = env.payments.CreatePayment(ctx, env.vendor.ID, payment)
	require.NoError(t, err)

	var buf bytes.Buffer
	svc := NewExportService(env.outstanding)
	require.NoError(t, svc.WriteCustomerLedger(ctx, env.vendor.ID, env.customer.ID, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ledger"}, f.GetSheetList())
	rows, err := f.GetRows("Ledger")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 7)

	assert.Equal(t, []string{"Customer", "Ravi Kumar", "+919811111111"}, rows[0])
	assert.Equal(t, ledgerHeadings, rows[2])
	assert.Equal(t, []string{"2026-03-01", "bill", bill.BillNumber, "250.5", "0", "250.5"}, rows[3])
	assert.Equal(t, "150.5", rows[4][5])

	closing, err := f.GetCellValue("Ledger", "F7")
	require.NoError(t, err)
	assert.Equal(t, "150.5", closing)
	label, err := f.GetCellValue("Ledger", "E7")
	require.NoError(t, err)
	assert.Equal(t, "Closing", label)
}

func TestWriteCustomerLedgerUnknownCustomer(t *testing.T) {
	env := newTestEnv()
	var buf bytes.Buffer

	err := NewExportService(env.outstanding).WriteCustomerLedger(context.Background(), env.vendor.ID, uuid.New(), &buf)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, buf.Len())
	assert.Equal(t, "ledger-"+env.customer.ID.String()+".xlsx", LedgerFilename(env.customer.ID))
}
