package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerCredit(env *testEnv, amount string, allocations ...entity.AdjustedInvoice) *CreatePaymentInput {
	customerID := env.customer.ID
	return &CreatePaymentInput{
		CustomerID:       &customerID,
		Type:             enum.PaymentTypeCredit,
		SubType:          enum.PaymentSubTypeCustomer,
		Amount:           dec(amount),
		AdjustedInvoices: allocations,
	}
}

func TestPaymentSettlesAllocatedBill(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, bill := scenarioBBill(t, env)

	payment, err := env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "252",
		entity.AdjustedInvoice{BillID: bill.ID, PayAmount: dec("252")}))
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentMethodCash, payment.Method)
	assert.Equal(t, enum.PaymentStatusCompleted, payment.Status)

	stored := env.storedBill(bill.ID)
	assertDec(t, "252", stored.PaidAmount)
	assertDec(t, "0", stored.PendingAmount)
	assert.Equal(t, enum.BillStatusPaid, stored.Status)
	assertBillBalances(t, stored)

	txns := env.activeTransactions()
	require.Len(t, txns, 1)
	assert.Equal(t, payment.ID, *txns[0].PaymentID)
	assert.Equal(t, enum.TransactionType(enum.PaymentTypeCredit), txns[0].Type)
}

func TestDeletePaymentRestoresBills(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, bill := scenarioBBill(t, env)

	before, err := env.outstanding.CustomerOutstanding(ctx, env.vendor.ID, env.customer.ID)
	require.NoError(t, err)

	payment, err := env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "100",
		entity.AdjustedInvoice{BillID: bill.ID, PayAmount: dec("60")},
		entity.AdjustedInvoice{BillID: bill.ID, PayAmount: dec("40")}))
	require.NoError(t, err)
	assertDec(t, "100", env.storedBill(bill.ID).PaidAmount, "allocations to one bill add up")
	assert.Equal(t, enum.BillStatusPartial, env.storedBill(bill.ID).Status)

	require.NoError(t, env.payments.DeletePayment(ctx, env.vendor.ID, payment.ID))

	stored := env.storedBill(bill.ID)
	assertDec(t, "0", stored.PaidAmount)
	assertDec(t, "252", stored.PendingAmount)
	assert.Equal(t, enum.BillStatusPending, stored.Status)
	assert.Empty(t, env.activeTransactions())

	after, err := env.outstanding.CustomerOutstanding(ctx, env.vendor.ID, env.customer.ID)
	require.NoError(t, err)
	assertDec(t, before.String(), after)

	_, err = env.payments.GetPayment(ctx, env.vendor.ID, payment.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPaymentSnapshotsOutstanding(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	scenarioBBill(t, env)

	payment, err := env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "100"))
	require.NoError(t, err)
	assertDec(t, "252", payment.TotalOutstanding)
	assertDec(t, "152", payment.OutstandingAfterPayment)

	debit := customerCredit(env, "20")
	debit.Type = enum.PaymentTypeDebit
	refund, err := env.payments.CreatePayment(ctx, env.vendor.ID, debit)
	require.NoError(t, err)
	assertDec(t, "152", refund.TotalOutstanding)
	assertDec(t, "172", refund.OutstandingAfterPayment)

	pending := customerCredit(env, "50")
	pending.Status = enum.PaymentStatusPending
	_, err = env.payments.CreatePayment(ctx, env.vendor.ID, pending)
	require.NoError(t, err)

	live, err := env.outstanding.CustomerOutstanding(ctx, env.vendor.ID, env.customer.ID)
	require.NoError(t, err)
	assertDec(t, "172", live, "pending payments do not count")
}

func TestCreatePaymentValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(in *CreatePaymentInput)
		field  string
	}{
		{"unknown sub type", func(in *CreatePaymentInput) { in.SubType = "salary" }, "sub_type"},
		{"unknown type", func(in *CreatePaymentInput) { in.Type = "refund" }, "type"},
		{"missing customer", func(in *CreatePaymentInput) { in.CustomerID = nil }, "customer_id"},
		{"customer on expense", func(in *CreatePaymentInput) { in.SubType = enum.PaymentSubTypeBankCharges }, "customer_id"},
		{"unknown method", func(in *CreatePaymentInput) { in.Method = "barter" }, "method"},
		{"allocated debit", func(in *CreatePaymentInput) {
			in.Type = enum.PaymentTypeDebit
			in.AdjustedInvoices = []entity.AdjustedInvoice{{BillID: uuid.New(), PayAmount: dec("10")}}
		}, "adjusted_invoices"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := customerCredit(env, "10")
			tt.mutate(in)
			_, err := env.payments.CreatePayment(ctx, env.vendor.ID, in)
			require.Error(t, err)
			appErr := apperror.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperror.ReasonValidationFailed, appErr.Reason)
			fields := make([]string, 0, len(appErr.Errors))
			for _, fe := range appErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	_, err := env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "0"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	stranger := uuid.New()
	in := customerCredit(env, "10")
	in.CustomerID = &stranger
	_, err = env.payments.CreatePayment(ctx, env.vendor.ID, in)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestExpensePaymentHasNoSnapshotOrMirror(t *testing.T) {
	env := newTestEnv()
	scenarioBBill(t, env)

	payment, err := env.payments.CreatePayment(context.Background(), env.vendor.ID, &CreatePaymentInput{
		Type:    enum.PaymentTypeDebit,
		SubType: enum.PaymentSubTypeElectricityBill,
		Amount:  dec("1200"),
		Method:  enum.PaymentMethodUPI,
	})
	require.NoError(t, err)
	assertDec(t, "0", payment.TotalOutstanding)
	assert.Empty(t, env.activeTransactions())
}

func TestAllocationToAnotherCustomersBill(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, bill := scenarioBBill(t, env)

	other := env.addCustomer("Meena Devi", "+919833333333")
	otherID := other.ID
	in := customerCredit(env, "10", entity.AdjustedInvoice{BillID: bill.ID, PayAmount: dec("10")})
	in.CustomerID = &otherID

	_, err := env.payments.CreatePayment(ctx, env.vendor.ID, in)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assertDec(t, "0", env.storedBill(bill.ID).PaidAmount)
	env.db.with(func(s *memState) { assert.Empty(t, s.payments) })
}

func TestAllocationToCancelledBill(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, bill := scenarioBBill(t, env)
	_, err := env.bills.CancelBill(ctx, env.vendor.ID, bill.ID)
	require.NoError(t, err)

	_, err = env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "10",
		entity.AdjustedInvoice{BillID: bill.ID, PayAmount: dec("10")}))
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestOpeningBalance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	april := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	ob, err := env.payments.CreateOpeningBalance(ctx, env.vendor.ID, &OpeningBalanceInput{
		Method:         enum.PaymentMethodCash,
		OpeningBalance: dec("5000"),
		Date:           &april,
	})
	require.NoError(t, err)
	assert.True(t, ob.IsOpeningBalance)
	assert.Equal(t, "2026-27", ob.FinancialYear)
	assertDec(t, "0", ob.Amount)
	assertDec(t, "5000", ob.OpeningBalance)
	assert.Equal(t, enum.PaymentSubTypeCashDeposit, ob.SubType)

	march := time.Date(2027, time.March, 31, 0, 0, 0, 0, time.UTC)
	_, err = env.payments.CreateOpeningBalance(ctx, env.vendor.ID, &OpeningBalanceInput{
		Method:         enum.PaymentMethodCash,
		OpeningBalance: dec("100"),
		Date:           &march,
	})
	assert.ErrorIs(t, err, apperror.ErrDuplicateOpeningBalance)

	_, err = env.payments.CreateOpeningBalance(ctx, env.vendor.ID, &OpeningBalanceInput{
		Method:         enum.PaymentMethodBank,
		OpeningBalance: dec("100"),
		Date:           &april,
	})
	assert.NoError(t, err, "another method has its own opening balance")

	nextYear := april.AddDate(1, 0, 0)
	_, err = env.payments.CreateOpeningBalance(ctx, env.vendor.ID, &OpeningBalanceInput{
		Method:         enum.PaymentMethodCash,
		OpeningBalance: dec("100"),
		Date:           &nextYear,
	})
	assert.NoError(t, err, "another financial year has its own opening balance")

	_, err = env.payments.UpdatePayment(ctx, env.vendor.ID, ob.ID, &UpdatePaymentInput{Note: strPtr("x")})
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	_, err = env.payments.CreateOpeningBalance(ctx, env.vendor.ID, &OpeningBalanceInput{
		Method:         enum.PaymentMethodCard,
		OpeningBalance: dec("-1"),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.ReasonValidationFailed, apperror.GetAppError(err).Reason)
}

func strPtr(s string) *string {
	return &s
}

func TestUpdatePaymentShiftsSnapshotByDelta(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	scenarioBBill(t, env)

	payment, err := env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "100"))
	require.NoError(t, err)

	amount := dec("150")
	method := enum.PaymentMethodCheque
	payment, err = env.payments.UpdatePayment(ctx, env.vendor.ID, payment.ID, &UpdatePaymentInput{Amount: &amount, Method: &method})
	require.NoError(t, err)
	assertDec(t, "150", payment.Amount)
	assertDec(t, "252", payment.TotalOutstanding)
	assertDec(t, "102", payment.OutstandingAfterPayment)
	assert.Equal(t, enum.PaymentMethodCheque, payment.Method)

	txns := env.activeTransactions()
	require.Len(t, txns, 1)
	assertDec(t, "150", txns[0].Amount)

	zero := dec("0")
	_, err = env.payments.UpdatePayment(ctx, env.vendor.ID, payment.ID, &UpdatePaymentInput{Amount: &zero})
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
}

func TestUpdateAllocatedPayment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, bill := scenarioBBill(t, env)

	payment, err := env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "100",
		entity.AdjustedInvoice{BillID: bill.ID, PayAmount: dec("100")}))
	require.NoError(t, err)

	amount := dec("120")
	_, err = env.payments.UpdatePayment(ctx, env.vendor.ID, payment.ID, &UpdatePaymentInput{Amount: &amount})
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	failed := enum.PaymentStatusFailed
	_, err = env.payments.UpdatePayment(ctx, env.vendor.ID, payment.ID, &UpdatePaymentInput{Status: &failed})
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	ref := "UTR-99812"
	updated, err := env.payments.UpdatePayment(ctx, env.vendor.ID, payment.ID, &UpdatePaymentInput{Reference: &ref})
	require.NoError(t, err)
	assert.Equal(t, ref, *updated.Reference)
	assertDec(t, "100", env.storedBill(bill.ID).PaidAmount)
}

func TestRefreshOutstanding(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	scenarioBBill(t, env)

	payment, err := env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "100"))
	require.NoError(t, err)
	assertDec(t, "152", payment.OutstandingAfterPayment)

	_, err = env.payments.CreatePayment(ctx, env.vendor.ID, customerCredit(env, "50"))
	require.NoError(t, err)

	refreshed, err := env.payments.RefreshOutstanding(ctx, env.vendor.ID, payment.ID)
	require.NoError(t, err)
	assertDec(t, "102", refreshed.OutstandingAfterPayment)
	assertDec(t, "252", refreshed.TotalOutstanding, "the before snapshot is kept")

	_, err = env.payments.RefreshOutstanding(ctx, env.vendor.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
