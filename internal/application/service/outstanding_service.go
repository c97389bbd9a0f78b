package service

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/money"
	"github.com/shopspring/decimal"
)

// OutstandingService derives balances from billed totals and completed payments
type OutstandingService struct {
	analyticsRepo repository.AnalyticsRepository
	customerRepo  repository.CustomerRepository
	billRepo      repository.BillRepository
	paymentRepo   repository.PaymentRepository
}

// NewOutstandingService creates a new outstanding service
func NewOutstandingService(
	analyticsRepo repository.AnalyticsRepository,
	customerRepo repository.CustomerRepository,
	billRepo repository.BillRepository,
	paymentRepo repository.PaymentRepository,
) *OutstandingService {
	return &OutstandingService{
		analyticsRepo: analyticsRepo,
		customerRepo:  customerRepo,
		billRepo:      billRepo,
		paymentRepo:   paymentRepo,
	}
}

// CustomerBalance breaks a customer's outstanding into its parts
type CustomerBalance struct {
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	Credits     decimal.Decimal `json:"credits"`
	Debits      decimal.Decimal `json:"debits"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

func (s *OutstandingService) customerBalance(ctx context.Context, vendorID, customerID uuid.UUID) (*CustomerBalance, error) {
	billed, err := s.analyticsRepo.SumBilled(ctx, vendorID, &customerID, repository.DateRange{})
	if err != nil {
		return nil, err
	}
	credits, err := s.analyticsRepo.SumPayments(ctx, repository.PaymentSum{
		VendorID: vendorID, CustomerID: &customerID, Type: enum.PaymentTypeCredit,
	})
	if err != nil {
		return nil, err
	}
	debits, err := s.analyticsRepo.SumPayments(ctx, repository.PaymentSum{
		VendorID: vendorID, CustomerID: &customerID, Type: enum.PaymentTypeDebit,
	})
	if err != nil {
		return nil, err
	}

	return &CustomerBalance{
		CustomerID:  customerID,
		TotalBilled: billed,
		Credits:     credits,
		Debits:      debits,
		Outstanding: money.Round2(billed.Sub(credits).Add(debits)),
	}, nil
}

// CustomerOutstanding is billed minus credits plus debits, rounded once at the end
func (s *OutstandingService) CustomerOutstanding(ctx context.Context, vendorID, customerID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.customerBalance(ctx, vendorID, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Outstanding, nil
}

// GetCustomerBalance returns the outstanding of an existing customer with its components
func (s *OutstandingService) GetCustomerBalance(ctx context.Context, vendorID, customerID uuid.UUID) (*CustomerBalance, error) {
	if _, err := s.getCustomer(ctx, vendorID, customerID); err != nil {
		return nil, err
	}
	return s.customerBalance(ctx, vendorID, customerID)
}

func (s *OutstandingService) getCustomer(ctx context.Context, vendorID, customerID uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, vendorID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// VendorSummary is a vendor's position over an optional window
type VendorSummary struct {
	From               *time.Time                   `json:"from,omitempty"`
	To                 *time.Time                   `json:"to,omitempty"`
	TotalBills         int64                        `json:"total_bills"`
	TotalBilled        decimal.Decimal              `json:"total_billed"`
	TotalPayments      decimal.Decimal              `json:"total_payments"`
	TotalPending       decimal.Decimal              `json:"total_pending"`
	Outstanding        decimal.Decimal              `json:"outstanding"`
	PurchasesByProduct []repository.ProductPurchase `json:"purchases_by_product"`
}

// GetVendorSummary aggregates bills, customer payments and challan purchases inside the window
func (s *OutstandingService) GetVendorSummary(ctx context.Context, vendorID uuid.UUID, window repository.DateRange) (*VendorSummary, error) {
	customerSubType := enum.PaymentSubTypeCustomer

	count, err := s.analyticsRepo.CountBills(ctx, vendorID, window)
	if err != nil {
		return nil, err
	}
	billed, err := s.analyticsRepo.SumBilled(ctx, vendorID, nil, window)
	if err != nil {
		return nil, err
	}
	pending, err := s.analyticsRepo.SumPending(ctx, vendorID, window)
	if err != nil {
		return nil, err
	}
	credits, err := s.analyticsRepo.SumPayments(ctx, repository.PaymentSum{
		VendorID: vendorID, Type: enum.PaymentTypeCredit, SubType: &customerSubType, DateRange: window,
	})
	if err != nil {
		return nil, err
	}
	debits, err := s.analyticsRepo.SumPayments(ctx, repository.PaymentSum{
		VendorID: vendorID, Type: enum.PaymentTypeDebit, SubType: &customerSubType, DateRange: window,
	})
	if err != nil {
		return nil, err
	}
	purchases, err := s.analyticsRepo.PurchasesByProduct(ctx, vendorID, window)
	if err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []repository.ProductPurchase{}
	}

	return &VendorSummary{
		From:               window.From,
		To:                 window.To,
		TotalBills:         count,
		TotalBilled:        money.Round2(billed),
		TotalPayments:      money.Round2(credits),
		TotalPending:       money.Round2(pending),
		Outstanding:        money.Round2(billed.Sub(credits).Add(debits)),
		PurchasesByProduct: purchases,
	}, nil
}

// Dashboard is the vendor's all-time headline numbers
type Dashboard struct {
	TotalBills    int64           `json:"total_bills"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Customers     int64           `json:"customers"`
}

// GetDashboard returns the vendor's all-time totals
func (s *OutstandingService) GetDashboard(ctx context.Context, vendorID uuid.UUID) (*Dashboard, error) {
	summary, err := s.GetVendorSummary(ctx, vendorID, repository.DateRange{})
	if err != nil {
		return nil, err
	}
	customers, err := s.analyticsRepo.CountCustomers(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		TotalBills:    summary.TotalBills,
		TotalPayments: summary.TotalPayments,
		TotalPending:  summary.TotalPending,
		Outstanding:   summary.Outstanding,
		Customers:     customers,
	}, nil
}

// LedgerEntry is one line of a customer statement. Debit raises the balance, credit lowers it.
type LedgerEntry struct {
	Date      time.Time       `json:"date"`
	Kind      string          `json:"kind"`
	Reference string          `json:"reference"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
	createdAt time.Time
}

// CustomerLedger is a customer's chronological statement
type CustomerLedger struct {
	Customer *entity.Customer `json:"customer"`
	Entries  []LedgerEntry    `json:"entries"`
	Closing  decimal.Decimal  `json:"closing"`
}

// GetCustomerLedger lists bills and completed payments oldest first with a running balance.
// The closing balance equals the customer's outstanding.
func (s *OutstandingService) GetCustomerLedger(ctx context.Context, vendorID, customerID uuid.UUID) (*CustomerLedger, error) {
	customer, err := s.getCustomer(ctx, vendorID, customerID)
	if err != nil {
		return nil, err
	}
	bills, err := s.billRepo.ListForCustomer(ctx, vendorID, customerID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListForCustomer(ctx, vendorID, customerID)
	if err != nil {
		return nil, err
	}

	entries := lo.Map(bills, func(b entity.Bill, _ int) LedgerEntry {
		return LedgerEntry{Date: b.BillDate, Kind: "bill", Reference: b.BillNumber, Debit: b.TotalWithGST, Credit: decimal.Zero, createdAt: b.CreatedAt}
	})
	for _, p := range payments {
		entry := LedgerEntry{Date: p.PaymentDate, Kind: "payment", Reference: lo.FromPtr(p.Reference), Debit: decimal.Zero, Credit: decimal.Zero, createdAt: p.CreatedAt}
		if p.Type == enum.PaymentTypeDebit {
			entry.Debit = p.Amount
		} else {
			entry.Credit = p.Amount
		}
		entries = append(entries, entry)
	}

	slices.SortStableFunc(entries, func(a, b LedgerEntry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.createdAt.Compare(b.createdAt)
	})

	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].Debit).Sub(entries[i].Credit)
		entries[i].Balance = money.Round2(balance)
	}

	return &CustomerLedger{Customer: customer, Entries: entries, Closing: money.Round2(balance)}, nil
}
