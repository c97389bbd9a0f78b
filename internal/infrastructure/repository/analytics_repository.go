package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sumResult struct {
	Total decimal.Decimal
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) activeBills(ctx context.Context, vendorID uuid.UUID, window domainRepo.DateRange) *gorm.DB {
	return conn(ctx, r.db).Model(&entity.Bill{}).
		Scopes(VendorScope(vendorID), dateScope("bill_date", window)).
		Where("status <> ?", enum.BillStatusCancelled)
}

func (r *analyticsRepository) SumBilled(ctx context.Context, vendorID uuid.UUID, customerID *uuid.UUID, window domainRepo.DateRange) (decimal.Decimal, error) {
	var out sumResult
	query := r.activeBills(ctx, vendorID, window)
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	err := query.Select("COALESCE(SUM(total_with_gst), 0) AS total").Scan(&out).Error
	return out.Total, err
}

func (r *analyticsRepository) SumPending(ctx context.Context, vendorID uuid.UUID, window domainRepo.DateRange) (decimal.Decimal, error) {
	var out sumResult
	err := r.activeBills(ctx, vendorID, window).
		Select("COALESCE(SUM(pending_amount), 0) AS total").
		Scan(&out).Error
	return out.Total, err
}

func (r *analyticsRepository) CountBills(ctx context.Context, vendorID uuid.UUID, window domainRepo.DateRange) (int64, error) {
	var count int64
	err := r.activeBills(ctx, vendorID, window).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) SumPayments(ctx context.Context, sum domainRepo.PaymentSum) (decimal.Decimal, error) {
	var out sumResult
	query := conn(ctx, r.db).Model(&entity.Payment{}).
		Scopes(VendorScope(sum.VendorID), dateScope("payment_date", sum.DateRange)).
		Where("type = ? AND status = ?", sum.Type, enum.PaymentStatusCompleted)
	if sum.CustomerID != nil {
		query = query.Where("customer_id = ?", *sum.CustomerID)
	}
	if sum.SubType != nil {
		query = query.Where("sub_type = ?", *sum.SubType)
	}
	err := query.Select("COALESCE(SUM(amount), 0) AS total").Scan(&out).Error
	return out.Total, err
}

func (r *analyticsRepository) CountCustomers(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Customer{}).Scopes(VendorScope(vendorID)).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) PurchasesByProduct(ctx context.Context, vendorID uuid.UUID, window domainRepo.DateRange) ([]domainRepo.ProductPurchase, error) {
	var results []domainRepo.ProductPurchase

	query := conn(ctx, r.db).Table("challan_items ci").
		Select("ci.product_name AS product_name, COALESCE(SUM(ci.qty), 0) AS qty, COALESCE(SUM(ci.amount), 0) AS amount").
		Joins("JOIN challans c ON c.id = ci.challan_id").
		Where("c.vendor_id = ? AND c.status <> ? AND c.deleted_at IS NULL", vendorID, enum.ChallanStatusCancelled)
	if window.From != nil {
		query = query.Where("c.challan_date >= ?", *window.From)
	}
	if window.To != nil {
		query = query.Where("c.challan_date <= ?", *window.To)
	}

	err := query.Group("ci.product_name").
		Order("qty DESC, ci.product_name ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
