package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/billbook-api/internal/config"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// memState is the content of the in-memory database
type memState struct {
	vendors   map[uuid.UUID]entity.Vendor
	customers map[uuid.UUID]entity.Customer
	users     map[uuid.UUID]entity.User
	settings  map[uuid.UUID]entity.InvoiceSettings
	challans  map[uuid.UUID]entity.Challan
	bills     map[uuid.UUID]entity.Bill
	payments  map[uuid.UUID]entity.Payment
	txns      []entity.Transaction
	slabs     map[uuid.UUID]entity.GstSlab
}

func newMemState() memState {
	return memState{
		vendors:   map[uuid.UUID]entity.Vendor{},
		customers: map[uuid.UUID]entity.Customer{},
		users:     map[uuid.UUID]entity.User{},
		settings:  map[uuid.UUID]entity.InvoiceSettings{},
		challans:  map[uuid.UUID]entity.Challan{},
		bills:     map[uuid.UUID]entity.Bill{},
		payments:  map[uuid.UUID]entity.Payment{},
		slabs:     map[uuid.UUID]entity.GstSlab{},
	}
}

func cloneMap[V any](m map[uuid.UUID]V, clone func(V) V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func same[V any](v V) V { return v }

func cloneChallan(c entity.Challan) entity.Challan {
	c.Items = slices.Clone(c.Items)
	c.Customer = nil
	return c
}

func cloneBill(b entity.Bill) entity.Bill {
	b.Items = slices.Clone(b.Items)
	b.ChallanIDs = slices.Clone(b.ChallanIDs)
	b.Customer = nil
	return b
}

func clonePayment(p entity.Payment) entity.Payment {
	p.AdjustedInvoices = slices.Clone(p.AdjustedInvoices)
	p.Customer = nil
	return p
}

func cloneSettings(s entity.InvoiceSettings) entity.InvoiceSettings {
	s.UsedNumbers = slices.Clone(s.UsedNumbers)
	return s
}

func (s memState) clone() memState {
	return memState{
		vendors:   cloneMap(s.vendors, same[entity.Vendor]),
		customers: cloneMap(s.customers, same[entity.Customer]),
		users:     cloneMap(s.users, same[entity.User]),
		settings:  cloneMap(s.settings, cloneSettings),
		challans:  cloneMap(s.challans, cloneChallan),
		bills:     cloneMap(s.bills, cloneBill),
		payments:  cloneMap(s.payments, clonePayment),
		txns:      slices.Clone(s.txns),
		slabs:     cloneMap(s.slabs, same[entity.GstSlab]),
	}
}

// memDB backs every fake repository. Transactions are serialized, which stands in
// for the row locks the real repositories take.
type memDB struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	state memState
	clock time.Time
}

func newMemDB() *memDB {
	return &memDB{state: newMemState(), clock: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

// now returns a strictly increasing timestamp so creation order is stable
func (db *memDB) now() time.Time {
	db.clock = db.clock.Add(time.Millisecond)
	return db.clock
}

func (db *memDB) with(fn func(s *memState)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	fn(&db.state)
}

type memTxKey struct{}

type memTransactor struct {
	db *memDB
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()

	var snapshot memState
	t.db.with(func(s *memState) { snapshot = s.clone() })

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		t.db.with(func(s *memState) { *s = snapshot })
		return err
	}
	return nil
}

func deleted(at gorm.DeletedAt) bool {
	return at.Valid
}

func softDelete(now time.Time) gorm.DeletedAt {
	return gorm.DeletedAt{Time: now, Valid: true}
}

func inRange(t time.Time, r repository.DateRange) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

func page[T any](items []T, params *pagination.PaginationParams) ([]T, int64) {
	total := int64(len(items))
	if params == nil {
		return items, total
	}
	start := min(params.Offset(), len(items))
	end := min(start+params.PerPage, len(items))
	return items[start:end], total
}

func sortByID[T any](items []T, id func(T) uuid.UUID) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]).String() < id(items[j]).String() })
}

// vendors

type memVendorRepo struct{ db *memDB }

func (r *memVendorRepo) Create(_ context.Context, vendor *entity.Vendor) error {
	var err error
	r.db.with(func(s *memState) {
		for _, v := range s.vendors {
			if v.Mobile == vendor.Mobile {
				err = apperror.ErrDuplicate.WithDetail("constraint", "vendors_mobile_key")
				return
			}
		}
		if vendor.ID == uuid.Nil {
			vendor.ID = uuid.New()
		}
		vendor.CreatedAt = r.db.now()
		s.vendors[vendor.ID] = *vendor
	})
	return err
}

func (r *memVendorRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Vendor, error) {
	var out *entity.Vendor
	r.db.with(func(s *memState) {
		if v, ok := s.vendors[id]; ok {
			out = &v
		}
	})
	return out, nil
}

func (r *memVendorRepo) GetByMobile(_ context.Context, mobile string) (*entity.Vendor, error) {
	var out *entity.Vendor
	r.db.with(func(s *memState) {
		for _, v := range s.vendors {
			if v.Mobile == mobile {
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *memVendorRepo) LockByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	return r.GetByID(ctx, id)
}

func (r *memVendorRepo) Update(_ context.Context, vendor *entity.Vendor) error {
	r.db.with(func(s *memState) { s.vendors[vendor.ID] = *vendor })
	return nil
}

func (r *memVendorRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.Vendor, int64, error) {
	var out []entity.Vendor
	r.db.with(func(s *memState) {
		for _, v := range s.vendors {
			if search == "" || strings.Contains(strings.ToLower(v.Name), strings.ToLower(search)) {
				out = append(out, v)
			}
		}
	})
	sortByID(out, func(v entity.Vendor) uuid.UUID { return v.ID })
	items, total := page(out, params)
	return items, total, nil
}

// customers

type memCustomerRepo struct{ db *memDB }

func (r *memCustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	var err error
	r.db.with(func(s *memState) {
		for _, c := range s.customers {
			if c.VendorID == customer.VendorID && c.Mobile == customer.Mobile && !deleted(c.DeletedAt) {
				err = apperror.ErrDuplicate.WithDetail("constraint", "idx_customers_vendor_mobile")
				return
			}
		}
		if customer.ID == uuid.Nil {
			customer.ID = uuid.New()
		}
		customer.CreatedAt = r.db.now()
		s.customers[customer.ID] = *customer
	})
	return err
}

func (r *memCustomerRepo) CreateBatch(ctx context.Context, customers []entity.Customer) (int64, error) {
	var inserted int64
	for i := range customers {
		err := r.Create(ctx, &customers[i])
		if errors.Is(err, apperror.ErrDuplicate) {
			continue
		}
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, vendorID, id uuid.UUID) (*entity.Customer, error) {
	var out *entity.Customer
	r.db.with(func(s *memState) {
		if c, ok := s.customers[id]; ok && c.VendorID == vendorID && !deleted(c.DeletedAt) {
			out = &c
		}
	})
	return out, nil
}

func (r *memCustomerRepo) GetByMobile(_ context.Context, vendorID uuid.UUID, mobile string) (*entity.Customer, error) {
	var out *entity.Customer
	r.db.with(func(s *memState) {
		for _, c := range s.customers {
			if c.VendorID == vendorID && c.Mobile == mobile && !deleted(c.DeletedAt) {
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *memCustomerRepo) GetOwnerVendorID(_ context.Context, customerID uuid.UUID) (*uuid.UUID, error) {
	var out *uuid.UUID
	r.db.with(func(s *memState) {
		if c, ok := s.customers[customerID]; ok && !deleted(c.DeletedAt) {
			id := c.VendorID
			out = &id
		}
	})
	return out, nil
}

func (r *memCustomerRepo) Update(_ context.Context, customer *entity.Customer) error {
	r.db.with(func(s *memState) { s.customers[customer.ID] = *customer })
	return nil
}

func (r *memCustomerRepo) Delete(_ context.Context, vendorID, id uuid.UUID) error {
	r.db.with(func(s *memState) {
		if c, ok := s.customers[id]; ok && c.VendorID == vendorID {
			c.DeletedAt = softDelete(r.db.now())
			s.customers[id] = c
		}
	})
	return nil
}

func (r *memCustomerRepo) List(_ context.Context, vendorID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var out []entity.Customer
	r.db.with(func(s *memState) {
		for _, c := range s.customers {
			if c.VendorID != vendorID || deleted(c.DeletedAt) {
				continue
			}
			if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) || strings.Contains(c.Mobile, search) {
				out = append(out, c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	items, total := page(out, params)
	return items, total, nil
}

// users

type memUserRepo struct{ db *memDB }

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	var err error
	r.db.with(func(s *memState) {
		for _, u := range s.users {
			if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
				err = apperror.ErrDuplicate.WithDetail("constraint", "users_email_key")
				return
			}
		}
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		user.CreatedAt = r.db.now()
		stored := *user
		stored.Vendor = nil
		s.users[user.ID] = stored
	})
	return err
}

func (r *memUserRepo) find(match func(entity.User) bool) *entity.User {
	var out *entity.User
	r.db.with(func(s *memState) {
		for _, u := range s.users {
			if match(u) {
				out = &u
				return
			}
		}
	})
	return out
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id }), nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email != nil && *u.Email == email }), nil
}

func (r *memUserRepo) GetByCustomerID(_ context.Context, customerID uuid.UUID) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.CustomerID != nil && *u.CustomerID == customerID }), nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.db.with(func(s *memState) {
		stored := *user
		stored.Vendor = nil
		s.users[user.ID] = stored
	})
	return nil
}

// invoice settings

type memSettingsRepo struct{ db *memDB }

func (r *memSettingsRepo) GetByVendor(_ context.Context, vendorID uuid.UUID) (*entity.InvoiceSettings, error) {
	var out *entity.InvoiceSettings
	r.db.with(func(s *memState) {
		if v, ok := s.settings[vendorID]; ok {
			c := cloneSettings(v)
			out = &c
		}
	})
	return out, nil
}

func (r *memSettingsRepo) LockByVendor(ctx context.Context, vendorID uuid.UUID) (*entity.InvoiceSettings, error) {
	return r.GetByVendor(ctx, vendorID)
}

func (r *memSettingsRepo) CreateIfAbsent(_ context.Context, settings *entity.InvoiceSettings) error {
	r.db.with(func(s *memState) {
		if _, ok := s.settings[settings.VendorID]; ok {
			return
		}
		if settings.ID == uuid.Nil {
			settings.ID = uuid.New()
		}
		s.settings[settings.VendorID] = cloneSettings(*settings)
	})
	return nil
}

func (r *memSettingsRepo) Update(_ context.Context, settings *entity.InvoiceSettings) error {
	r.db.with(func(s *memState) { s.settings[settings.VendorID] = cloneSettings(*settings) })
	return nil
}

// challans

type memChallanRepo struct {
	db            *memDB
	failSetStatus error
}

func (r *memChallanRepo) Create(_ context.Context, challan *entity.Challan) error {
	var err error
	r.db.with(func(s *memState) {
		for _, c := range s.challans {
			if c.VendorID == challan.VendorID && c.ChallanNumber == challan.ChallanNumber {
				err = apperror.ErrDuplicate.WithDetail("constraint", "idx_challans_vendor_number")
				return
			}
		}
		if challan.ID == uuid.Nil {
			challan.ID = uuid.New()
		}
		challan.CreatedAt = r.db.now()
		for i := range challan.Items {
			challan.Items[i].ID = uuid.New()
			challan.Items[i].ChallanID = challan.ID
		}
		s.challans[challan.ID] = cloneChallan(*challan)
	})
	return err
}

func (r *memChallanRepo) GetByID(_ context.Context, vendorID, id uuid.UUID) (*entity.Challan, error) {
	var out *entity.Challan
	r.db.with(func(s *memState) {
		if c, ok := s.challans[id]; ok && c.VendorID == vendorID && !deleted(c.DeletedAt) {
			c = cloneChallan(c)
			out = &c
		}
	})
	return out, nil
}

func (r *memChallanRepo) LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error) {
	return r.GetByID(ctx, vendorID, id)
}

func (r *memChallanRepo) LastNumberWithPrefix(_ context.Context, vendorID uuid.UUID, prefix string) (string, error) {
	var numbers []string
	r.db.with(func(s *memState) {
		for _, c := range s.challans {
			if c.VendorID == vendorID && strings.HasPrefix(c.ChallanNumber, prefix) {
				numbers = append(numbers, c.ChallanNumber)
			}
		}
	})
	if len(numbers) == 0 {
		return "", nil
	}
	slices.SortFunc(numbers, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return numbers[len(numbers)-1], nil
}

func (r *memChallanRepo) LockForBilling(_ context.Context, vendorID, customerID uuid.UUID, ids []uuid.UUID) ([]entity.Challan, error) {
	var out []entity.Challan
	r.db.with(func(s *memState) {
		for _, id := range ids {
			c, ok := s.challans[id]
			if ok && c.VendorID == vendorID && c.CustomerID == customerID && !deleted(c.DeletedAt) {
				out = append(out, cloneChallan(c))
			}
		}
	})
	sortByID(out, func(c entity.Challan) uuid.UUID { return c.ID })
	return out, nil
}

func (r *memChallanRepo) Update(_ context.Context, challan *entity.Challan) error {
	r.db.with(func(s *memState) {
		stored, ok := s.challans[challan.ID]
		if !ok {
			return
		}
		items := stored.Items
		stored = cloneChallan(*challan)
		stored.Items = items
		s.challans[challan.ID] = stored
	})
	return nil
}

func (r *memChallanRepo) SetStatus(_ context.Context, vendorID uuid.UUID, ids []uuid.UUID, status enum.ChallanStatus, billID *uuid.UUID) error {
	if r.failSetStatus != nil {
		return r.failSetStatus
	}
	r.db.with(func(s *memState) {
		for _, id := range ids {
			if c, ok := s.challans[id]; ok && c.VendorID == vendorID {
				c.Status = status
				c.BillID = billID
				s.challans[id] = c
			}
		}
	})
	return nil
}

func (r *memChallanRepo) Delete(_ context.Context, vendorID, id uuid.UUID) error {
	r.db.with(func(s *memState) {
		if c, ok := s.challans[id]; ok && c.VendorID == vendorID {
			c.DeletedAt = softDelete(r.db.now())
			s.challans[id] = c
		}
	})
	return nil
}

func (r *memChallanRepo) List(_ context.Context, filter repository.ChallanFilter, params *pagination.PaginationParams) ([]entity.Challan, int64, error) {
	var out []entity.Challan
	r.db.with(func(s *memState) {
		for _, c := range s.challans {
			if c.VendorID != filter.VendorID || deleted(c.DeletedAt) || !inRange(c.ChallanDate, filter.DateRange) {
				continue
			}
			if filter.CustomerID != nil && c.CustomerID != *filter.CustomerID {
				continue
			}
			if filter.Status != nil && c.Status != *filter.Status {
				continue
			}
			out = append(out, cloneChallan(c))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	items, total := page(out, params)
	return items, total, nil
}

// bills

type memBillRepo struct{ db *memDB }

func (r *memBillRepo) Create(_ context.Context, bill *entity.Bill) error {
	var err error
	r.db.with(func(s *memState) {
		for _, b := range s.bills {
			if b.VendorID == bill.VendorID && b.BillNumber == bill.BillNumber {
				err = apperror.ErrDuplicate.WithDetail("constraint", "idx_bills_vendor_number")
				return
			}
		}
		if bill.ID == uuid.Nil {
			bill.ID = uuid.New()
		}
		bill.CreatedAt = r.db.now()
		for i := range bill.Items {
			bill.Items[i].ID = uuid.New()
			bill.Items[i].BillID = bill.ID
		}
		s.bills[bill.ID] = cloneBill(*bill)
	})
	return err
}

func (r *memBillRepo) GetByID(_ context.Context, vendorID, id uuid.UUID) (*entity.Bill, error) {
	var out *entity.Bill
	r.db.with(func(s *memState) {
		if b, ok := s.bills[id]; ok && b.VendorID == vendorID && !deleted(b.DeletedAt) {
			b = cloneBill(b)
			out = &b
		}
	})
	return out, nil
}

func (r *memBillRepo) LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error) {
	return r.GetByID(ctx, vendorID, id)
}

func (r *memBillRepo) LockForCustomer(_ context.Context, vendorID, customerID uuid.UUID, ids []uuid.UUID) ([]entity.Bill, error) {
	var out []entity.Bill
	r.db.with(func(s *memState) {
		for _, id := range ids {
			b, ok := s.bills[id]
			if ok && b.VendorID == vendorID && b.CustomerID == customerID && !deleted(b.DeletedAt) {
				out = append(out, cloneBill(b))
			}
		}
	})
	sortByID(out, func(b entity.Bill) uuid.UUID { return b.ID })
	return out, nil
}

func (r *memBillRepo) Update(_ context.Context, bill *entity.Bill) error {
	r.db.with(func(s *memState) {
		stored, ok := s.bills[bill.ID]
		if !ok {
			return
		}
		items := stored.Items
		stored = cloneBill(*bill)
		stored.Items = items
		s.bills[bill.ID] = stored
	})
	return nil
}

func (r *memBillRepo) Delete(_ context.Context, vendorID, id uuid.UUID) error {
	r.db.with(func(s *memState) {
		if b, ok := s.bills[id]; ok && b.VendorID == vendorID {
			b.DeletedAt = softDelete(r.db.now())
			s.bills[id] = b
		}
	})
	return nil
}

func (r *memBillRepo) List(_ context.Context, filter repository.BillFilter, params *pagination.PaginationParams) ([]entity.Bill, int64, error) {
	var out []entity.Bill
	r.db.with(func(s *memState) {
		for _, b := range s.bills {
			if b.VendorID != filter.VendorID || deleted(b.DeletedAt) || !inRange(b.BillDate, filter.DateRange) {
				continue
			}
			if filter.CustomerID != nil && b.CustomerID != *filter.CustomerID {
				continue
			}
			if filter.Status != nil && b.Status != *filter.Status {
				continue
			}
			out = append(out, cloneBill(b))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	items, total := page(out, params)
	return items, total, nil
}

func (r *memBillRepo) ListForCustomer(_ context.Context, vendorID, customerID uuid.UUID) ([]entity.Bill, error) {
	var out []entity.Bill
	r.db.with(func(s *memState) {
		for _, b := range s.bills {
			if b.VendorID == vendorID && b.CustomerID == customerID && !deleted(b.DeletedAt) && b.Status != enum.BillStatusCancelled {
				out = append(out, cloneBill(b))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BillDate.Equal(out[j].BillDate) {
			return out[i].BillDate.Before(out[j].BillDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// payments

type memPaymentRepo struct{ db *memDB }

func (r *memPaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	var err error
	r.db.with(func(s *memState) {
		if payment.IsOpeningBalance {
			for _, p := range s.payments {
				if p.IsOpeningBalance && !deleted(p.DeletedAt) && p.VendorID == payment.VendorID &&
					p.Method == payment.Method && p.FinancialYear == payment.FinancialYear {
					err = apperror.ErrDuplicate.WithDetail("constraint", "idx_payments_opening_balance")
					return
				}
			}
		}
		if payment.ID == uuid.Nil {
			payment.ID = uuid.New()
		}
		payment.CreatedAt = r.db.now()
		s.payments[payment.ID] = clonePayment(*payment)
	})
	return err
}

func (r *memPaymentRepo) GetByID(_ context.Context, vendorID, id uuid.UUID) (*entity.Payment, error) {
	var out *entity.Payment
	r.db.with(func(s *memState) {
		if p, ok := s.payments[id]; ok && p.VendorID == vendorID && !deleted(p.DeletedAt) {
			p = clonePayment(p)
			out = &p
		}
	})
	return out, nil
}

func (r *memPaymentRepo) LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error) {
	return r.GetByID(ctx, vendorID, id)
}

func (r *memPaymentRepo) Update(_ context.Context, payment *entity.Payment) error {
	r.db.with(func(s *memState) { s.payments[payment.ID] = clonePayment(*payment) })
	return nil
}

func (r *memPaymentRepo) Delete(_ context.Context, vendorID, id uuid.UUID) error {
	r.db.with(func(s *memState) {
		if p, ok := s.payments[id]; ok && p.VendorID == vendorID {
			p.DeletedAt = softDelete(r.db.now())
			s.payments[id] = p
		}
	})
	return nil
}

func (r *memPaymentRepo) List(_ context.Context, filter repository.PaymentFilter, params *pagination.PaginationParams) ([]entity.Payment, int64, error) {
	var out []entity.Payment
	r.db.with(func(s *memState) {
		for _, p := range s.payments {
			if p.VendorID != filter.VendorID || deleted(p.DeletedAt) || !inRange(p.PaymentDate, filter.DateRange) {
				continue
			}
			if filter.CustomerID != nil && (p.CustomerID == nil || *p.CustomerID != *filter.CustomerID) {
				continue
			}
			if filter.Type != nil && p.Type != *filter.Type {
				continue
			}
			if filter.SubType != nil && p.SubType != *filter.SubType {
				continue
			}
			if filter.Status != nil && p.Status != *filter.Status {
				continue
			}
			out = append(out, clonePayment(p))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	items, total := page(out, params)
	return items, total, nil
}

func (r *memPaymentRepo) ListForCustomer(_ context.Context, vendorID, customerID uuid.UUID) ([]entity.Payment, error) {
	var out []entity.Payment
	r.db.with(func(s *memState) {
		for _, p := range s.payments {
			if p.VendorID == vendorID && p.CustomerID != nil && *p.CustomerID == customerID &&
				!deleted(p.DeletedAt) && p.Status == enum.PaymentStatusCompleted {
				out = append(out, clonePayment(p))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.Before(out[j].PaymentDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memPaymentRepo) ExistsOpeningBalance(_ context.Context, vendorID uuid.UUID, method enum.PaymentMethod, financialYear string) (bool, error) {
	var exists bool
	r.db.with(func(s *memState) {
		for _, p := range s.payments {
			if p.IsOpeningBalance && !deleted(p.DeletedAt) && p.VendorID == vendorID && p.Method == method && p.FinancialYear == financialYear {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

// ledger entries

type memTransactionRepo struct{ db *memDB }

func (r *memTransactionRepo) Create(_ context.Context, txn *entity.Transaction) error {
	r.db.with(func(s *memState) {
		if txn.ID == uuid.Nil {
			txn.ID = uuid.New()
		}
		txn.CreatedAt = r.db.now()
		s.txns = append(s.txns, *txn)
	})
	return nil
}

func (r *memTransactionRepo) SumPaymentsByChallan(_ context.Context, vendorID uuid.UUID, challanNumber string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.db.with(func(s *memState) {
		for _, t := range s.txns {
			if t.VendorID == vendorID && t.Type == enum.TransactionTypePayment && !deleted(t.DeletedAt) &&
				t.ChallanNumber != nil && *t.ChallanNumber == challanNumber {
				total = total.Add(t.Amount)
			}
		}
	})
	return total, nil
}

func (r *memTransactionRepo) UpdateAmountByPayment(_ context.Context, vendorID, paymentID uuid.UUID, amount decimal.Decimal) error {
	r.db.with(func(s *memState) {
		for i, t := range s.txns {
			if t.VendorID == vendorID && t.PaymentID != nil && *t.PaymentID == paymentID {
				s.txns[i].Amount = amount
			}
		}
	})
	return nil
}

func (r *memTransactionRepo) DeleteByPayment(_ context.Context, vendorID, paymentID uuid.UUID) error {
	r.db.with(func(s *memState) {
		for i, t := range s.txns {
			if t.VendorID == vendorID && t.PaymentID != nil && *t.PaymentID == paymentID {
				s.txns[i].DeletedAt = softDelete(r.db.now())
			}
		}
	})
	return nil
}

func (r *memTransactionRepo) List(_ context.Context, filter repository.TransactionFilter, params *pagination.PaginationParams) ([]entity.Transaction, int64, error) {
	var out []entity.Transaction
	r.db.with(func(s *memState) {
		for _, t := range s.txns {
			if t.VendorID != filter.VendorID || deleted(t.DeletedAt) || !inRange(t.TransactionDate, filter.DateRange) {
				continue
			}
			if filter.CustomerID != nil && (t.CustomerID == nil || *t.CustomerID != *filter.CustomerID) {
				continue
			}
			if filter.Type != nil && t.Type != *filter.Type {
				continue
			}
			out = append(out, t)
		}
	})
	items, total := page(out, params)
	return items, total, nil
}

// GST slabs

type memGstSlabRepo struct{ db *memDB }

func (r *memGstSlabRepo) Create(_ context.Context, slab *entity.GstSlab) error {
	r.db.with(func(s *memState) {
		if slab.ID == uuid.Nil {
			slab.ID = uuid.New()
		}
		slab.CreatedAt = r.db.now()
		s.slabs[slab.ID] = *slab
	})
	return nil
}

func (r *memGstSlabRepo) GetByID(_ context.Context, vendorID, id uuid.UUID) (*entity.GstSlab, error) {
	var out *entity.GstSlab
	r.db.with(func(s *memState) {
		if g, ok := s.slabs[id]; ok && g.VendorID == vendorID {
			out = &g
		}
	})
	return out, nil
}

func (r *memGstSlabRepo) GetDefault(_ context.Context, vendorID uuid.UUID) (*entity.GstSlab, error) {
	var out *entity.GstSlab
	r.db.with(func(s *memState) {
		for _, g := range s.slabs {
			if g.VendorID == vendorID && g.IsDefault {
				out = &g
				return
			}
		}
	})
	return out, nil
}

func (r *memGstSlabRepo) ClearDefault(_ context.Context, vendorID uuid.UUID) error {
	r.db.with(func(s *memState) {
		for id, g := range s.slabs {
			if g.VendorID == vendorID {
				g.IsDefault = false
				s.slabs[id] = g
			}
		}
	})
	return nil
}

func (r *memGstSlabRepo) Update(_ context.Context, slab *entity.GstSlab) error {
	r.db.with(func(s *memState) { s.slabs[slab.ID] = *slab })
	return nil
}

func (r *memGstSlabRepo) Delete(_ context.Context, vendorID, id uuid.UUID) error {
	r.db.with(func(s *memState) {
		if g, ok := s.slabs[id]; ok && g.VendorID == vendorID {
			delete(s.slabs, id)
		}
	})
	return nil
}

func (r *memGstSlabRepo) List(_ context.Context, vendorID uuid.UUID) ([]entity.GstSlab, error) {
	var out []entity.GstSlab
	r.db.with(func(s *memState) {
		for _, g := range s.slabs {
			if g.VendorID == vendorID {
				out = append(out, g)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out, nil
}

// analytics

type memAnalyticsRepo struct{ db *memDB }

func activeBill(b entity.Bill, vendorID uuid.UUID) bool {
	return b.VendorID == vendorID && !deleted(b.DeletedAt) && b.Status != enum.BillStatusCancelled
}

func (r *memAnalyticsRepo) SumBilled(_ context.Context, vendorID uuid.UUID, customerID *uuid.UUID, window repository.DateRange) (decimal.Decimal, error) {
	total := decimal.Zero
	r.db.with(func(s *memState) {
		for _, b := range s.bills {
			if !activeBill(b, vendorID) || !inRange(b.BillDate, window) {
				continue
			}
			if customerID != nil && b.CustomerID != *customerID {
				continue
			}
			total = total.Add(b.TotalWithGST)
		}
	})
	return total, nil
}

func (r *memAnalyticsRepo) SumPending(_ context.Context, vendorID uuid.UUID, window repository.DateRange) (decimal.Decimal, error) {
	total := decimal.Zero
	r.db.with(func(s *memState) {
		for _, b := range s.bills {
			if activeBill(b, vendorID) && inRange(b.BillDate, window) {
				total = total.Add(b.PendingAmount)
			}
		}
	})
	return total, nil
}

func (r *memAnalyticsRepo) CountBills(_ context.Context, vendorID uuid.UUID, window repository.DateRange) (int64, error) {
	var n int64
	r.db.with(func(s *memState) {
		for _, b := range s.bills {
			if activeBill(b, vendorID) && inRange(b.BillDate, window) {
				n++
			}
		}
	})
	return n, nil
}

func (r *memAnalyticsRepo) SumPayments(_ context.Context, sum repository.PaymentSum) (decimal.Decimal, error) {
	total := decimal.Zero
	r.db.with(func(s *memState) {
		for _, p := range s.payments {
			if p.VendorID != sum.VendorID || deleted(p.DeletedAt) || p.Status != enum.PaymentStatusCompleted {
				continue
			}
			if p.Type != sum.Type || !inRange(p.PaymentDate, sum.DateRange) {
				continue
			}
			if sum.CustomerID != nil && (p.CustomerID == nil || *p.CustomerID != *sum.CustomerID) {
				continue
			}
			if sum.SubType != nil && p.SubType != *sum.SubType {
				continue
			}
			total = total.Add(p.Amount)
		}
	})
	return total, nil
}

func (r *memAnalyticsRepo) CountCustomers(_ context.Context, vendorID uuid.UUID) (int64, error) {
	var n int64
	r.db.with(func(s *memState) {
		for _, c := range s.customers {
			if c.VendorID == vendorID && !deleted(c.DeletedAt) {
				n++
			}
		}
	})
	return n, nil
}

func (r *memAnalyticsRepo) PurchasesByProduct(_ context.Context, vendorID uuid.UUID, window repository.DateRange) ([]repository.ProductPurchase, error) {
	byName := map[string]*repository.ProductPurchase{}
	r.db.with(func(s *memState) {
		for _, c := range s.challans {
			if c.VendorID != vendorID || deleted(c.DeletedAt) || c.Status == enum.ChallanStatusCancelled || !inRange(c.ChallanDate, window) {
				continue
			}
			for _, item := range c.Items {
				p, ok := byName[item.ProductName]
				if !ok {
					p = &repository.ProductPurchase{ProductName: item.ProductName, Qty: decimal.Zero, Amount: decimal.Zero}
					byName[item.ProductName] = p
				}
				p.Qty = p.Qty.Add(item.Qty)
				p.Amount = p.Amount.Add(item.Amount)
			}
		}
	})
	out := lo.Map(lo.Values(byName), func(p *repository.ProductPurchase, _ int) repository.ProductPurchase { return *p })
	sort.Slice(out, func(i, j int) bool { return out[i].Qty.GreaterThan(out[j].Qty) })
	return out, nil
}

// locks and jobs

type memLock struct {
	locker *memLocker
	key    string
}

func (l *memLock) Release(context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.key)
	return nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]bool{}}
}

func (l *memLocker) Obtain(_ context.Context, key string, _ time.Duration) (repository.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, repository.ErrLockNotObtained
	}
	l.held[key] = true
	return &memLock{locker: l, key: key}, nil
}

type memJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]entity.ImportJob
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: map[uuid.UUID]entity.ImportJob{}}
}

func (s *memJobStore) Save(_ context.Context, job *entity.ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	cp.Errors = slices.Clone(job.Errors)
	s.jobs[job.ID] = cp
	return nil
}

func (s *memJobStore) Get(_ context.Context, vendorID, id uuid.UUID) (*entity.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.VendorID != vendorID {
		return nil, nil
	}
	return &job, nil
}

var testBilling = config.BillingConfig{
	InvoicePrefix:     "INV",
	InvoiceStartCount: 1001,
	InvoiceTemplate:   "classic",
	ChallanPrefix:     "CH",
	PhoneRegion:       "IN",
}

// testEnv wires every billing service over one in-memory database
type testEnv struct {
	db           *memDB
	tx           *memTransactor
	vendorRepo   *memVendorRepo
	customerRepo *memCustomerRepo
	userRepo     *memUserRepo
	settingsRepo *memSettingsRepo
	challanRepo  *memChallanRepo
	billRepo     *memBillRepo
	paymentRepo  *memPaymentRepo
	txnRepo      *memTransactionRepo
	gstSlabRepo  *memGstSlabRepo

	sequencer   *InvoiceSequencer
	challans    *ChallanService
	bills       *BillService
	payments    *PaymentService
	outstanding *OutstandingService

	vendor   entity.Vendor
	customer entity.Customer
}

func newTestEnv() *testEnv {
	db := newMemDB()
	env := &testEnv{
		db:           db,
		tx:           &memTransactor{db: db},
		vendorRepo:   &memVendorRepo{db: db},
		customerRepo: &memCustomerRepo{db: db},
		userRepo:     &memUserRepo{db: db},
		settingsRepo: &memSettingsRepo{db: db},
		challanRepo:  &memChallanRepo{db: db},
		billRepo:     &memBillRepo{db: db},
		paymentRepo:  &memPaymentRepo{db: db},
		txnRepo:      &memTransactionRepo{db: db},
		gstSlabRepo:  &memGstSlabRepo{db: db},
	}

	env.sequencer = NewInvoiceSequencer(env.tx, env.settingsRepo, testBilling)
	env.outstanding = NewOutstandingService(&memAnalyticsRepo{db: db}, env.customerRepo, env.billRepo, env.paymentRepo)
	env.challans = NewChallanService(env.tx, env.vendorRepo, env.customerRepo, env.challanRepo, env.txnRepo, env.gstSlabRepo, testBilling.ChallanPrefix)
	env.bills = NewBillService(env.tx, env.sequencer, env.customerRepo, env.challanRepo, env.billRepo, env.txnRepo)
	env.payments = NewPaymentService(env.tx, env.customerRepo, env.billRepo, env.paymentRepo, env.txnRepo, env.outstanding)

	ctx := context.Background()
	env.vendor = entity.Vendor{Name: "Sharma Traders", Mobile: "+919800000001"}
	_ = env.vendorRepo.Create(ctx, &env.vendor)
	env.customer = env.addCustomer("Ravi Kumar", "+919811111111")
	return env
}

func (e *testEnv) addCustomer(name, mobile string) entity.Customer {
	c := entity.Customer{VendorID: e.vendor.ID, Name: name, Mobile: mobile}
	_ = e.customerRepo.Create(context.Background(), &c)
	return c
}

func (e *testEnv) settings() entity.InvoiceSettings {
	var out entity.InvoiceSettings
	e.db.with(func(s *memState) { out = cloneSettings(s.settings[e.vendor.ID]) })
	return out
}

func (e *testEnv) setSettings(fn func(*entity.InvoiceSettings)) {
	_, _ = e.sequencer.GetSettings(context.Background(), e.vendor.ID)
	e.db.with(func(s *memState) {
		st := s.settings[e.vendor.ID]
		fn(&st)
		s.settings[e.vendor.ID] = st
	})
}

func (e *testEnv) storedChallan(id uuid.UUID) entity.Challan {
	var out entity.Challan
	e.db.with(func(s *memState) { out = cloneChallan(s.challans[id]) })
	return out
}

func (e *testEnv) storedBill(id uuid.UUID) entity.Bill {
	var out entity.Bill
	e.db.with(func(s *memState) { out = cloneBill(s.bills[id]) })
	return out
}

func (e *testEnv) activeTransactions() []entity.Transaction {
	var out []entity.Transaction
	e.db.with(func(s *memState) {
		out = lo.Filter(s.txns, func(t entity.Transaction, _ int) bool { return !deleted(t.DeletedAt) })
	})
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
