package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/logger"
	"github.com/sangkips/billbook-api/pkg/phone"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	importBatchSize = 200
	importLockTTL   = 10 * time.Minute
)

// ImportService bulk-loads customers in the background.
// jobs and locker are optional; without them imports run untracked and unlocked.
type ImportService struct {
	customerRepo repository.CustomerRepository
	jobs         repository.ImportJobStore
	locker       repository.Locker
	region       string
	maxRows      int
}

// NewImportService creates a new import service
func NewImportService(
	customerRepo repository.CustomerRepository,
	jobs repository.ImportJobStore,
	locker repository.Locker,
	region string,
	maxRows int,
) *ImportService {
	return &ImportService{
		customerRepo: customerRepo,
		jobs:         jobs,
		locker:       locker,
		region:       region,
		maxRows:      maxRows,
	}
}

func importLockKey(vendorID uuid.UUID) string {
	return "import-lock:" + vendorID.String()
}

// ParseWorkbook reads customer rows from the first sheet of an XLSX file.
// The first row is a header; columns are name, mobile, email, gstin, address.
func (s *ImportService) ParseWorkbook(r io.Reader) ([]CreateCustomerInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewFieldError("file", "unable to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.NewFieldError("file", "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.NewFieldError("file", "unable to read sheet")
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	optional := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	inputs := make([]CreateCustomerInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(strings.Join(row, "")) == 0 {
			continue
		}
		inputs = append(inputs, CreateCustomerInput{
			Name:    cell(row, 0),
			Mobile:  cell(row, 1),
			Email:   optional(cell(row, 2)),
			GSTIN:   optional(cell(row, 3)),
			Address: optional(cell(row, 4)),
		})
	}
	return inputs, nil
}

// StartImport queues rows for insertion and returns immediately with the job.
// A second import for the same vendor is refused while one is running.
func (s *ImportService) StartImport(ctx context.Context, vendorID uuid.UUID, rows []CreateCustomerInput) (*entity.ImportJob, error) {
	if len(rows) == 0 {
		return nil, apperror.NewFieldError("customers", "at least one row is required")
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return nil, apperror.NewFieldError("customers", fmt.Sprintf("at most %d rows per import", s.maxRows))
	}

	var lock repository.Lock
	if s.locker != nil {
		var err error
		lock, err = s.locker.Obtain(ctx, importLockKey(vendorID), importLockTTL)
		if errors.Is(err, repository.ErrLockNotObtained) {
			return nil, apperror.NewConflictError("An import is already running for this vendor")
		}
		if err != nil {
			return nil, err
		}
	}

	job := &entity.ImportJob{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Status:    entity.ImportJobQueued,
		Total:     len(rows),
		CreatedAt: time.Now(),
	}
	if err := s.saveJob(ctx, job); err != nil {
		if lock != nil {
			_ = lock.Release(ctx)
		}
		return nil, err
	}

	snapshot := *job
	go s.run(context.WithoutCancel(ctx), job, rows, lock)
	return &snapshot, nil
}

// GetJob returns the progress of an import
func (s *ImportService) GetJob(ctx context.Context, vendorID, id uuid.UUID) (*entity.ImportJob, error) {
	if s.jobs == nil {
		return nil, apperror.NewNotFoundError("Import job")
	}
	job, err := s.jobs.Get(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NewNotFoundError("Import job")
	}
	return job, nil
}

func (s *ImportService) saveJob(ctx context.Context, job *entity.ImportJob) error {
	if s.jobs == nil {
		return nil
	}
	return s.jobs.Save(ctx, job)
}

func (s *ImportService) run(ctx context.Context, job *entity.ImportJob, rows []CreateCustomerInput, lock repository.Lock) {
	if lock != nil {
		defer func() {
			if err := lock.Release(ctx); err != nil {
				logger.LogError("import", "run", "release lock", job.ID, err)
			}
		}()
	}

	job.Status = entity.ImportJobRunning
	s.persist(ctx, job)

	customers := make([]entity.Customer, 0, len(rows))
	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			job.Errors = append(job.Errors, fmt.Sprintf("row %d: name is required", i+1))
			continue
		}
		mobile, err := phone.Normalize(row.Mobile, s.region)
		if err != nil {
			job.Errors = append(job.Errors, fmt.Sprintf("row %d: %s", i+1, err.Error()))
			continue
		}
		customers = append(customers, entity.Customer{
			VendorID: job.VendorID,
			Name:     name,
			Mobile:   mobile,
			Email:    row.Email,
			GSTIN:    row.GSTIN,
			Address:  row.Address,
		})
	}
	customers = lo.UniqBy(customers, func(c entity.Customer) string { return c.Mobile })

	for _, batch := range lo.Chunk(customers, importBatchSize) {
		inserted, err := s.customerRepo.CreateBatch(ctx, batch)
		if err != nil {
			s.finish(ctx, job, err)
			return
		}
		job.Imported += int(inserted)
		s.persist(ctx, job)
	}

	s.finish(ctx, job, nil)
}

func (s *ImportService) finish(ctx context.Context, job *entity.ImportJob, err error) {
	now := time.Now()
	job.FinishedAt = &now
	job.Skipped = job.Total - job.Imported
	job.Status = entity.ImportJobCompleted
	if err != nil {
		job.Status = entity.ImportJobFailed
		job.Errors = append(job.Errors, err.Error())
		logger.LogError("import", "run", "insert batch", job.ID, err)
	}
	s.persist(ctx, job)

	logger.Get().WithFields(logrus.Fields{
		"job_id":    job.ID,
		"vendor_id": job.VendorID,
		"status":    job.Status,
		"imported":  job.Imported,
		"skipped":   job.Skipped,
	}).Info("customer import finished")
}

func (s *ImportService) persist(ctx context.Context, job *entity.ImportJob) {
	if err := s.saveJob(ctx, job); err != nil {
		logger.LogError("import", "persist", "save job", job.ID, err)
	}
}
