package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
)

// ErrLockNotObtained is returned when another holder owns the lock
var ErrLockNotObtained = errors.New("lock not obtained")

// OTPKey identifies a pending one-time code
type OTPKey struct {
	VendorID uuid.UUID
	Mobile   string
	Purpose  string
}

// OTPEntry is a pending one-time code
type OTPEntry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// OTPStore keeps one-time codes in a TTL store
type OTPStore interface {
	Save(ctx context.Context, key OTPKey, entry *OTPEntry) error
	Get(ctx context.Context, key OTPKey) (*OTPEntry, error)
	Delete(ctx context.Context, key OTPKey) error
}

// ImportJobStore tracks background import progress
type ImportJobStore interface {
	Save(ctx context.Context, job *entity.ImportJob) error
	Get(ctx context.Context, vendorID, id uuid.UUID) (*entity.ImportJob, error)
}

// Lock is a held distributed lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out short-lived distributed locks
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
