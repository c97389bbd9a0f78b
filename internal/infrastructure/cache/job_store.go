package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
)

// ImportJobTTL is how long a finished or abandoned import stays pollable
const ImportJobTTL = 24 * time.Hour

func importJobKey(vendorID, id uuid.UUID) string {
	return fmt.Sprintf("import:%s:%s", vendorID, id)
}

type redisJobStore struct {
	rdb *redis.Client
}

// NewRedisJobStore tracks import jobs in Redis
func NewRedisJobStore(rdb *redis.Client) domainRepo.ImportJobStore {
	return &redisJobStore{rdb: rdb}
}

func (s *redisJobStore) Save(ctx context.Context, job *entity.ImportJob) error {
	return setObject(ctx, s.rdb, importJobKey(job.VendorID, job.ID), job, ImportJobTTL)
}

func (s *redisJobStore) Get(ctx context.Context, vendorID, id uuid.UUID) (*entity.ImportJob, error) {
	var job entity.ImportJob
	found, err := getObject(ctx, s.rdb, importJobKey(vendorID, id), &job)
	if err != nil || !found {
		return nil, err
	}
	return &job, nil
}
