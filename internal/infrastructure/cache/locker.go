package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
)

type redisLocker struct {
	client *redislock.Client
}

// NewRedisLocker hands out Redis locks through redislock
func NewRedisLocker(client *redislock.Client) domainRepo.Locker {
	return &redisLocker{client: client}
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (domainRepo.Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domainRepo.ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}
