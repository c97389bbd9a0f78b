package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
)

func otpKey(key domainRepo.OTPKey) string {
	return fmt.Sprintf("otp:%s:%s:%s", key.VendorID, key.Purpose, key.Mobile)
}

type redisOTPStore struct {
	rdb *redis.Client
}

// NewRedisOTPStore keeps one-time codes in Redis, expiring with the code
func NewRedisOTPStore(rdb *redis.Client) domainRepo.OTPStore {
	return &redisOTPStore{rdb: rdb}
}

func (s *redisOTPStore) Save(ctx context.Context, key domainRepo.OTPKey, entry *domainRepo.OTPEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	return setObject(ctx, s.rdb, otpKey(key), entry, ttl)
}

func (s *redisOTPStore) Get(ctx context.Context, key domainRepo.OTPKey) (*domainRepo.OTPEntry, error) {
	var entry domainRepo.OTPEntry
	found, err := getObject(ctx, s.rdb, otpKey(key), &entry)
	if err != nil || !found {
		return nil, err
	}
	return &entry, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, key domainRepo.OTPKey) error {
	return s.rdb.Del(ctx, otpKey(key)).Err()
}

type memoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]domainRepo.OTPEntry
}

// NewMemoryOTPStore is a process-local OTP store for running without Redis
func NewMemoryOTPStore() domainRepo.OTPStore {
	return &memoryOTPStore{entries: make(map[string]domainRepo.OTPEntry)}
}

func (s *memoryOTPStore) Save(_ context.Context, key domainRepo.OTPKey, entry *domainRepo.OTPEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[otpKey(key)] = *entry
	return nil
}

func (s *memoryOTPStore) Get(_ context.Context, key domainRepo.OTPKey) (*domainRepo.OTPEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[otpKey(key)]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(s.entries, otpKey(key))
		return nil, nil
	}
	return &entry, nil
}

func (s *memoryOTPStore) Delete(_ context.Context, key domainRepo.OTPKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, otpKey(key))
	return nil
}
