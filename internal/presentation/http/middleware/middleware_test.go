package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/config"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, jwt *utils.JWTManager, subject utils.TokenSubject) map[string]string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(subject)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthMiddleware(t *testing.T) {
	jwt := utils.NewJWTManager("test-secret", time.Hour, time.Hour)
	vendorID := uuid.New()
	userID := uuid.New()

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwt), func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "role": identity.Role, "vendor_id": identity.VendorID})
	})

	w := serve(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := utils.NewJWTManager("other-secret", time.Hour, time.Hour)
	w = serve(r, http.MethodGet, "/me", bearer(t, other, utils.TokenSubject{UserID: userID, Role: "vendor"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", bearer(t, jwt, utils.TokenSubject{UserID: userID, Role: "auditor"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "unknown roles are rejected")

	w = serve(r, http.MethodGet, "/me", bearer(t, jwt, utils.TokenSubject{UserID: userID, Role: "vendor", VendorID: &vendorID}))
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, userID.String(), got["user_id"])
	assert.Equal(t, "vendor", got["role"])
	assert.Equal(t, vendorID.String(), got["vendor_id"])
}

func TestRequireRole(t *testing.T) {
	jwt := utils.NewJWTManager("test-secret", time.Hour, time.Hour)
	vendorID := uuid.New()

	r := gin.New()
	r.GET("/admin", AuthMiddleware(jwt), RequireRole(enum.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/open", RequireRole(enum.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodGet, "/admin", bearer(t, jwt, utils.TokenSubject{UserID: uuid.New(), Role: "vendor", VendorID: &vendorID}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodGet, "/admin", bearer(t, jwt, utils.TokenSubject{UserID: uuid.New(), Role: "admin"}))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodGet, "/open", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "no identity in context")
}

func TestVendorScope(t *testing.T) {
	jwt := utils.NewJWTManager("test-secret", time.Hour, time.Hour)
	vendorID := uuid.New()
	resolver := service.NewScopeResolver(nil, nil)

	r := gin.New()
	r.GET("/books", AuthMiddleware(jwt), VendorScope(resolver), func(c *gin.Context) {
		c.String(http.StatusOK, GetVendorID(c).String())
	})

	vendor := bearer(t, jwt, utils.TokenSubject{UserID: uuid.New(), Role: "vendor", VendorID: &vendorID})
	vendor[VendorHeader] = uuid.NewString()
	w := serve(r, http.MethodGet, "/books", vendor)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, vendorID.String(), w.Body.String(), "vendors cannot switch books")

	admin := bearer(t, jwt, utils.TokenSubject{UserID: uuid.New(), Role: "admin"})
	w = serve(r, http.MethodGet, "/books", admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, w).Reason)

	w = serve(r, http.MethodGet, "/books?vendor_id=nope", admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	orphan := bearer(t, jwt, utils.TokenSubject{UserID: uuid.New(), Role: "vendor"})
	w = serve(r, http.MethodGet, "/books", orphan)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, uuid.Nil, GetVendorID(&gin.Context{}))
}

func TestRateLimiterKeysByVendor(t *testing.T) {
	rl := NewVendorRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	first, second := uuid.New(), uuid.New()

	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		if raw := c.Query("vendor"); raw != "" {
			c.Set(vendorIDKey, uuid.MustParse(raw))
		}
		c.Next()
	}, rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/ping?vendor="+first.String(), nil).Code)
	w := serve(r, http.MethodGet, "/ping?vendor="+first.String(), nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/ping?vendor="+second.String(), nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/ping", nil).Code, "anonymous traffic has its own bucket")
	assert.Equal(t, 3, rl.Stats()["active_keys"])
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewVendorRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, EntryTTL: time.Minute})
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter("vendor:a")

	now = now.Add(2 * time.Minute)
	rl.getLimiter("vendor:b")
	rl.cleanup()

	assert.Equal(t, 1, rl.Stats()["active_keys"])
}

func TestRateLimiterConfigFrom(t *testing.T) {
	cfg := RateLimiterConfigFrom(configRateLimit(120, 60))
	assert.InDelta(t, 2.0, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 120, cfg.BurstSize)

	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFrom(configRateLimit(0, 0)))
}

type memIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newMemIdempotencyRepo() *memIdempotencyRepo {
	return &memIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
}

func (r *memIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.keys[userID.String()+"/"+key]; ok {
		cp := *k
		return &cp, nil
	}
	return nil, nil
}

func (r *memIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[ikey.UserID.String()+"/"+ikey.Key] = ikey
	return nil
}

func (r *memIdempotencyRepo) DeleteExpired(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.keys {
		if v.IsExpired() {
			delete(r.keys, k)
		}
	}
	return nil
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	repo := newMemIdempotencyRepo()
	userID := uuid.New()
	calls := 0

	r := gin.New()
	withUser := func(c *gin.Context) { c.Set(userIDKey, userID); c.Next() }
	idem := Idempotency(IdempotencyConfig{Repo: repo})
	r.POST("/payments", withUser, idem, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})
	r.POST("/bills", withUser, idem, func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	key := map[string]string{IdempotencyKeyHeader: "abc-123"}
	w := serve(r, http.MethodPost, "/payments", key)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"call":1}`, w.Body.String())

	w = serve(r, http.MethodPost, "/payments", key)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"call":1}`, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 1, calls)

	w = serve(r, http.MethodPost, "/bills", key)
	assert.Equal(t, http.StatusConflict, w.Code, "a key is bound to its endpoint")

	serve(r, http.MethodPost, "/payments", nil)
	assert.Equal(t, 2, calls, "requests without a key always run")
}

func TestIdempotencyExpiredKeyRunsAgain(t *testing.T) {
	repo := newMemIdempotencyRepo()
	userID := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &entity.IdempotencyKey{
		Key: "k", UserID: userID, Endpoint: "POST /payments", ResponseCode: 201, ResponseBody: `{}`,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	r := gin.New()
	r.POST("/payments", func(c *gin.Context) { c.Set(userIDKey, userID); c.Next() },
		Idempotency(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"fresh": true}) })

	w := serve(r, http.MethodPost, "/payments", map[string]string{IdempotencyKeyHeader: "k"})
	assert.JSONEq(t, `{"fresh":true}`, w.Body.String())

	stored, err := repo.GetByKey(context.Background(), "k", userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsExpired())
}

func TestIdempotencyRequired(t *testing.T) {
	r := gin.New()
	r.POST("/payments", func(c *gin.Context) { c.Set(userIDKey, uuid.New()); c.Next() },
		Idempotency(IdempotencyConfig{Repo: newMemIdempotencyRepo(), Required: true}),
		func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := serve(r, http.MethodPost, "/payments", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w).Reason)
}

func TestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggerMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, http.MethodGet, "/x", map[string]string{"X-Request-ID": "req-1"})
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func configRateLimit(requests, seconds int) config.RateLimitConfig {
	return config.RateLimitConfig{Requests: requests, Duration: seconds}
}
