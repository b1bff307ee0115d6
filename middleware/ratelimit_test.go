package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(60, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be within burst", i+1)
	}

	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "third immediate request should be limited")

	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other keys have their own bucket")
}

func TestMemoryLimiterSweepsIdleVisitors(t *testing.T) {
	limiter := NewMemoryLimiter(60, 1)
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "idle")
	limiter.visitors["idle"].lastSeen = time.Now().Add(-time.Hour)
	limiter.lastSweep = time.Now().Add(-2 * time.Minute)

	_, _ = limiter.Allow(ctx, "fresh")

	_, exists := limiter.visitors["idle"]
	assert.False(t, exists)
	assert.Contains(t, limiter.visitors, "fresh")
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		limiter        *stubLimiter
		expectedStatus int
	}{
		{"allowed", &stubLimiter{allowed: true}, http.StatusOK},
		{"limited", &stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter error fails open", &stubLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/api/upload", RateLimit(tt.limiter, ClientIPKey), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
			req.RemoteAddr = "192.168.1.5:4000"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			require.Len(t, tt.limiter.keys, 1)
			assert.Equal(t, "/api/upload|192.168.1.5", tt.limiter.keys[0])
			if tt.expectedStatus == http.StatusTooManyRequests {
				assert.Contains(t, w.Body.String(), "RATE_LIMITED")
			}
		})
	}
}

func TestRateLimitWithMemoryLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/api/auth/forgot-password/request", RateLimit(NewMemoryLimiter(60, 1), ClientIPKey), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password/request", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRedisLimiterUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewRedisLimiter(client, "ratelimit", 5, time.Minute)
	ok, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
	assert.False(t, ok)
}

// fakeRedis answers transactional SET NX and INCR from memory so the limiter
// can run without a server. Every transaction's command names are recorded.
type fakeRedis struct {
	counters     map[string]int64
	transactions [][]string
	expiries     map[string]interface{}
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return errors.New("unexpected command outside a transaction: " + cmd.Name())
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		var names []string
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
			args := cmd.Args()
			switch c := cmd.(type) {
			case *redis.BoolCmd:
				key := args[1].(string)
				_, exists := f.counters[key]
				if !exists {
					f.counters[key] = 0
					f.expiries[key] = args[4]
				}
				c.SetVal(!exists)
			case *redis.IntCmd:
				key := args[1].(string)
				f.counters[key]++
				c.SetVal(f.counters[key])
			}
		}
		f.transactions = append(f.transactions, names)
		return nil
	}
}

func TestRedisLimiterSetsExpiryWithIncrement(t *testing.T) {
	fake := &fakeRedis{counters: map[string]int64{}, expiries: map[string]interface{}{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(fake)
	defer client.Close()

	limiter := NewRedisLimiter(client, "ratelimit", 2, time.Minute)
	for i, want := range []bool{true, true, false} {
		ok, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i+1)
	}

	require.Len(t, fake.transactions, 3)
	for _, names := range fake.transactions {
		assert.Equal(t, []string{"multi", "set", "incr", "exec"}, names)
	}
	assert.EqualValues(t, 60, fake.expiries["ratelimit:10.0.0.1"])
	assert.EqualValues(t, 3, fake.counters["ratelimit:10.0.0.1"])
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 2, client.Options().DB)

	_, err = NewRedisClient("http://not-redis")
	assert.Error(t, err)
}
