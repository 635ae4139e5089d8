package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"halo-summarizer/internal/llm"
)

type fakeRedis struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	default:
		f.values[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStoreEmptyReturnsDefaults(t *testing.T) {
	st := newRedisStore(newFakeRedis())

	got, err := st.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	st := newRedisStore(fake)
	ctx := context.Background()

	want := Settings{Provider: llm.ProviderGroq, GeminiAPIKey: "g", GroqAPIKey: "q"}
	require.NoError(t, st.Save(ctx, want))
	assert.JSONEq(t, `{"aiProvider":"groq","geminiApiKey":"g","groqApiKey":"q"}`, fake.values[redisKey])

	got, err := st.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStoreSaveFillsProvider(t *testing.T) {
	st := newRedisStore(newFakeRedis())
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Settings{GeminiAPIKey: "g"}))

	got, err := st.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultProvider, got.Provider)
}

func TestRedisStoreErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		fake := newFakeRedis()
		fake.getErr = errors.New("connection reset")

		_, err := newRedisStore(fake).Get(context.Background())
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("corrupt value", func(t *testing.T) {
		fake := newFakeRedis()
		fake.values[redisKey] = "{not json"

		_, err := newRedisStore(fake).Get(context.Background())
		assert.ErrorContains(t, err, "decode settings")
	})
}

func TestRedisStoreClose(t *testing.T) {
	fake := newFakeRedis()
	require.NoError(t, newRedisStore(fake).Close())
	assert.True(t, fake.closed)
}
