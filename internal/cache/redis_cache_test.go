package cache_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tireserve/platform/internal/cache"
	"github.com/tireserve/platform/internal/config"
)

type cachedPart struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func setup(t *testing.T) (cache.Cache, redismock.ClientMock, *config.CacheConfig) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	cfg := &config.CacheConfig{
		DefaultTTL: 10 * time.Minute,
	}

	return cache.NewRedisCache(client, cfg), mock, cfg
}

func TestGet(t *testing.T) {
	ctx := t.Context()
	key := cache.Key(cache.PartKeyPrefix, "205-55-r16")
	part := cachedPart{Name: "All-season 205/55 R16", Price: 8999}
	jsonData, err := json.Marshal(part)
	require.NoError(t, err)

	t.Run("Hit", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)

		var result cachedPart

		mock.ExpectGet(key).SetVal(string(jsonData))

		// Act
		found, err := partCache.Get(ctx, key, &result)

		// Assert
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, part, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)

		var result cachedPart

		mock.ExpectGet(key).SetErr(redis.Nil)

		// Act
		found, err := partCache.Get(ctx, key, &result)

		// Assert
		require.NoError(t, err, "a cache miss is not an error")
		assert.False(t, found)
		assert.Empty(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)

		var result cachedPart

		expectedErr := errors.New("redis connection error")

		mock.ExpectGet(key).SetErr(expectedErr)

		// Act
		found, err := partCache.Get(ctx, key, &result)

		// Assert
		require.Error(t, err)
		assert.False(t, found)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CorruptPayload", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)

		var result cachedPart

		mock.ExpectGet(key).SetVal(`{"name": "valid", "price": "not-a-number"}`)

		// Act
		found, err := partCache.Get(ctx, key, &result)

		// Assert
		require.Error(t, err)
		assert.False(t, found)

		var jsonErr *json.UnmarshalTypeError

		assert.ErrorAs(t, err, &jsonErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSet(t *testing.T) {
	ctx := t.Context()
	key := cache.Key(cache.PartKeyPrefix, "205-55-r16")
	part := cachedPart{Name: "All-season 205/55 R16", Price: 8999}
	jsonData, err := json.Marshal(part)
	require.NoError(t, err)

	t.Run("ExplicitTTL", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)
		ttl := 5 * time.Minute

		mock.ExpectSet(key, jsonData, ttl).SetVal("OK")

		// Act
		err := partCache.Set(ctx, key, part, ttl)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ZeroTTLUsesDefault", func(t *testing.T) {
		// Arrange
		partCache, mock, cfg := setup(t)

		mock.ExpectSet(key, jsonData, cfg.DefaultTTL).SetVal("OK")

		// Act
		err := partCache.Set(ctx, key, part, 0)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnmarshallableValue", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)

		// Act
		err := partCache.Set(ctx, key, make(chan int), time.Minute)

		// Assert
		require.Error(t, err)

		var jsonErr *json.UnsupportedTypeError

		assert.ErrorAs(t, err, &jsonErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)
		expectedErr := errors.New("redis SET failed")

		mock.ExpectSet(key, jsonData, time.Minute).SetErr(expectedErr)

		// Act
		err := partCache.Set(ctx, key, part, time.Minute)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	ctx := t.Context()
	key := cache.Key(cache.PartKeyPrefix, "205-55-r16")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)

		mock.ExpectDel(key).SetVal(1)

		// Act
		err := partCache.Delete(ctx, key)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		// Arrange
		partCache, mock, _ := setup(t)
		expectedErr := errors.New("redis DEL failed")

		mock.ExpectDel(key).SetErr(expectedErr)

		// Act
		err := partCache.Delete(ctx, key)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "part:abc", cache.Key(cache.PartKeyPrefix, "abc"))
	assert.Equal(t, "part:", cache.Key(cache.PartKeyPrefix, ""))
}
