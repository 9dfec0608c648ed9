package utils

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetCacheData returns (nil, nil) on a cache miss or when rdb is nil.
func GetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string) (*T, *app_error.AppError) {
	if rdb == nil {
		return nil, nil
	}

	val, err := rdb.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "unexpected error occur when trying to get from redis", app_error.FieldRedis)
	}

	var data T
	if err := json.Unmarshal(val, &data); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "unexpected error occur when unmarshal json", "json")
	}

	return &data, nil
}

func SetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string, data *T, expire time.Duration) error {
	if rdb == nil {
		return nil
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, "unexpected error occur when marshal json", "json")
	}

	return rdb.Set(ctx, cacheKey, bytes, expire).Err()
}

func DeleteCacheData(ctx context.Context, rdb *redis.Client, cacheKey string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, cacheKey).Err()
}

// CacheGeneration reads the write counter guarding a cache entry. A missing
// counter is generation 0.
func CacheGeneration(ctx context.Context, rdb *redis.Client, genKey string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	gen, err := rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// BumpCacheGeneration marks every read that started before it as stale.
func BumpCacheGeneration(ctx context.Context, rdb *redis.Client, genKey string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Incr(ctx, genKey).Err()
}

// SetCacheDataIfGeneration stores data only while genKey still holds gen,
// so a read that raced a write cannot put the old value back. It reports
// whether the value was stored.
func SetCacheDataIfGeneration[T any](ctx context.Context, rdb *redis.Client, cacheKey, genKey string, gen int64, data *T, expire time.Duration) (bool, error) {
	if rdb == nil {
		return false, nil
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return false, app_error.NewAppError(http.StatusInternalServerError, "unexpected error occur when marshal json", "json")
	}

	stored := false
	err = rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey, bytes, expire)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

func UserCacheKey(id string) string {
	return "personnel:user:" + id
}

func UserCacheGenKey(id string) string {
	return UserCacheKey(id) + ":gen"
}
