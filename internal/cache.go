package internal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var rdb *redis.Client
var ctx = context.Background()
var memCache *cache.Cache

var redisDataExpiration time.Duration
var memoryDataExpiration time.Duration

var redisInitialized bool

// InitCache initializes the tiered cache: a short-lived in-memory tier backed
// by redis. With dryRun set only the memory tier is used.
func InitCache(redisURI string, redisPassword string, redisDB int, dryRun string) {
	redisDataExpiration = 1 * time.Hour
	memoryDataExpiration = 10 * time.Second
	memCache = cache.New(memoryDataExpiration, 20*time.Second)

	if dryRun == "True" || dryRun == "true" {
		zap.S().Infof("Running cache in DRY_RUN mode. Redis will not be used")
		return
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     redisURI,
		Password: redisPassword,
		DB:       redisDB,
	})
	redisInitialized = true
}

func IsRedisAvailable() bool {
	if !redisInitialized {
		zap.S().Warn("Redis is not initialized")
		return false
	}
	if rdb != nil {
		timeout, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		statusCmd := rdb.Ping(timeout)

		if statusCmd != nil && statusCmd.Val() == "PONG" {
			return true
		}
		zap.S().Debugf("Redis Error: %s", statusCmd)
	}
	return false
}

// GetTiered attempts to get a key from the memory cache, falling back to redis
func GetTiered(key string) (cached bool, value []byte) {
	raw, cached := memCache.Get(key)
	if cached {
		value, cached = raw.([]byte)
		return cached, value
	}
	if !redisInitialized {
		return false, nil
	}

	deadline := time.Now().Add(memoryDataExpiration)
	getCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	value, err := rdb.Get(getCtx, key).Bytes()
	if err != nil {
		return false, nil
	}

	// write back to the memory tier
	memCache.SetDefault(key, value)
	return true, value
}

// SetTiered sets both tiers; the redis expiration bounds cross-instance staleness
func SetTiered(key string, value []byte, redisExpiration time.Duration) {
	memCache.SetDefault(key, value)
	if redisInitialized {
		rdb.Set(ctx, key, value, redisExpiration)
	}
}

// SetTieredLongTerm is a helper that calls SetTiered with the default redis expiration
func SetTieredLongTerm(key string, value []byte) {
	SetTiered(key, value, redisDataExpiration)
}

// InvalidateTiered drops a key from both tiers, typically in response to a
// change feed event from another writer
func InvalidateTiered(key string) {
	memCache.Delete(key)
	if redisInitialized {
		rdb.Del(ctx, key)
	}
}

// GetTieredJSON unmarshals a tiered cache hit into target, reporting a miss on
// decode failure
func GetTieredJSON(key string, target any) bool {
	cached, value := GetTiered(key)
	if !cached {
		return false
	}
	err := json.Unmarshal(value, target)
	if err != nil {
		zap.S().Warnf("Failed to decode cache entry %s: %s", key, err)
		InvalidateTiered(key)
		return false
	}
	return true
}

// SetTieredJSON marshals value into both cache tiers
func SetTieredJSON(key string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		zap.S().Warnf("Failed to encode cache entry %s: %s", key, err)
		return
	}
	SetTieredLongTerm(key, encoded)
}

// AvailabilityIndexKey is the cache key for a machine's unavailable hours over
// a date window
func AvailabilityIndexKey(machineId int, from time.Time, to time.Time) string {
	hash := AsXXHash(
		[]byte("availability"),
		[]byte(strconv.Itoa(machineId)),
		[]byte(from.UTC().Format("2006-01-02")),
		[]byte(to.UTC().Format("2006-01-02")))
	return fmt.Sprintf("avl-%x", hash)
}

// MachineListKey is the cache key for the full machine list
func MachineListKey() string {
	return "machines-all"
}

// InvalidateAvailabilityIndex drops every cached availability window. A redis
// SCAN per machine would be more precise, but the index is small and rebuilt
// cheaply.
func InvalidateAvailabilityIndex() {
	for key := range memCache.Items() {
		if len(key) > 4 && key[:4] == "avl-" {
			memCache.Delete(key)
		}
	}
	if redisInitialized {
		iter := rdb.Scan(ctx, 0, "avl-*", 0).Iterator()
		for iter.Next(ctx) {
			rdb.Del(ctx, iter.Val())
		}
	}
}
