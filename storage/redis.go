package storage

import (
	"log"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

// InitializeRedis connects the shared client used for refresh tokens and the
// property list cache. The server stays usable without Redis; callers treat
// cache errors as misses.
func InitializeRedis(addr string) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	log.Println("Redis initialized with address:", addr)
}
