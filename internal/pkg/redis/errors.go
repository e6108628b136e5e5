package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNil           = redis.Nil // key does not exist
	ErrClosed        = errors.New("redis: client is closed")
	ErrInvalidConfig = errors.New("redis: invalid configuration")
)

// IsNil reports whether err is a key-not-found error.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
