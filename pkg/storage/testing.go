package storage

import "github.com/redis/rueidis"

// NewRedisForTest wraps an existing client, typically a rueidis mock.
func NewRedisForTest(c rueidis.Client, prefix string) *Redis {
	return newRedis(c, prefix)
}
