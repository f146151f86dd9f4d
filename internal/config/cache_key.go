package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session (jti).
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// TestPaperKey returns the cache key for a test's student-facing paper
// (questions and options with correctness stripped).
func (r *CacheKeyStruct) TestPaperKey(testID string) string {
	return fmt.Sprintf("test:%s:paper", testID)
}

// TestMonitorChannel returns the Redis PubSub channel name for a test's
// live attempt-progress events.
func (r *CacheKeyStruct) TestMonitorChannel(testID string) string {
	return fmt.Sprintf("test:%s:monitor", testID)
}

var CacheKey = NewCacheKeyStruct()
