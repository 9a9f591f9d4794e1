package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key for a session looked up by token
func (r *CacheKeyStruct) SessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// LoginAttemptsKey returns the rate limit counter key for a client IP
func (r *CacheKeyStruct) LoginAttemptsKey(ip string) string {
	return fmt.Sprintf("ratelimit:login:%s", ip)
}

// AnnouncementChannel returns the Redis PubSub channel for new announcements
func (r *CacheKeyStruct) AnnouncementChannel() string {
	return "announcements:new"
}

// SessionSweepLockKey returns the lock held by the instance sweeping expired sessions
func (r *CacheKeyStruct) SessionSweepLockKey() string {
	return "lock:session_sweep"
}

var CacheKey = NewCacheKeyStruct()
