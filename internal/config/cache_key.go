package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StaffSessionKey returns the cache key holding the active JWT ID for a
// staff member (single-device enforcement for proctor scan devices).
func (r *CacheKeyStruct) StaffSessionKey(staffID int) string {
	return fmt.Sprintf("login:%d", staffID)
}

// ScanFeedChannel returns the Redis PubSub channel carrying live scan
// verdicts for an exam session.
func (r *CacheKeyStruct) ScanFeedChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:scan_feed", sessionID)
}

var CacheKey = NewCacheKeyStruct()
