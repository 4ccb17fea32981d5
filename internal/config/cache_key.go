package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizDefinitionKey returns the cache key for a quiz's full definition,
// answer key included.
func (r *CacheKeyStruct) QuizDefinitionKey(quizID int64) string {
	return fmt.Sprintf("quiz:%d:definition", quizID)
}

// AttemptSelectionsKey returns the hash key holding a live attempt's
// question → choice selections.
func (r *CacheKeyStruct) AttemptSelectionsKey(quizID int64, attemptID string) string {
	return fmt.Sprintf("quiz:%d:attempt:%s:selections", quizID, attemptID)
}

// SubmitRateKey returns the rate limit counter key for a client on a route.
func (r *CacheKeyStruct) SubmitRateKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:submit:%s", clientIP)
}

var CacheKey = NewCacheKeyStruct()
