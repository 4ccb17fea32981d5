package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Juenzo/CloudComputing-Project/internal/config"
	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
)

// ErrCacheMiss is returned by QuizCache lookups that found nothing.
var ErrCacheMiss = errors.New("cache miss")

// QuizCache holds quiz definitions (answer key included) for grading without
// a database round trip, and the selections of live attempts.
type QuizCache interface {
	GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error)
	// SetQuiz overwrites the cached definition. Writers use it right after
	// saving.
	SetQuiz(ctx context.Context, q *model.Quiz, ttl time.Duration) error
	// FillQuiz stores the definition only when nothing is cached, so a read
	// that raced a save cannot replace the saved version. It reports whether
	// the entry was written.
	FillQuiz(ctx context.Context, q *model.Quiz, ttl time.Duration) (bool, error)
	DeleteQuiz(ctx context.Context, quizID int64) error
	// EnqueueWarm asks the cache worker to reload a quiz from the database.
	EnqueueWarm(ctx context.Context, quizID int64) error

	SaveSelection(ctx context.Context, quizID int64, attemptID string, questionID, choiceID int64, ttl time.Duration) error
	Selections(ctx context.Context, quizID int64, attemptID string) (map[int64]int64, error)
	ClearAttempt(ctx context.Context, quizID int64, attemptID string) error
}

// RedisQuizCache implements QuizCache on redis.
type RedisQuizCache struct {
	rdb *redis.Client
}

func NewRedisQuizCache(rdb *redis.Client) *RedisQuizCache {
	return &RedisQuizCache{rdb: rdb}
}

func (c *RedisQuizCache) GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.QuizDefinitionKey(quizID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get quiz definition: %w", err)
	}
	var q model.Quiz
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal quiz definition: %w", err)
	}
	return &q, nil
}

func (c *RedisQuizCache) SetQuiz(ctx context.Context, q *model.Quiz, ttl time.Duration) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quiz definition: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.QuizDefinitionKey(q.ID), data, ttl).Err()
}

func (c *RedisQuizCache) FillQuiz(ctx context.Context, q *model.Quiz, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return false, fmt.Errorf("marshal quiz definition: %w", err)
	}
	return c.rdb.SetNX(ctx, config.CacheKey.QuizDefinitionKey(q.ID), data, ttl).Result()
}

func (c *RedisQuizCache) DeleteQuiz(ctx context.Context, quizID int64) error {
	return c.rdb.Del(ctx, config.CacheKey.QuizDefinitionKey(quizID)).Err()
}

func (c *RedisQuizCache) EnqueueWarm(ctx context.Context, quizID int64) error {
	return c.rdb.RPush(ctx, config.WorkerKey.WarmQuizCacheQueue, quizID).Err()
}

// SaveSelection records one answer and refreshes the attempt's expiry in a
// single round trip.
func (c *RedisQuizCache) SaveSelection(ctx context.Context, quizID int64, attemptID string, questionID, choiceID int64, ttl time.Duration) error {
	key := config.CacheKey.AttemptSelectionsKey(quizID, attemptID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatInt(questionID, 10), strconv.FormatInt(choiceID, 10))
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisQuizCache) Selections(ctx context.Context, quizID int64, attemptID string) (map[int64]int64, error) {
	raw, err := c.rdb.HGetAll(ctx, config.CacheKey.AttemptSelectionsKey(quizID, attemptID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get selections: %w", err)
	}
	return quiz.ParseSelections(raw), nil
}

func (c *RedisQuizCache) ClearAttempt(ctx context.Context, quizID int64, attemptID string) error {
	return c.rdb.Del(ctx, config.CacheKey.AttemptSelectionsKey(quizID, attemptID)).Err()
}
