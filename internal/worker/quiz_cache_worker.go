package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	WarmBatchSize    = 50
	WarmBatchTimeout = 2 * time.Second
	WarmPollTimeout  = 1 * time.Second
	// MaxWarmAttempts bounds how often a failing id is retried before it is
	// dropped.
	MaxWarmAttempts = 5
	shutdownFlush   = 5 * time.Second
)

// Warmer reloads one quiz definition into the cache.
type Warmer interface {
	WarmCache(ctx context.Context, quizID int64) error
}

// QuizCacheWorker drains the warm queue filled whenever an author saves a
// quiz. Ids are batched so a burst of saves to the same quiz reloads it once.
type QuizCacheWorker struct {
	queue  Queue
	warmer Warmer
	log    zerolog.Logger
}

func NewQuizCacheWorker(queue Queue, warmer Warmer, log zerolog.Logger) *QuizCacheWorker {
	return &QuizCacheWorker{
		queue:  queue,
		warmer: warmer,
		log:    log.With().Str("component", "quiz_cache_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled, then flushes what it already popped.
func (w *QuizCacheWorker) Start(ctx context.Context) {
	w.log.Info().Msg("QuizCacheWorker started")

	batch := newIDBatch()
	lastFlush := time.Now()

	for {
		if batch.len() > 0 &&
			(batch.len() >= WarmBatchSize || time.Since(lastFlush) >= WarmBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = newIDBatch()
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", batch.len()).Msg("Shutdown requested. Flushing remaining batch...")
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlush)
			w.flushSafe(flushCtx, batch)
			cancel()
			return

		default:
			raw, ok, err := w.queue.Pop(ctx, WarmPollTimeout)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Queue pop error")
					// Avoid spinning while redis is unreachable.
					time.Sleep(WarmPollTimeout)
				}
				continue
			}
			if !ok {
				continue
			}

			id, attempt, err := parseWarmPayload(raw)
			if err != nil {
				w.log.Error().Err(err).Str("payload", raw).Msg("Invalid quiz id payload")
				continue
			}
			batch.add(id, attempt)
		}
	}
}

// flushSafe warms every quiz of the batch. Failed ids go back on the queue
// with their attempt count, until MaxWarmAttempts is reached.
func (w *QuizCacheWorker) flushSafe(ctx context.Context, batch *idBatch) {
	if batch.len() == 0 {
		return
	}

	var failed []string
	dropped := 0
	for _, id := range batch.ids {
		err := w.warmer.WarmCache(ctx, id)
		if err == nil {
			continue
		}
		attempt := batch.attempts[id] + 1
		if attempt >= MaxWarmAttempts {
			w.log.Error().Err(err).Int64("quiz_id", id).Int("attempts", attempt).Msg("Warm failed, giving up")
			dropped++
			continue
		}
		w.log.Warn().Err(err).Int64("quiz_id", id).Int("attempts", attempt).Msg("Warm failed, requeueing")
		failed = append(failed, warmPayload(id, attempt))
	}

	if len(failed) > 0 {
		if err := w.queue.Push(ctx, failed...); err != nil {
			w.log.Error().Err(err).Int("count", len(failed)).Msg("Requeue failed, entries dropped")
		}
	}
	w.log.Debug().
		Int("warmed", batch.len()-len(failed)-dropped).
		Int("requeued", len(failed)).
		Int("dropped", dropped).
		Msg("Batch flushed")
}

// Queue payloads are "<quiz id>" for a first try and "<quiz id>:<failed
// attempts>" for a retry.
func warmPayload(id int64, attempt int) string {
	if attempt == 0 {
		return strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%d:%d", id, attempt)
}

func parseWarmPayload(raw string) (int64, int, error) {
	idPart, attemptPart, retry := strings.Cut(raw, ":")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id < 1 {
		return 0, 0, fmt.Errorf("bad quiz id %q", idPart)
	}
	if !retry {
		return id, 0, nil
	}
	attempt, err := strconv.Atoi(attemptPart)
	if err != nil || attempt < 0 {
		return 0, 0, fmt.Errorf("bad attempt count %q", attemptPart)
	}
	return id, attempt, nil
}

// idBatch keeps first-seen order and drops duplicates. A duplicate keeps the
// highest attempt count seen.
type idBatch struct {
	ids      []int64
	attempts map[int64]int
}

func newIDBatch() *idBatch {
	return &idBatch{ids: make([]int64, 0, WarmBatchSize), attempts: make(map[int64]int)}
}

func (b *idBatch) add(id int64, attempt int) {
	if prev, dup := b.attempts[id]; dup {
		b.attempts[id] = max(prev, attempt)
		return
	}
	b.attempts[id] = attempt
	b.ids = append(b.ids, id)
}

func (b *idBatch) len() int { return len(b.ids) }
