package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"fieldops-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// TrainingCaptureStream is the Redis stream the learning pipeline reads.
const TrainingCaptureStream = "training:prefield_checklists"

// TrainingCapture forwards raw pre-field checklists to the learning
// pipeline. Implementations are best-effort: callers log failures and
// never propagate them.
type TrainingCapture interface {
	CaptureChecklist(ctx context.Context, jobID int, actorID int, decisions map[string]models.ChecklistDecision)
}

// RedisTrainingCapture publishes checklist events to a Redis stream,
// consumed asynchronously by the learning pipeline. A nil client means
// Redis is down; events are dropped silently, matching the contract that
// training capture never affects the main operation.
type RedisTrainingCapture struct {
	client *redis.Client
}

func NewRedisTrainingCapture(client *redis.Client) *RedisTrainingCapture {
	return &RedisTrainingCapture{client: client}
}

func (t *RedisTrainingCapture) CaptureChecklist(ctx context.Context, jobID int, actorID int, decisions map[string]models.ChecklistDecision) {
	if t.client == nil {
		return
	}

	payload, err := json.Marshal(decisions)
	if err != nil {
		log.Printf("[TrainingCapture] marshal checklist for job %d: %v", jobID, err)
		return
	}

	// Detach from the request context: the emit happens after the main
	// write commits and must not block or fail the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := t.client.XAdd(ctx, &redis.XAddArgs{
			Stream: TrainingCaptureStream,
			Values: map[string]interface{}{
				"job_id":      jobID,
				"actor_id":    actorID,
				"decisions":   string(payload),
				"captured_at": time.Now().UTC().Format(time.RFC3339),
			},
		}).Err()
		if err != nil {
			log.Printf("[TrainingCapture] publish checklist for job %d: %v", jobID, err)
		}
	}()
}
