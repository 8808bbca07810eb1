package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const taskQueueKey = "ledger:tasks"

type Client struct {
	rdb *redis.Client
}

// Task is one fire-and-forget background job: post-commit recalculation,
// work-item status derivation, cost-summary refresh, or a notification.
// Tasks are best-effort; losing one never corrupts the ledger because the
// recalculator rebuilds aggregates from source records.
type Task struct {
	Type       string    `json:"type"`
	TargetID   uint      `json:"target_id"`
	ProjectID  uint      `json:"project_id"`
	Message    string    `json:"message,omitempty"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Task types consumed by the background worker.
const (
	TaskRecalculatePhase    = "recalculate_phase"
	TaskRecalculateCategory = "recalculate_category"
	TaskRecalculateProject  = "recalculate_project"
	TaskRecalculateWorkItem = "recalculate_work_item"
	TaskDeriveWorkItemStatus = "derive_work_item_status"
	TaskRefreshCostSummary  = "refresh_cost_summary"
	TaskNotify              = "notify"
)

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// EnqueueTask pushes a background task onto the queue.
func (c *Client) EnqueueTask(task *Task) error {
	ctx := context.Background()
	task.EnqueuedAt = time.Now()
	jsonData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	return c.rdb.LPush(ctx, taskQueueKey, jsonData).Err()
}

// DequeueTask blocks up to timeout waiting for the next task. Returns
// (nil, nil) when the queue stays empty.
func (c *Client) DequeueTask(timeout time.Duration) (*Task, error) {
	ctx := context.Background()
	vals, err := c.rdb.BRPop(ctx, timeout, taskQueueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop task: %w", err)
	}
	if len(vals) < 2 {
		return nil, nil
	}

	var task Task
	if err := json.Unmarshal([]byte(vals[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// Cost summary caching
func (c *Client) SetCostSummary(projectID uint, summary interface{}, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal cost summary: %w", err)
	}

	key := fmt.Sprintf("cost_summary:%d", projectID)
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

func (c *Client) GetCostSummary(projectID uint, dest interface{}) error {
	ctx := context.Background()
	key := fmt.Sprintf("cost_summary:%d", projectID)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("cost summary not found")
		}
		return fmt.Errorf("failed to get cost summary: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteCostSummary(projectID uint) error {
	ctx := context.Background()
	key := fmt.Sprintf("cost_summary:%d", projectID)
	return c.rdb.Del(ctx, key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
