package services

import (
	"log"

	"construction_manager/internal/redis"
)

// TaskQueue is the fire-and-forget background channel. Satisfied by
// *redis.Client; tests plug in a no-op.
type TaskQueue interface {
	EnqueueTask(task *redis.Task) error
}

// enqueue pushes a background task and swallows the error. Queue failures
// must never resurface into the caller's request; the recalculator can always
// repair aggregates on demand.
func enqueue(queue TaskQueue, task *redis.Task) {
	if queue == nil {
		return
	}
	if err := queue.EnqueueTask(task); err != nil {
		log.Printf("background task %s (target %d) not enqueued: %v", task.Type, task.TargetID, err)
	}
}
