package worker

import (
	"context"
	"log"
	"time"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/redis"
	"construction_manager/internal/repository"
	"construction_manager/internal/services"
)

// maxAttempts bounds out-of-band retries of a failed background task.
const maxAttempts = 3

// Worker drains the background task queue: post-commit recalculations,
// derived status refreshes, summary cache refreshes and notifications. Every
// task is best effort; failures are logged and retried out-of-band, never
// surfaced to the request that enqueued them.
type Worker struct {
	queue    *redis.Client
	store    repository.Store
	recalc   *ledger.Recalculator
	cacheTTL time.Duration
	interval time.Duration
}

func New(queue *redis.Client, store repository.Store, cacheTTL, interval time.Duration) *Worker {
	return &Worker{
		queue:    queue,
		store:    store,
		recalc:   ledger.NewRecalculator(store),
		cacheTTL: cacheTTL,
		interval: interval,
	}
}

// Start runs the consume loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	log.Println("Background worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Background worker stopped")
			return
		default:
		}

		task, err := w.queue.DequeueTask(w.interval)
		if err != nil {
			log.Printf("Worker dequeue failed: %v", err)
			time.Sleep(w.interval)
			continue
		}
		if task == nil {
			continue
		}

		if err := w.process(task); err != nil {
			log.Printf("Background task %s (target %d) failed: %v", task.Type, task.TargetID, err)
			w.retry(task)
		}
	}
}

func (w *Worker) process(task *redis.Task) error {
	switch task.Type {
	case redis.TaskRecalculatePhase:
		return w.recalc.RecalculatePhase(task.TargetID)
	case redis.TaskRecalculateCategory:
		return w.recalc.RecalculateCategory(task.TargetID)
	case redis.TaskRecalculateProject:
		return w.recalc.RecalculateProject(task.TargetID)
	case redis.TaskRecalculateWorkItem:
		return w.recalc.RecalculateWorkItem(task.TargetID)
	case redis.TaskDeriveWorkItemStatus:
		return w.deriveWorkItemStatus(task.TargetID)
	case redis.TaskRefreshCostSummary:
		return w.refreshCostSummary(task.TargetID)
	case redis.TaskNotify:
		// Delivery transport is an external collaborator; the log is the
		// local sink.
		log.Printf("Notification (project %d): %s", task.ProjectID, task.Message)
		return nil
	default:
		log.Printf("Unknown background task type %q dropped", task.Type)
		return nil
	}
}

func (w *Worker) deriveWorkItemStatus(workItemID uint) error {
	item, err := w.store.WorkItems().GetByID(workItemID)
	if err != nil {
		return err
	}
	derived := string(item.DeriveStatus())
	if item.Status == derived || item.Status == string(models.WorkItemCompleted) {
		return nil
	}
	item.Status = derived
	return w.store.WorkItems().Update(item)
}

func (w *Worker) refreshCostSummary(projectID uint) error {
	summary, err := services.BuildCostSummary(w.store, projectID)
	if err != nil {
		return err
	}
	return w.queue.SetCostSummary(projectID, summary, w.cacheTTL)
}

func (w *Worker) retry(task *redis.Task) {
	if task.Attempts+1 >= maxAttempts {
		log.Printf("Background task %s (target %d) dropped after %d attempts", task.Type, task.TargetID, task.Attempts+1)
		return
	}
	task.Attempts++
	if err := w.queue.EnqueueTask(task); err != nil {
		log.Printf("Background task %s (target %d) re-enqueue failed: %v", task.Type, task.TargetID, err)
	}
}
