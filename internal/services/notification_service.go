package services

import (
	"construction_manager/internal/redis"
)

// NotificationService is the fire-and-forget delivery sink. Messages ride the
// background queue; delivery failures never surface to the request that
// produced them.
type NotificationService interface {
	Notify(projectID uint, message string)
}

type notificationService struct {
	queue TaskQueue
}

func NewNotificationService(queue TaskQueue) NotificationService {
	return &notificationService{queue: queue}
}

func (s *notificationService) Notify(projectID uint, message string) {
	enqueue(s.queue, &redis.Task{
		Type:      redis.TaskNotify,
		TargetID:  projectID,
		ProjectID: projectID,
		Message:   message,
	})
}
