package service

import (
	"time"

	"github.com/google/uuid"

	"he-demo/logging"
	"he-demo/models"
)

const defaultNotificationCapacity = 16

// Notifier buffers transient notifications until a surface drains them
type Notifier struct {
	ch  chan models.Notification
	now func() time.Time
}

// NewNotifier creates a notifier holding at most capacity notifications
func NewNotifier(capacity int) *Notifier {
	if capacity <= 0 {
		capacity = defaultNotificationCapacity
	}
	return &Notifier{
		ch:  make(chan models.Notification, capacity),
		now: time.Now,
	}
}

// Publish queues a notification without blocking. When the queue is full the
// notification is dropped.
func (n *Notifier) Publish(title, description string) {
	note := models.Notification{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedAt:   n.now(),
	}

	select {
	case n.ch <- note:
	default:
		logging.Warnf("notification queue is full, %q dropped", title)
	}
}

// Drain returns pending notifications in publish order
func (n *Notifier) Drain() []models.Notification {
	var out []models.Notification
	for {
		select {
		case note := <-n.ch:
			out = append(out, note)
		default:
			return out
		}
	}
}
