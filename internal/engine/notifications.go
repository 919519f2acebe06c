package engine

import (
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationCap bounds the log. Oldest entries are evicted first
// once the cap is exceeded.
const NotificationCap = 100

// NotificationLog is the bounded, newest-first log of user-facing
// notifications. It holds every notification regardless of viewer;
// visibility is evaluated per viewer at query time, because one event
// can be visible to several viewers for different reasons. Every
// operation is total.
type NotificationLog struct {
	mu    sync.Mutex
	items []domain.Notification
}

// NewNotificationLog creates an empty log.
func NewNotificationLog() *NotificationLog {
	return &NotificationLog{}
}

// Append prepends the notification and trims the log to the cap.
func (l *NotificationLog) Append(notification domain.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]domain.Notification{notification}, l.items...)
	if len(l.items) > NotificationCap {
		l.items = l.items[:NotificationCap]
	}
}

// List returns the log newest-first.
func (l *NotificationLog) List() []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := make([]domain.Notification, len(l.items))
	copy(copied, l.items)
	return copied
}

// MarkRead flips the read flag for one notification. Unknown IDs are
// a no-op.
func (l *NotificationLog) MarkRead(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Read = true
			return
		}
	}
}

// MarkAllRead flips the read flag for every notification.
func (l *NotificationLog) MarkAllRead() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		l.items[i].Read = true
	}
}

// Clear empties the log.
func (l *NotificationLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// UnreadCount reports how many notifications are unread.
func (l *NotificationLog) UnreadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for i := range l.items {
		if !l.items[i].Read {
			count++
		}
	}
	return count
}
