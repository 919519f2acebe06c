package engine

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestNotificationLogNewestFirst(t *testing.T) {
	log := NewNotificationLog()
	log.Append(domain.Notification{ID: "n1"})
	log.Append(domain.Notification{ID: "n2"})
	log.Append(domain.Notification{ID: "n3"})

	items := log.List()
	require.Len(t, items, 3)
	assert.Equal(t, "n3", items[0].ID)
	assert.Equal(t, "n1", items[2].ID)
}

func TestNotificationLogEvictsOldestPastCap(t *testing.T) {
	log := NewNotificationLog()
	for i := 0; i < NotificationCap+5; i++ {
		log.Append(domain.Notification{ID: "n" + strconv.Itoa(i)})
	}

	items := log.List()
	require.Len(t, items, NotificationCap)
	assert.Equal(t, "n"+strconv.Itoa(NotificationCap+4), items[0].ID, "newest survives")
	assert.Equal(t, "n5", items[NotificationCap-1].ID, "the five oldest were evicted")
}

func TestNotificationLogMarkRead(t *testing.T) {
	log := NewNotificationLog()
	log.Append(domain.Notification{ID: "n1"})
	log.Append(domain.Notification{ID: "n2"})

	log.MarkRead("n1")

	items := log.List()
	assert.False(t, items[0].Read)
	assert.True(t, items[1].Read)
	assert.Equal(t, 1, log.UnreadCount())
}

func TestNotificationLogMarkReadUnknownIDIsNoOp(t *testing.T) {
	log := NewNotificationLog()
	log.Append(domain.Notification{ID: "n1"})

	log.MarkRead("missing")

	assert.Equal(t, 1, log.UnreadCount())
}

func TestNotificationLogMarkAllRead(t *testing.T) {
	log := NewNotificationLog()
	log.Append(domain.Notification{ID: "n1"})
	log.Append(domain.Notification{ID: "n2"})

	log.MarkAllRead()

	assert.Equal(t, 0, log.UnreadCount())
	for _, item := range log.List() {
		assert.True(t, item.Read)
	}
}

func TestNotificationLogClear(t *testing.T) {
	log := NewNotificationLog()
	log.Append(domain.Notification{ID: "n1"})

	log.Clear()

	assert.Empty(t, log.List())
	assert.Equal(t, 0, log.UnreadCount())

	// operations on an empty log stay total
	log.MarkRead("n1")
	log.MarkAllRead()
	log.Clear()
}

func TestNotificationLogListIsDetached(t *testing.T) {
	log := NewNotificationLog()
	log.Append(domain.Notification{ID: "n1"})

	items := log.List()
	items[0].Read = true

	assert.Equal(t, 1, log.UnreadCount())
}
