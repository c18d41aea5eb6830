package redis

import (
	"context"
	"fmt"
	"time"
)

// ReminderMarkerStore remembers which reminders already went out. Markers
// expire on their own; the TTL only has to outlive the reminder window.
type ReminderMarkerStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewReminderMarkerStore(client RedisClient, ttl time.Duration) *ReminderMarkerStore {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &ReminderMarkerStore{client: client, ttl: ttl}
}

func (s *ReminderMarkerStore) key(kind, eventID string) string {
	return fmt.Sprintf("reminder_sent:%s:%s", kind, eventID)
}

// MarkOnce reports true exactly once per (kind, event): the first caller sets
// the marker, every later call sees it and gets false.
func (s *ReminderMarkerStore) MarkOnce(ctx context.Context, kind, eventID string) (bool, error) {
	return s.client.SetNX(ctx, s.key(kind, eventID), time.Now().Unix(), s.ttl)
}
