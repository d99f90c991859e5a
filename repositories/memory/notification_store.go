package memory

import (
	"context"
	"sort"
	"sync"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// NotificationStore is the in-memory notification feed. Change signals are
// delivered to every subscriber of the owning user.
type NotificationStore struct {
	mu            sync.Mutex
	notifications map[string][]models.Notification
	subscribers   map[string]map[int]chan struct{}
	nextSub       int
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		notifications: make(map[string][]models.Notification),
		subscribers:   make(map[string]map[int]chan struct{}),
	}
}

func (s *NotificationStore) Push(ctx context.Context, notification models.Notification) error {
	s.mu.Lock()
	s.notifications[notification.OwnerUserID] = append(s.notifications[notification.OwnerUserID], notification)
	s.mu.Unlock()
	s.signal(notification.OwnerUserID)
	return nil
}

func (s *NotificationStore) List(ctx context.Context, ownerUserID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.notifications[ownerUserID]
	notifications := make([]models.Notification, len(stored))
	copy(notifications, stored)
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt > notifications[j].CreatedAt
	})
	return notifications, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, ownerUserID, notificationID string) error {
	s.mu.Lock()
	found := false
	for i := range s.notifications[ownerUserID] {
		if s.notifications[ownerUserID][i].NotificationID == notificationID {
			s.notifications[ownerUserID][i].Read = true
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return repositories.ErrNotFound
	}
	s.signal(ownerUserID)
	return nil
}

func (s *NotificationStore) Subscribe(ctx context.Context, ownerUserID string) (<-chan struct{}, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribers[ownerUserID] == nil {
		s.subscribers[ownerUserID] = make(map[int]chan struct{})
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subscribers[ownerUserID][id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.subscribers[ownerUserID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(s.subscribers, ownerUserID)
			}
		}
	}
	return ch, cancel, nil
}

func (s *NotificationStore) signal(ownerUserID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers[ownerUserID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
