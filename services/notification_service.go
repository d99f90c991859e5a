package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"mentacrush_server/models"
	"mentacrush_server/observability"
	"mentacrush_server/repositories"
)

// NotificationService manages each user's match notification feed.
type NotificationService struct {
	Store repositories.NotificationStore
}

// PushMatchNotification appends an unread match notification to owner's feed.
func (s *NotificationService) PushMatchNotification(ctx context.Context, ownerUserID, matchedUserID string) (*models.Notification, error) {
	notification := models.Notification{
		NotificationID: uuid.NewString(),
		OwnerUserID:    ownerUserID,
		Type:           models.NotificationTypeMatch,
		MatchedUserID:  matchedUserID,
		CreatedAt:      models.FormatTimestamp(time.Now()),
	}

	if err := s.Store.Push(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to push notification to %s: %w", ownerUserID, err)
	}

	observability.NotificationsPushed.Inc()
	log.Printf("🔔 Match notification pushed to %s (matched with %s)", ownerUserID, matchedUserID)
	return &notification, nil
}

// GetNotifications returns the user's feed, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, ownerUserID string) ([]models.Notification, error) {
	notifications, err := s.Store.List(ctx, ownerUserID)
	if err != nil {
		// The feed store is a cache-grade dependency; its outages surface as
		// unavailable rather than as an internal error.
		return nil, fmt.Errorf("failed to fetch notifications for %s: %v: %w", ownerUserID, err, ErrUnavailable)
	}
	return notifications, nil
}

// MarkAsRead flags one notification as read. Repeat calls are no-ops.
func (s *NotificationService) MarkAsRead(ctx context.Context, ownerUserID, notificationID string) error {
	err := s.Store.MarkRead(ctx, ownerUserID, notificationID)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notificationID, err)
	}
	return nil
}

// Subscribe delivers the full feed immediately and again after each change,
// until the disposer is called.
func (s *NotificationService) Subscribe(ctx context.Context, ownerUserID string) (<-chan []models.Notification, func(), error) {
	signals, stop, err := s.Store.Subscribe(ctx, ownerUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to notifications for %s: %w", ownerUserID, err)
	}

	snapshots := make(chan []models.Notification, 1)
	done := make(chan struct{})

	initial, err := s.Store.List(ctx, ownerUserID)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("failed to load initial notifications for %s: %w", ownerUserID, err)
	}
	snapshots <- initial

	go func() {
		defer close(snapshots)
		for {
			select {
			case <-done:
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				snapshot, err := s.Store.List(ctx, ownerUserID)
				if err != nil {
					log.Printf("❌ Failed to refresh notifications for %s: %v", ownerUserID, err)
					continue
				}
				deliverLatest(snapshots, snapshot)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			close(done)
		})
	}
	return snapshots, cancel, nil
}
