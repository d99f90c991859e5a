// Package redisfeed implements the notification feed on Redis. Notifications
// live in a per-user hash under a path-style key and changes fan out over
// pub/sub, which keeps delivery latency well below the document store's.
package redisfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// NotificationStore is the Redis implementation of the notification feed.
type NotificationStore struct {
	Client *redis.Client
}

func NewNotificationStore(client *redis.Client) *NotificationStore {
	return &NotificationStore{Client: client}
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func feedKey(ownerUserID string) string {
	return "notifications/" + ownerUserID
}

func (s *NotificationStore) Push(ctx context.Context, notification models.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := feedKey(notification.OwnerUserID)
	if err := s.Client.HSet(ctx, key, notification.NotificationID, payload).Err(); err != nil {
		return fmt.Errorf("failed to store notification for %s: %w", notification.OwnerUserID, err)
	}

	if err := s.Client.Publish(ctx, key, notification.NotificationID).Err(); err != nil {
		log.Printf("❌ Failed to publish notification change for %s: %v", notification.OwnerUserID, err)
	}
	return nil
}

func (s *NotificationStore) List(ctx context.Context, ownerUserID string) ([]models.Notification, error) {
	entries, err := s.Client.HGetAll(ctx, feedKey(ownerUserID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications for %s: %w", ownerUserID, err)
	}

	notifications := make([]models.Notification, 0, len(entries))
	for _, raw := range entries {
		var notification models.Notification
		if err := json.Unmarshal([]byte(raw), &notification); err != nil {
			log.Printf("❌ Skipping malformed notification for %s: %v", ownerUserID, err)
			continue
		}
		notifications = append(notifications, notification)
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt > notifications[j].CreatedAt
	})
	return notifications, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, ownerUserID, notificationID string) error {
	key := feedKey(ownerUserID)
	raw, err := s.Client.HGet(ctx, key, notificationID).Result()
	if err == redis.Nil {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch notification %s: %w", notificationID, err)
	}

	var notification models.Notification
	if err := json.Unmarshal([]byte(raw), &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification %s: %w", notificationID, err)
	}
	if notification.Read {
		return nil
	}
	notification.Read = true

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification %s: %w", notificationID, err)
	}
	if err := s.Client.HSet(ctx, key, notificationID, payload).Err(); err != nil {
		return fmt.Errorf("failed to update notification %s: %w", notificationID, err)
	}

	if err := s.Client.Publish(ctx, key, notificationID).Err(); err != nil {
		log.Printf("❌ Failed to publish notification change for %s: %v", ownerUserID, err)
	}
	return nil
}

// Subscribe delivers a change signal for every pub/sub message on the user's
// feed channel. A transient subscription failure triggers resubscription
// with exponential backoff rather than silently stopping delivery.
func (s *NotificationStore) Subscribe(ctx context.Context, ownerUserID string) (<-chan struct{}, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	signals := make(chan struct{}, 1)

	go func() {
		defer close(signals)

		policy := backoff.NewExponentialBackOff()
		policy.MaxElapsedTime = 0 // retry until unsubscribed

		for {
			pubsub := s.Client.Subscribe(subCtx, feedKey(ownerUserID))
			err := s.receiveLoop(subCtx, pubsub, signals)
			pubsub.Close()

			if subCtx.Err() != nil {
				return
			}

			wait := policy.NextBackOff()
			log.Printf("⚠️ Notification subscription for %s dropped (%v), resubscribing in %s", ownerUserID, err, wait)
			select {
			case <-subCtx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()

	return signals, cancel, nil
}

func (s *NotificationStore) receiveLoop(ctx context.Context, pubsub *redis.PubSub, signals chan<- struct{}) error {
	for {
		_, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}
		select {
		case signals <- struct{}{}:
		default:
		}
	}
}
