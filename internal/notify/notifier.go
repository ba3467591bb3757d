// Package notify emits user notifications as a best-effort side effect of
// social mutations. Failures are logged and swallowed: a like or reply must
// never fail because its notification could not be delivered.
package notify

import (
	"context"
	"log"

	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
)

// Notifier writes notifications and flips the recipient's unread flag.
type Notifier struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
}

// NewNotifier creates a new Notifier
func NewNotifier(notifications repositories.NotificationRepository, users repositories.UserRepository) *Notifier {
	return &Notifier{notifications: notifications, users: users}
}

// Push delivers a notification to receiverID. Self-notifications are dropped.
// Errors never propagate to the caller; the two writes are not atomic and a
// crash between them leaves the notification created without the flag set,
// which the best-effort policy accepts.
func (n *Notifier) Push(ctx context.Context, senderID, receiverID, body string) {
	if senderID == receiverID {
		return
	}
	notification := &models.Notification{
		UserID: receiverID,
		Body:   body,
	}
	if err := n.notifications.CreateNotification(ctx, notification); err != nil {
		log.Printf("notify: failed to create notification for user %s: %v", receiverID, err)
		return
	}
	if err := n.users.SetHasNotification(receiverID, true); err != nil {
		log.Printf("notify: failed to set notification flag for user %s: %v", receiverID, err)
	}
}
