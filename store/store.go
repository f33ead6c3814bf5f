package store

import (
	"context"

	"github.com/goonworks/goonbot/models"
)

// Store persists sign-up queues and scheduled events so they survive a
// restart.
type Store interface {
	Open(ctx context.Context) error
	Close() error

	RestoreFromDisk(ctx context.Context, path string) error
	FlushToDisk(ctx context.Context, path string) error

	JoinQueue(ctx context.Context, entry models.QueueEntry) error
	LeaveQueue(ctx context.Context, activity, userID string) (bool, error)
	ListQueue(ctx context.Context, activity string) ([]models.QueueEntry, error)
	ListActiveQueues(ctx context.Context) ([]string, error)
	ListQueuesForUser(ctx context.Context, userID string) ([]string, error)

	CreateEvent(ctx context.Context, event models.ScheduledEvent) error
	GetEventByMessage(ctx context.Context, messageID string) (*models.ScheduledEvent, error)
	SetSignup(ctx context.Context, signup models.EventSignup) error
	RemoveSignup(ctx context.Context, eventID, userID string, kind models.SignupKind) error
	ListSignups(ctx context.Context, eventID string) ([]models.EventSignup, error)
}
