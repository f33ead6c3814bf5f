package models

import (
	"strings"
	"time"
)

// Activity is a single preset entry from activities.json: a raid,
// dungeon, or exotic activity with its display emoji. Immutable after
// load.
type Activity struct {
	Name     string `json:"name" yaml:"name"`
	Emoji    string `json:"emoji" yaml:"emoji"`
	Category string `json:"category" yaml:"category"`
}

func (a Activity) Key() string {
	return normalize(a.Category) + "|" + normalize(a.Name)
}

// QueueEntry is one user's position in an activity sign-up queue.
type QueueEntry struct {
	Activity string    `json:"activity" yaml:"activity"`
	UserID   string    `json:"user_id" yaml:"user_id"`
	JoinedAt time.Time `json:"joined_at" yaml:"joined_at"`
}

// SignupKind classifies a reaction signup on an event message.
type SignupKind string

const (
	SignupSherpa  SignupKind = "sherpa"
	SignupBackup  SignupKind = "backup"
	SignupBackout SignupKind = "backout"
)

// Valid reports whether k is one of the known signup kinds.
func (k SignupKind) Valid() bool {
	switch k {
	case SignupSherpa, SignupBackup, SignupBackout:
		return true
	}
	return false
}

// ScheduledEvent is an announced activity run. Reactions on MessageID
// drive the signup lists.
type ScheduledEvent struct {
	ID        string `json:"id" yaml:"id"`
	MessageID string `json:"message_id" yaml:"message_id"`
	ChannelID string `json:"channel_id" yaml:"channel_id"`
	Activity  string `json:"activity" yaml:"activity"`
	StartsAt  int64  `json:"starts_at" yaml:"starts_at"`
	Note      string `json:"note" yaml:"note"`
}

// EventSignup records one user's reaction state on an event.
type EventSignup struct {
	EventID string     `json:"event_id" yaml:"event_id"`
	UserID  string     `json:"user_id" yaml:"user_id"`
	Kind    SignupKind `json:"kind" yaml:"kind"`
}

func normalize(in string) string {
	return strings.ToLower(strings.TrimSpace(in))
}
