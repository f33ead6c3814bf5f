package discord

import "context"

// Discord defines the interface for the Discord client.
type Discord interface {
	WriteMessage(channelID, msg string) error
	Start(ctx context.Context) error
	Stop()
}
