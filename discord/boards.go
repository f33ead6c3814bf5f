package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goonworks/goonbot/models"
)

// buildActivityBoard renders the queue embed for one activity.
func buildActivityBoard(activity string, cap int, queue []models.QueueEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Queue — " + activity,
		Color: activityColor(activity),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Capacity", Value: fmt.Sprintf("%d", cap), Inline: true},
			{Name: "Signed Up", Value: fmt.Sprintf("%d", len(queue)), Inline: true},
		},
	}

	if len(queue) == 0 {
		embed.Description = "No sign-ups yet. Use `/join` to get started."
		return embed
	}

	var sb strings.Builder
	for _, entry := range queue {
		sb.WriteString("<@" + entry.UserID + ">\n")
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Players (in order)",
		Value: strings.TrimRight(sb.String(), "\n"),
	})
	return embed
}

// postActivityBoard posts the queue board for one activity to the raid
// sign-up channel. Missing channel config or an empty queue is a no-op.
func (c *DefaultDiscord) postActivityBoard(ctx context.Context, activity string) {
	if c.cfg.Channels.RaidSignup == "" {
		return
	}

	queue, err := c.store.ListQueue(ctx, activity)
	if err != nil {
		c.logger.ErrorW("failed to list queue for board", "activity", activity, "error", err)
		return
	}
	if len(queue) == 0 {
		return
	}

	embed := buildActivityBoard(activity, c.library.CapFor(activity), queue)
	send := &discordgo.MessageSend{Embed: embed}
	if file := applyActivityImage(embed, activity); file != nil {
		send.Files = []*discordgo.File{file}
	}
	_, _ = c.sendComplex(c.cfg.Channels.RaidSignup, send)
}

// postAllActivityBoards posts a board per non-empty queue, or a notice
// when nothing is active.
func (c *DefaultDiscord) postAllActivityBoards(ctx context.Context) {
	if c.cfg.Channels.RaidSignup == "" {
		return
	}

	active, err := c.store.ListActiveQueues(ctx)
	if err != nil {
		c.logger.ErrorW("failed to list active queues", "error", err)
		return
	}

	if len(active) == 0 {
		if err := c.WriteMessage(c.cfg.Channels.RaidSignup,
			"No active queues yet. Use `/join` to sign up."); err != nil {
			c.logger.ErrorW("failed to post empty-queue notice", "error", err)
		}
		return
	}

	for _, activity := range active {
		c.postActivityBoard(ctx, activity)
	}
}
