package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/goonworks/goonbot/models"
	"github.com/goonworks/goonbot/presets"
	"github.com/goonworks/goonbot/timeutil"
)

const (
	emojiSherpa  = "🧭"
	emojiBackup  = "✅"
	emojiBackout = "❌"
)

func signupKindForEmoji(emoji string) (models.SignupKind, bool) {
	switch emoji {
	case emojiSherpa:
		return models.SignupSherpa, true
	case emojiBackup:
		return models.SignupBackup, true
	case emojiBackout:
		return models.SignupBackout, true
	}
	return "", false
}

// buildEventEmbed renders the announcement embed for an event with its
// current signup lists.
func buildEventEmbed(event models.ScheduledEvent, category string, signups []models.EventSignup) *discordgo.MessageEmbed {
	note := event.Note
	if note == "" {
		note = "Be ready and bring good vibes!"
	}

	byKind := make(map[models.SignupKind][]string)
	for _, su := range signups {
		byKind[su.Kind] = append(byKind[su.Kind], "<@"+su.UserID+">")
	}

	return &discordgo.MessageEmbed{
		Title:       "📣 Event: " + event.Activity,
		Description: note,
		Color:       activityColor(event.Activity),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "When",
				Value: fmt.Sprintf("<t:%d:F> (<t:%d:R>)", event.StartsAt, event.StartsAt),
			},
			{
				Name:   "Category",
				Value:  presets.CategoryLabel(category),
				Inline: true,
			},
			{
				Name:  "Sherpa Requests (🧭)",
				Value: mentionList(byKind[models.SignupSherpa]),
			},
			{
				Name:  "Backups (✅)",
				Value: mentionList(byKind[models.SignupBackup]),
			},
			{
				Name:  "Backed Out (❌)",
				Value: mentionList(byKind[models.SignupBackout]),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "React: 🧭 Sherpa • ✅ Backup • ❌ Back out",
		},
	}
}

func mentionList(mentions []string) string {
	if len(mentions) == 0 {
		return "—"
	}
	out := ""
	for i, m := range mentions {
		if i > 0 {
			out += "\n"
		}
		out += m
	}
	return out
}

func (c *DefaultDiscord) cmdEvent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if i.GuildID == "" {
		return c.replyEphemeral(s, i, "This command can only be used in a server.")
	}
	if !c.isFounder(s, i.GuildID, i.Member) {
		return c.replyEphemeral(s, i, "You are not authorized to use this command.")
	}
	if err := c.deferEphemeral(s, i); err != nil {
		return err
	}

	activity, ok := c.canonicalActivity(stringOption(data, "activity"))
	if !ok {
		return c.followupEphemeral(s, i, "Unknown activity.")
	}

	startsAt, err := timeutil.ParseEventTime(
		stringOption(data, "date"),
		stringOption(data, "time"),
		stringOption(data, "timezone"),
		c.clock.Now(),
	)
	if err != nil {
		return c.followupEphemeral(s, i,
			"Invalid date/time/timezone. Use MM-DD, HH:MM, and a valid IANA zone.")
	}

	if c.cfg.Channels.LFGChat == "" {
		return c.followupEphemeral(s, i, "Set LFG_CHAT_CHANNEL_ID.")
	}

	event := models.ScheduledEvent{
		ID:        uuid.NewString(),
		ChannelID: c.cfg.Channels.LFGChat,
		Activity:  activity,
		StartsAt:  startsAt.Unix(),
		Note:      stringOption(data, "note"),
	}

	embed := buildEventEmbed(event, c.library.CategoryOf(activity), nil)
	send := &discordgo.MessageSend{
		Content: "@everyone New event posted!",
		Embed:   embed,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone},
		},
	}
	if file := applyActivityImage(embed, activity); file != nil {
		send.Files = []*discordgo.File{file}
	}

	msg, err := c.sendComplex(c.cfg.Channels.LFGChat, send)
	if err != nil || msg == nil {
		return c.followupEphemeral(s, i, "Failed to post in LFG.")
	}

	event.MessageID = msg.ID
	if err := c.store.CreateEvent(ctx, event); err != nil {
		c.logger.ErrorW("failed to persist event", "event_id", event.ID, "error", err)
		// An unpersisted announcement would silently ignore every
		// reaction, so take it down rather than leave it up broken.
		if derr := s.ChannelMessageDelete(msg.ChannelID, msg.ID); derr != nil {
			c.logger.WarnW("could not delete orphaned event post",
				"message_id", msg.ID, "error", derr)
		}
		return c.followupEphemeral(s, i,
			"Could not save the event; announcement withdrawn. Try again.")
	}

	for _, emoji := range []string{emojiSherpa, emojiBackup, emojiBackout} {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			c.logger.WarnW("seeding reaction failed", "emoji", emoji, "error", err)
		}
	}

	return c.followupEphemeral(s, i, "Event announced.")
}

func (c *DefaultDiscord) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	c.updateEventSignup(s, r.MessageReaction, true)
}

func (c *DefaultDiscord) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	c.updateEventSignup(s, r.MessageReaction, false)
}

func (c *DefaultDiscord) updateEventSignup(s *discordgo.Session, r *discordgo.MessageReaction, add bool) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}

	kind, ok := signupKindForEmoji(r.Emoji.Name)
	if !ok {
		return
	}

	ctx := context.Background()
	event, err := c.store.GetEventByMessage(ctx, r.MessageID)
	if err != nil {
		c.logger.ErrorW("event lookup failed", "message_id", r.MessageID, "error", err)
		return
	}
	if event == nil {
		return
	}

	member, err := c.member(s, r.GuildID, r.UserID)
	if err != nil {
		c.logger.WarnW("could not resolve reacting member", "user_id", r.UserID, "error", err)
		return
	}

	if kind == models.SignupSherpa && add && !c.isSherpa(s, r.GuildID, member) {
		if err := s.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.Name, r.UserID); err != nil {
			c.logger.WarnW("could not remove non-sherpa reaction", "user_id", r.UserID, "error", err)
		}
		return
	}

	firstSherpaRequest := false
	if add {
		if kind == models.SignupSherpa {
			firstSherpaRequest = !c.hasSignup(ctx, event.ID, r.UserID, models.SignupSherpa)
		}
		if err := c.store.SetSignup(ctx, models.EventSignup{
			EventID: event.ID,
			UserID:  r.UserID,
			Kind:    kind,
		}); err != nil {
			c.logger.ErrorW("set signup failed", "event_id", event.ID, "error", err)
			return
		}
		// Backing out clears any earlier commitments.
		if kind == models.SignupBackout {
			_ = c.store.RemoveSignup(ctx, event.ID, r.UserID, models.SignupSherpa)
			_ = c.store.RemoveSignup(ctx, event.ID, r.UserID, models.SignupBackup)
		}
	} else {
		if err := c.store.RemoveSignup(ctx, event.ID, r.UserID, kind); err != nil {
			c.logger.ErrorW("remove signup failed", "event_id", event.ID, "error", err)
			return
		}
	}

	if firstSherpaRequest && c.cfg.Channels.GeneralSherpa != "" {
		c.announceSherpaRequest(s, r, *event)
	}

	signups, err := c.store.ListSignups(ctx, event.ID)
	if err != nil {
		c.logger.ErrorW("list signups failed", "event_id", event.ID, "error", err)
		return
	}

	embed := buildEventEmbed(*event, c.library.CategoryOf(event.Activity), signups)
	if _, err := s.ChannelMessageEditEmbed(event.ChannelID, event.MessageID, embed); err != nil {
		c.logger.ErrorW("event embed edit failed", "event_id", event.ID, "error", err)
	}
}

func (c *DefaultDiscord) hasSignup(ctx context.Context, eventID, userID string, kind models.SignupKind) bool {
	signups, err := c.store.ListSignups(ctx, eventID)
	if err != nil {
		return false
	}
	for _, su := range signups {
		if su.UserID == userID && su.Kind == kind {
			return true
		}
	}
	return false
}

func (c *DefaultDiscord) announceSherpaRequest(s *discordgo.Session, r *discordgo.MessageReaction, event models.ScheduledEvent) {
	mention := "Sherpas"
	if role := c.sherpaRole(s, r.GuildID); role != nil {
		mention = role.Mention()
	}

	content := fmt.Sprintf(
		"%s • <@%s> is requesting Sherpa help for **%s** at <t:%d:F> (<t:%d:R>).",
		mention, r.UserID, event.Activity, event.StartsAt, event.StartsAt)

	_, err := c.sendComplex(c.cfg.Channels.GeneralSherpa, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeRoles,
				discordgo.AllowedMentionTypeUsers,
			},
		},
	})
	if err != nil {
		c.logger.ErrorW("sherpa request ping failed", "event_id", event.ID, "error", err)
	}
}
