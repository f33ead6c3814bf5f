package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goonworks/goonbot/models"
)

func appCommandPing() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Check bot latency",
		Type:        discordgo.ChatApplicationCommand,
	}
}

func appCommandJoin() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "join",
		Description: "Join an activity queue",
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "activity",
				Description:  "Choose an activity to join",
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

func appCommandQueue() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "queue",
		Description: "Post the current queues (one embed per activity, all names)",
		Type:        discordgo.ChatApplicationCommand,
	}
}

func appCommandRemoveFromQueue() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "remove_from_queue",
		Description: "Remove one or more users from an activity queue (founder only)",
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "users",
				Description: "Mentions/IDs/names separated by spaces/commas",
				Required:    true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "activity",
				Description:  "Activity queue to remove them from",
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

func appCommandPromote() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "promote",
		Description: "Promote a member to Sherpa Assistant and announce it",
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to promote",
				Required:    true,
			},
		},
	}
}

func appCommandEvent() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "event",
		Description: "Create and announce an event (@everyone) with reactions",
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "activity",
				Description:  "Pick an activity",
				Required:     true,
				Autocomplete: true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "date",
				Description: "MM-DD (no year)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "time",
				Description: "HH:MM 24h",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "timezone",
				Description: "IANA tz (e.g., America/New_York)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "note",
				Description: "Optional details",
				Required:    false,
			},
		},
	}
}

func (c *DefaultDiscord) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		c.dispatchCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		c.respondAutocomplete(s, i)
	}
}

func (c *DefaultDiscord) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case "ping":
		err = c.cmdPing(s, i)
	case "join":
		err = c.cmdJoin(ctx, s, i, data)
	case "queue":
		err = c.cmdQueue(ctx, s, i)
	case "remove_from_queue":
		err = c.cmdRemoveFromQueue(ctx, s, i, data)
	case "promote":
		err = c.cmdPromote(s, i, data)
	case "event":
		err = c.cmdEvent(ctx, s, i, data)
	default:
		return
	}

	if err != nil {
		c.logger.ErrorW("command failed", "command", data.Name, "error", err)
	}
}

func (c *DefaultDiscord) respondAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var current string
	for _, opt := range data.Options {
		if opt.Name == "activity" && opt.Focused {
			current, _ = opt.Value.(string)
			break
		}
	}

	choices := c.library.Choices(current)
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, choice := range choices {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{
			Name:  choice.Name,
			Value: choice.Value,
		})
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: out},
	})
	if err != nil {
		c.logger.WarnW("autocomplete response failed", "error", err)
	}
}

// replyEphemeral answers an interaction with a private message.
func (c *DefaultDiscord) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (c *DefaultDiscord) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func (c *DefaultDiscord) followupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

func (c *DefaultDiscord) cmdPing(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	latency := s.HeartbeatLatency().Milliseconds()
	return c.replyEphemeral(s, i, fmt.Sprintf("Pong! %d ms", latency))
}

func (c *DefaultDiscord) cmdJoin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if i.Member == nil || i.Member.User == nil {
		return c.replyEphemeral(s, i, "This command can only be used in a server.")
	}

	activity, ok := c.canonicalActivity(stringOption(data, "activity"))
	if !ok {
		return c.replyEphemeral(s, i, "Unknown activity.")
	}

	if c.isSherpa(s, i.GuildID, i.Member) {
		return c.replyEphemeral(s, i, "Sherpa Assistants cannot join queues.")
	}

	userID := i.Member.User.ID
	current, err := c.store.ListQueuesForUser(ctx, userID)
	if err != nil {
		return c.replyEphemeral(s, i, "Something went wrong, try again.")
	}
	for _, joined := range current {
		if strings.EqualFold(joined, activity) {
			return c.replyEphemeral(s, i, "You are already signed up for this activity.")
		}
	}
	if len(current) >= maxQueuesPerUser {
		return c.replyEphemeral(s, i,
			fmt.Sprintf("You can only be in %d different activity queues at once.", maxQueuesPerUser))
	}

	entry := models.QueueEntry{
		Activity: activity,
		UserID:   userID,
		JoinedAt: c.clock.Now(),
	}
	if err := c.store.JoinQueue(ctx, entry); err != nil {
		c.logger.ErrorW("join queue failed", "activity", activity, "user_id", userID, "error", err)
		return c.replyEphemeral(s, i, "Something went wrong, try again.")
	}

	if err := c.replyEphemeral(s, i, "Joined queue for: "+activity); err != nil {
		return err
	}
	c.postActivityBoard(ctx, activity)
	return nil
}

func (c *DefaultDiscord) cmdQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := c.deferEphemeral(s, i); err != nil {
		return err
	}
	c.postAllActivityBoards(ctx)
	return c.followupEphemeral(s, i, "Queue boards posted.")
}

func (c *DefaultDiscord) cmdRemoveFromQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if i.GuildID == "" {
		return c.replyEphemeral(s, i, "This command must be used in a server.")
	}
	if !c.isFounder(s, i.GuildID, i.Member) {
		return c.replyEphemeral(s, i, "You are not authorized to use this command.")
	}

	activity, ok := c.canonicalActivity(stringOption(data, "activity"))
	if !ok {
		return c.replyEphemeral(s, i, "Unknown activity.")
	}

	targets := c.parseUserRefs(s, i.GuildID, stringOption(data, "users"))
	if len(targets) == 0 {
		return c.replyEphemeral(s, i, "No valid users found.")
	}

	queue, err := c.store.ListQueue(ctx, activity)
	if err != nil {
		return c.replyEphemeral(s, i, "Something went wrong, try again.")
	}
	if len(queue) == 0 {
		return c.replyEphemeral(s, i, fmt.Sprintf("No queue exists yet for **%s**.", activity))
	}

	var removed []string
	for _, userID := range targets {
		ok, err := c.store.LeaveQueue(ctx, activity, userID)
		if err != nil {
			c.logger.ErrorW("remove from queue failed", "activity", activity, "user_id", userID, "error", err)
			continue
		}
		if ok {
			removed = append(removed, c.displayName(s, i.GuildID, userID))
		}
	}

	if len(removed) == 0 {
		return c.replyEphemeral(s, i,
			fmt.Sprintf("No selected users were in the **%s** queue.", activity))
	}

	if err := c.replyEphemeral(s, i,
		fmt.Sprintf("Removed from **%s**: %s", activity, strings.Join(removed, ", "))); err != nil {
		return err
	}
	c.postActivityBoard(ctx, activity)
	return nil
}

// parseUserRefs resolves a free-form user list: mentions, raw IDs, or
// name substrings, separated by spaces or commas. Duplicates are
// dropped, order preserved.
func (c *DefaultDiscord) parseUserRefs(s *discordgo.Session, guildID, text string) []string {
	fields := strings.Fields(strings.ReplaceAll(text, ",", " "))

	var ids []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, field := range fields {
		ref := strings.Trim(field, "<@!>")
		if _, err := strconv.ParseUint(ref, 10, 64); err == nil {
			if _, err := c.member(s, guildID, ref); err == nil {
				add(ref)
				continue
			}
		}

		if id := c.findMemberByName(s, guildID, field); id != "" {
			add(id)
		}
	}
	return ids
}

func (c *DefaultDiscord) findMemberByName(s *discordgo.Session, guildID, query string) string {
	guild, err := s.State.Guild(guildID)
	if err != nil || guild == nil {
		return ""
	}
	lower := strings.ToLower(query)
	for _, m := range guild.Members {
		if m.User == nil {
			continue
		}
		if strings.Contains(strings.ToLower(m.Nick), lower) ||
			strings.Contains(strings.ToLower(m.User.Username), lower) {
			return m.User.ID
		}
	}
	return ""
}

func (c *DefaultDiscord) displayName(s *discordgo.Session, guildID, userID string) string {
	m, err := c.member(s, guildID, userID)
	if err != nil || m == nil || m.User == nil {
		return userID
	}
	if m.Nick != "" {
		return m.Nick
	}
	return m.User.Username
}

func (c *DefaultDiscord) cmdPromote(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if i.GuildID == "" {
		return c.replyEphemeral(s, i, "This command can only be used in a server.")
	}
	if !c.isFounder(s, i.GuildID, i.Member) {
		return c.replyEphemeral(s, i, "You are not authorized to use this command.")
	}
	if err := c.deferEphemeral(s, i); err != nil {
		return err
	}

	target := data.Options[0].UserValue(s)
	if target == nil {
		return c.followupEphemeral(s, i, "Could not resolve that member.")
	}

	role := c.sherpaRole(s, i.GuildID)
	if role == nil {
		return c.followupEphemeral(s, i,
			"Could not find the 'Sherpa Assistant' role. Set SHERPA_ROLE_ID or create one.")
	}

	member, err := c.member(s, i.GuildID, target.ID)
	if err != nil {
		return c.followupEphemeral(s, i, "Could not resolve that member.")
	}

	assigned := false
	if !hasRoleID(member, role.ID) {
		if err := s.GuildMemberRoleAdd(i.GuildID, target.ID, role.ID); err != nil {
			c.logger.ErrorW("role assignment failed", "user_id", target.ID, "error", err)
			return c.followupEphemeral(s, i,
				"I need 'Manage Roles' and my role must be above 'Sherpa Assistant'.")
		}
		assigned = true
	}

	embed := promotionEmbed(target, c.displayName(s, i.GuildID, promoterID(i)))
	sent := 0
	for _, channelID := range []string{c.cfg.Channels.General, c.cfg.Channels.GeneralSherpa} {
		if channelID == "" {
			continue
		}
		if _, err := c.sendComplex(channelID, &discordgo.MessageSend{Embed: embed}); err == nil {
			sent++
		}
	}

	verb := "assigned"
	if !assigned {
		verb = "already present"
	}
	return c.followupEphemeral(s, i,
		fmt.Sprintf("Role %s; announcement sent in %d channel(s).", verb, sent))
}

func promoterID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	return ""
}

func hasRoleID(member *discordgo.Member, roleID string) bool {
	if member == nil {
		return false
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

func promotionEmbed(user *discordgo.User, promotedBy string) *discordgo.MessageEmbed {
	lines := []string{
		fmt.Sprintf("🎉 **Congratulations, %s!** 🏆", user.Mention()),
		"",
		"You're now a **Sherpa Assistant** — patience, clarity, and positive vibes.",
		"Help newer/returning players learn mechanics and win together.",
		"",
		"⚔️ **Expectations**",
		"• Be calm under pressure",
		"• Explain mechanics clearly",
		"• Turn wipes into lessons",
		"• Keep runs welcoming and fun",
		"",
		"🌌 **Carry the Light**",
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Sherpa Promotion 🌟",
		Description: strings.Join(lines, "\n"),
		Color:       activityColor(user.ID),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Promoted by " + promotedBy},
	}
	if avatar := user.AvatarURL(""); avatar != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: user.Username, IconURL: avatar}
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
	}
	return embed
}

// canonicalActivity resolves user input to the preset's canonical
// activity name. Lookups are case-insensitive but the stored queues and
// boards always use the one spelling from activities.json, so "last
// wish" and "Last Wish" end up in the same queue.
func (c *DefaultDiscord) canonicalActivity(input string) (string, bool) {
	a, ok := c.library.Lookup(input)
	if !ok {
		return "", false
	}
	return a.Name, true
}

func stringOption(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name {
			if v, ok := opt.Value.(string); ok {
				return v
			}
		}
	}
	return ""
}
