package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// buildWelcomeEmbed renders the greeting posted when a member joins.
func buildWelcomeEmbed(user *discordgo.User, guildName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Welcome, Guardian! 🌟",
		Description: fmt.Sprintf(
			"%s just landed in **%s**.\n\n"+
				"Check out the sign-up channels to join a raid or dungeon queue, "+
				"and don't be shy about asking a Sherpa for a hand.",
			user.Mention(), guildName),
		Color: colorBlurple,
	}
	if avatar := user.AvatarURL(""); avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
	}
	return embed
}

func welcomeDMContent(guildName string) string {
	return fmt.Sprintf(
		"Welcome to **%s**! Use `/join` in the server to queue up for an "+
			"activity, or `/queue` to see who's already signed up. See you starside. 🚀",
		guildName)
}

func (c *DefaultDiscord) handleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}

	guildName := m.GuildID
	if guild, err := s.State.Guild(m.GuildID); err == nil && guild != nil {
		guildName = guild.Name
	}

	if c.cfg.WelcomeEmbedEnabled() && c.cfg.Channels.Welcome != "" {
		embed := buildWelcomeEmbed(m.User, guildName)
		if _, err := c.sendComplex(c.cfg.Channels.Welcome, &discordgo.MessageSend{Embed: embed}); err != nil {
			c.logger.ErrorW("welcome embed failed", "user_id", m.User.ID, "error", err)
		}
	}

	if c.cfg.WelcomeDMEnabled() {
		channel, err := s.UserChannelCreate(m.User.ID)
		if err != nil {
			c.logger.WarnW("could not open DM channel", "user_id", m.User.ID, "error", err)
			return
		}
		if _, err := s.ChannelMessageSend(channel.ID, welcomeDMContent(guildName)); err != nil {
			// Closed DMs are common; not an operational problem.
			c.logger.WarnW("welcome DM failed", "user_id", m.User.ID, "error", err)
		}
	}
}
