package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goonworks/goonbot/clock"
	"github.com/goonworks/goonbot/logger"
	"github.com/goonworks/goonbot/presets"
	"github.com/goonworks/goonbot/store"
)

var _ Discord = (*DefaultDiscord)(nil)

const (
	founderRoleName = "founder"
	sherpaRoleName  = "sherpa assistant"
)

// maxQueuesPerUser bounds how many different activity queues a single
// member may sit in at once.
const maxQueuesPerUser = 2

type DefaultDiscord struct {
	session *discordgo.Session
	cfg     Config
	library *presets.Library
	store   store.Store
	clock   clock.Clock
	logger  logger.Logger

	removeHandlers []func()
}

type Params struct {
	Config  Config
	Presets *presets.Library
	Store   store.Store
	Clock   clock.Clock
	Logger  logger.Logger
}

func New(p Params) (*DefaultDiscord, error) {
	cfg := p.Config

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions

	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}

	clk := p.Clock
	if clk == nil {
		clk = clock.System()
	}

	return &DefaultDiscord{
		session: session,
		cfg:     cfg,
		library: p.Presets,
		store:   p.Store,
		clock:   clk,
		logger:  log,
	}, nil
}

func (c *DefaultDiscord) Start(ctx context.Context) error {
	if c.library == nil {
		return errors.New("discord: presets library is required")
	}
	if c.store == nil {
		return errors.New("discord: store is required")
	}

	c.removeHandlers = append(c.removeHandlers,
		c.session.AddHandler(c.handleReady),
		c.session.AddHandler(c.handleMemberAdd),
		c.session.AddHandler(c.handleInteraction),
		c.session.AddHandler(c.handleReactionAdd),
		c.session.AddHandler(c.handleReactionRemove),
	)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord connection: %w", err)
	}

	return nil
}

func (c *DefaultDiscord) Stop() {
	for _, remove := range c.removeHandlers {
		remove()
	}
	c.removeHandlers = nil
	c.session.Close()
}

func (c *DefaultDiscord) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	c.logger.InfoW("discord ready",
		"username", r.User.Username,
		"session_id", r.SessionID,
	)

	if err := c.registerCommands(s); err != nil {
		c.logger.ErrorW("slash command sync failed", "error", err)
	}

	if c.cfg.Channels.General != "" {
		msg := fmt.Sprintf("%s is online.", r.User.Username)
		if err := c.WriteMessage(c.cfg.Channels.General, msg); err != nil {
			c.logger.ErrorW("failed to post online notification", "error", err)
		}
	}
}

func (c *DefaultDiscord) registerCommands(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		appCommandPing(),
		appCommandJoin(),
		appCommandQueue(),
		appCommandRemoveFromQueue(),
		appCommandPromote(),
		appCommandEvent(),
	}

	created, err := s.ApplicationCommandBulkOverwrite(
		s.State.User.ID,
		c.cfg.GuildID,
		commands,
	)
	if err != nil {
		return err
	}

	for _, cmd := range created {
		c.logger.InfoW("registered command", "name", cmd.Name)
	}
	return nil
}

func (c *DefaultDiscord) WriteMessage(channelID, msg string) error {
	if c.session == nil {
		return errors.New("discord session is nil")
	}
	_, err := c.session.ChannelMessageSend(channelID, msg)
	return err
}

// sendComplex posts content and/or an embed (with optional attachment)
// to a channel. An empty channel ID is a configured no-op.
func (c *DefaultDiscord) sendComplex(channelID string, send *discordgo.MessageSend) (*discordgo.Message, error) {
	if channelID == "" {
		closeAttachments(send)
		return nil, nil
	}
	msg, err := c.session.ChannelMessageSendComplex(channelID, send)
	closeAttachments(send)
	if err != nil {
		c.logger.ErrorW("send failed", "channel_id", channelID, "error", err)
		return nil, err
	}
	return msg, nil
}

// isFounder reports whether the member may run restricted commands:
// either the configured founder user, or a holder of the founder role.
func (c *DefaultDiscord) isFounder(s *discordgo.Session, guildID string, member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	if c.cfg.FounderUserID != "" && member.User != nil && member.User.ID == c.cfg.FounderUserID {
		return true
	}
	return c.memberHasRole(s, guildID, member, "", founderRoleName)
}

// sherpaRole resolves the Sherpa Assistant role by configured ID, then
// by name.
func (c *DefaultDiscord) sherpaRole(s *discordgo.Session, guildID string) *discordgo.Role {
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		c.logger.WarnW("failed to fetch guild roles", "guild_id", guildID, "error", err)
		return nil
	}
	if c.cfg.SherpaRoleID != "" {
		for _, role := range roles {
			if role.ID == c.cfg.SherpaRoleID {
				return role
			}
		}
	}
	for _, role := range roles {
		if strings.EqualFold(role.Name, sherpaRoleName) {
			return role
		}
	}
	return nil
}

func (c *DefaultDiscord) isSherpa(s *discordgo.Session, guildID string, member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	return c.memberHasRole(s, guildID, member, c.cfg.SherpaRoleID, sherpaRoleName)
}

func (c *DefaultDiscord) memberHasRole(s *discordgo.Session, guildID string, member *discordgo.Member, roleID, roleName string) bool {
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		c.logger.WarnW("failed to fetch guild roles", "guild_id", guildID, "error", err)
		return false
	}

	wanted := make(map[string]struct{})
	for _, role := range roles {
		if (roleID != "" && role.ID == roleID) || strings.EqualFold(role.Name, roleName) {
			wanted[role.ID] = struct{}{}
		}
	}
	for _, id := range member.Roles {
		if _, ok := wanted[id]; ok {
			return true
		}
	}
	return false
}

// member returns the guild member for a user, preferring session state.
func (c *DefaultDiscord) member(s *discordgo.Session, guildID, userID string) (*discordgo.Member, error) {
	if m, err := s.State.Member(guildID, userID); err == nil && m != nil {
		return m, nil
	}
	return s.GuildMember(guildID, userID)
}
