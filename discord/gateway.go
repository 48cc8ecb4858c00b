// Package discord wraps the discordgo session behind the small messaging
// surface the reconciliation engine needs: resolve a channel, fetch a message
// by id, edit it, or send a new one.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Payload is a rendered notification message: plain content plus an embed.
type Payload struct {
	Content string
	Embed   *discordgo.MessageEmbed
}

// SessionGateway adapts a live discordgo session. All calls go through the
// REST API; fetching a deleted or unknown message fails, which is how the
// engine detects a tracked message that no longer exists.
type SessionGateway struct {
	Session *discordgo.Session
}

func NewSessionGateway(s *discordgo.Session) *SessionGateway {
	return &SessionGateway{Session: s}
}

// ResolveChannel looks up the notification channel, which also yields the
// guild id the tracked record is keyed on.
func (g *SessionGateway) ResolveChannel(channelID string) (*discordgo.Channel, error) {
	ch, err := g.Session.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("resolve channel %s: %w", channelID, err)
	}
	return ch, nil
}

// FetchMessage retrieves a message by id; it fails if the message was deleted.
func (g *SessionGateway) FetchMessage(channelID, messageID string) (*discordgo.Message, error) {
	return g.Session.ChannelMessage(channelID, messageID)
}

// EditMessage replaces the content and embed of an existing message.
func (g *SessionGateway) EditMessage(channelID, messageID string, p *Payload) (*discordgo.Message, error) {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	edit.SetContent(p.Content)
	if p.Embed != nil {
		edit.SetEmbeds([]*discordgo.MessageEmbed{p.Embed})
	}
	return g.Session.ChannelMessageEditComplex(edit)
}

// SendMessage posts a new message to the channel.
func (g *SessionGateway) SendMessage(channelID string, p *Payload) (*discordgo.Message, error) {
	send := &discordgo.MessageSend{Content: p.Content}
	if p.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{p.Embed}
	}
	return g.Session.ChannelMessageSendComplex(channelID, send)
}

// BotUser returns the bot's own username and avatar URL for embed footers.
func (g *SessionGateway) BotUser() (name, avatarURL string) {
	if g.Session.State != nil && g.Session.State.User != nil {
		u := g.Session.State.User
		return u.Username, u.AvatarURL("")
	}
	return "", ""
}
