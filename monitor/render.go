package monitor

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tencreator/discord-bot/discord"
	"github.com/tencreator/discord-bot/twitchapi"
)

// Preview dimensions substituted into the Helix thumbnail template.
const (
	previewWidth  = "1920"
	previewHeight = "1080"
)

// placeholderGame is rendered when the game lookup returns nothing; a missing
// category must never fail the cycle.
const placeholderGame = "Unknown"

// Renderer maps a profile, stream descriptor, and game into the message
// payload for a notification. It is pure: no I/O, no stored state, and
// deterministic field ordering.
type Renderer struct {
	Color         int
	LiveText      string
	OfflineText   string
	FooterText    string
	FooterIconURL string
}

// Live builds the payload announcing an active stream.
func (r Renderer) Live(user *twitchapi.User, stream *twitchapi.Stream, game *twitchapi.Game, now time.Time) *discord.Payload {
	gameName := placeholderGame
	if game != nil && game.Name != "" {
		gameName = game.Name
	}
	channelURL := "https://twitch.tv/" + user.Login
	embed := &discordgo.MessageEmbed{
		Color: r.Color,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    user.DisplayName + " is streaming on Twitch!",
			URL:     channelURL,
			IconURL: user.ProfileImageURL,
		},
		Title: stream.Title,
		URL:   channelURL,
		Image: &discordgo.MessageEmbedImage{URL: PreviewURL(stream.ThumbnailURL, stream.ID)},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Playing", Value: gameName, Inline: true},
			{Name: "Viewers", Value: strconv.Itoa(stream.ViewerCount), Inline: true},
			{Name: "Status", Value: "Live", Inline: true},
		},
		Footer:    r.footer(),
		Timestamp: now.Format(time.RFC3339),
	}
	return &discord.Payload{Content: r.LiveText, Embed: embed}
}

// Offline builds the payload retiring a notification after the stream ends.
func (r Renderer) Offline(user *twitchapi.User, now time.Time) *discord.Payload {
	channelURL := "https://twitch.tv/" + user.Login
	embed := &discordgo.MessageEmbed{
		Color: r.Color,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    user.DisplayName,
			URL:     channelURL,
			IconURL: user.ProfileImageURL,
		},
		Description: "Stream is offline! But you can still watch the VOD! " + channelURL,
		Footer:      r.footer(),
		Timestamp:   now.Format(time.RFC3339),
	}
	if user.OfflineImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: user.OfflineImageURL}
	}
	return &discord.Payload{Content: r.OfflineText, Embed: embed}
}

func (r Renderer) footer() *discordgo.MessageEmbedFooter {
	if r.FooterText == "" {
		return nil
	}
	return &discordgo.MessageEmbedFooter{Text: r.FooterText, IconURL: r.FooterIconURL}
}

// PreviewURL fills the thumbnail template and appends the stream id as a
// query suffix so Discord's image proxy does not serve a stale frame from a
// previous session.
func PreviewURL(template, streamID string) string {
	u := strings.NewReplacer("{width}", previewWidth, "{height}", previewHeight).Replace(template)
	if streamID == "" {
		return u
	}
	return u + "?sig=" + streamID
}
