package discord

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Embed colors, cycled deterministically per activity.
const (
	colorBlurple = 0x5865F2
	colorPurple  = 0x9B59B6
	colorGold    = 0xF1C40F
	colorOrange  = 0xE67E22
	colorGreen   = 0x2ECC71
	colorTeal    = 0x1ABC9C
	colorRed     = 0xE74C3C
	colorBlue    = 0x3498DB
)

var activityPalette = []int{
	colorBlurple, colorPurple, colorGold, colorOrange,
	colorGreen, colorTeal, colorRed, colorBlue,
}

// activityColor returns a stable palette color for an activity name, so
// the same activity always gets the same embed color.
func activityColor(activity string) int {
	sum := 0
	for _, r := range activity {
		sum += int(r)
	}
	return activityPalette[sum%len(activityPalette)]
}

// ActivityImages maps activity names to a banner image: either an http
// URL or a local file under assets/. Missing files are simply skipped.
var ActivityImages = map[string]string{
	"Crota's End":         "assets/raids/crotas_end.jpg",
	"Deep Stone Crypt":    "assets/raids/deep_stone_crypt.jpg",
	"Garden of Salvation": "assets/raids/garden_of_salvation.jpg",
	"King's Fall":         "assets/raids/kings_fall.jpg",
	"Last Wish":           "assets/raids/last_wish.jpg",
	"Root of Nightmares":  "assets/raids/root_of_nightmares.jpg",
	"Salvation's Edge":    "assets/raids/salvations_edge.jpg",
	"Vault of Glass":      "assets/raids/vault_of_glass.jpg",
	"Vow of the Disciple": "assets/raids/vow_of_the_disciple.jpg",
}

// applyActivityImage attaches the activity's banner to the embed. Local
// files come back as a discordgo.File referenced via attachment://; an
// http URL is set directly. Returns nil when no usable image exists.
func applyActivityImage(embed *discordgo.MessageEmbed, activity string) *discordgo.File {
	path, ok := ActivityImages[activity]
	if !ok {
		return nil
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		embed.Image = &discordgo.MessageEmbedImage{URL: path}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}

	name := filepath.Base(path)
	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + name}
	return &discordgo.File{
		Name:        name,
		ContentType: "image/jpeg",
		Reader:      f,
	}
}

// closeAttachments releases local files attached to a message. The
// library reads attachment bodies during the send but never closes the
// readers, so without this every image post leaks a descriptor.
func closeAttachments(send *discordgo.MessageSend) {
	if send == nil {
		return
	}
	for _, f := range send.Files {
		if closer, ok := f.Reader.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
