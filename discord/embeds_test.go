package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goonworks/goonbot/models"
)

func TestBuildActivityBoard(t *testing.T) {
	queue := []models.QueueEntry{
		{Activity: "Last Wish", UserID: "100", JoinedAt: time.Now()},
		{Activity: "Last Wish", UserID: "200", JoinedAt: time.Now()},
	}

	embed := buildActivityBoard("Last Wish", 6, queue)

	if embed.Title != "Queue — Last Wish" {
		t.Fatalf("title = %q", embed.Title)
	}
	if len(embed.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(embed.Fields))
	}
	if embed.Fields[0].Value != "6" {
		t.Fatalf("capacity = %q, want 6", embed.Fields[0].Value)
	}
	if embed.Fields[1].Value != "2" {
		t.Fatalf("signed up = %q, want 2", embed.Fields[1].Value)
	}
	players := embed.Fields[2].Value
	if !strings.Contains(players, "<@100>") || !strings.Contains(players, "<@200>") {
		t.Fatalf("players = %q, want both mentions", players)
	}
	// Join order preserved.
	if strings.Index(players, "<@100>") > strings.Index(players, "<@200>") {
		t.Fatalf("players = %q, want FIFO order", players)
	}
}

func TestBuildActivityBoard_Empty(t *testing.T) {
	embed := buildActivityBoard("Duality", 3, nil)
	if len(embed.Fields) != 2 {
		t.Fatalf("expected 2 fields for empty queue, got %d", len(embed.Fields))
	}
	if !strings.Contains(embed.Description, "/join") {
		t.Fatalf("description = %q, want /join hint", embed.Description)
	}
}

func TestBuildEventEmbed(t *testing.T) {
	event := models.ScheduledEvent{
		ID:        "evt-1",
		MessageID: "msg-1",
		Activity:  "Last Wish",
		StartsAt:  1780000000,
		Note:      "fresh run, mic required",
	}
	signups := []models.EventSignup{
		{EventID: "evt-1", UserID: "100", Kind: models.SignupSherpa},
		{EventID: "evt-1", UserID: "200", Kind: models.SignupBackup},
		{EventID: "evt-1", UserID: "300", Kind: models.SignupBackout},
	}

	embed := buildEventEmbed(event, "raids", signups)

	if embed.Title != "📣 Event: Last Wish" {
		t.Fatalf("title = %q", embed.Title)
	}
	if embed.Description != "fresh run, mic required" {
		t.Fatalf("description = %q", embed.Description)
	}

	byName := make(map[string]string)
	for _, f := range embed.Fields {
		byName[f.Name] = f.Value
	}
	if !strings.Contains(byName["When"], "<t:1780000000:F>") {
		t.Fatalf("When = %q, want discord timestamp", byName["When"])
	}
	if byName["Category"] != "Raid" {
		t.Fatalf("Category = %q, want Raid", byName["Category"])
	}
	if byName["Sherpa Requests (🧭)"] != "<@100>" {
		t.Fatalf("sherpa list = %q", byName["Sherpa Requests (🧭)"])
	}
	if byName["Backups (✅)"] != "<@200>" {
		t.Fatalf("backup list = %q", byName["Backups (✅)"])
	}
	if byName["Backed Out (❌)"] != "<@300>" {
		t.Fatalf("backout list = %q", byName["Backed Out (❌)"])
	}
}

func TestBuildEventEmbed_Defaults(t *testing.T) {
	event := models.ScheduledEvent{Activity: "Duality", StartsAt: 1780000000}
	embed := buildEventEmbed(event, "dungeons", nil)

	if !strings.Contains(embed.Description, "good vibes") {
		t.Fatalf("description = %q, want default note", embed.Description)
	}
	for _, f := range embed.Fields {
		if strings.HasPrefix(f.Name, "Sherpa") && f.Value != "—" {
			t.Fatalf("empty sherpa list = %q, want em dash", f.Value)
		}
	}
}

func TestSignupKindForEmoji(t *testing.T) {
	tests := []struct {
		emoji string
		want  models.SignupKind
		ok    bool
	}{
		{emojiSherpa, models.SignupSherpa, true},
		{emojiBackup, models.SignupBackup, true},
		{emojiBackout, models.SignupBackout, true},
		{"👍", "", false},
	}
	for _, tt := range tests {
		got, ok := signupKindForEmoji(tt.emoji)
		if ok != tt.ok || got != tt.want {
			t.Errorf("signupKindForEmoji(%q) = (%q, %v), want (%q, %v)",
				tt.emoji, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBuildWelcomeEmbed(t *testing.T) {
	user := &discordgo.User{ID: "42", Username: "newbie"}
	embed := buildWelcomeEmbed(user, "The Tower")

	if !strings.Contains(embed.Description, "<@42>") {
		t.Fatalf("description = %q, want mention", embed.Description)
	}
	if !strings.Contains(embed.Description, "The Tower") {
		t.Fatalf("description = %q, want guild name", embed.Description)
	}

	dm := welcomeDMContent("The Tower")
	if !strings.Contains(dm, "/join") || !strings.Contains(dm, "The Tower") {
		t.Fatalf("dm = %q, want /join hint and guild name", dm)
	}
}

func TestPromotionEmbed(t *testing.T) {
	user := &discordgo.User{ID: "7", Username: "guide"}
	embed := promotionEmbed(user, "the boss")

	if embed.Title != "Sherpa Promotion 🌟" {
		t.Fatalf("title = %q", embed.Title)
	}
	if !strings.Contains(embed.Description, "<@7>") {
		t.Fatalf("description = %q, want mention", embed.Description)
	}
	if embed.Footer == nil || embed.Footer.Text != "Promoted by the boss" {
		t.Fatalf("footer = %#v", embed.Footer)
	}
}
