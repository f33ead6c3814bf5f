package presets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write presets file: %v", err)
	}
	return path
}

const wellFormed = `{
  "raids": [
    {"name": "Last Wish", "emoji": "🐍"},
    {"name": "Vault of Glass", "emoji": "🔮"}
  ],
  "dungeons": [
    {"name": "Duality", "emoji": "🔔"}
  ],
  "exotic_activities": [
    {"name": "Zero Hour", "emoji": "💾"}
  ]
}`

func TestLoadWellFormed(t *testing.T) {
	lib, err := Load(writePresets(t, wellFormed))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := len(lib.All()); got != 4 {
		t.Fatalf("expected 4 activities, got %d", got)
	}
	if len(lib.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %v", lib.Warnings())
	}

	a, ok := lib.Lookup("last wish")
	if !ok {
		t.Fatal("expected case-insensitive lookup to find Last Wish")
	}
	if a.Emoji != "🐍" {
		t.Fatalf("emoji = %q, want 🐍", a.Emoji)
	}
	if a.Category != "raids" {
		t.Fatalf("category = %q, want raids", a.Category)
	}
}

func TestLoadSkipsMalformedEntry(t *testing.T) {
	content := `{
  "raids": [
    {"name": "Last Wish", "emoji": "🐍"},
    {"name": "King's Fall"},
    {"emoji": "👑"}
  ],
  "dungeons": [],
  "exotic_activities": []
}`
	lib, err := Load(writePresets(t, content))
	if err != nil {
		t.Fatalf("load should not abort on malformed entries: %v", err)
	}

	if got := len(lib.All()); got != 1 {
		t.Fatalf("expected 1 well-formed activity, got %d", got)
	}
	warns := lib.Warnings()
	if len(warns) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warns)
	}
	if !strings.Contains(warns[0].String(), "missing emoji") {
		t.Fatalf("warning = %q, want missing emoji", warns[0])
	}
	if !strings.Contains(warns[1].String(), "missing name") {
		t.Fatalf("warning = %q, want missing name", warns[1])
	}
}

func TestLoadMissingCategoryKey(t *testing.T) {
	content := `{"raids": [], "dungeons": []}`
	if _, err := Load(writePresets(t, content)); err == nil {
		t.Fatal("expected error for missing exotic_activities key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCapFor(t *testing.T) {
	lib, err := Load(writePresets(t, wellFormed))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		activity string
		want     int
	}{
		{"Last Wish", 6},
		{"Duality", 3},
		{"Zero Hour", 3},
		{"Not A Thing", 6},
	}
	for _, tt := range tests {
		if got := lib.CapFor(tt.activity); got != tt.want {
			t.Errorf("CapFor(%s) = %d, want %d", tt.activity, got, tt.want)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"raids", "Raid"},
		{"dungeons", "Dungeon"},
		{"exotic_activities", "Exotic"},
		{"whatever", "Activity"},
	}
	for _, tt := range tests {
		if got := CategoryLabel(tt.category); got != tt.want {
			t.Errorf("CategoryLabel(%s) = %s, want %s", tt.category, got, tt.want)
		}
	}
}

func TestChoices(t *testing.T) {
	lib, err := Load(writePresets(t, wellFormed))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	choices := lib.Choices("wish")
	if len(choices) != 1 {
		t.Fatalf("expected 1 choice for 'wish', got %v", choices)
	}
	if choices[0].Name != "Raid: Last Wish" || choices[0].Value != "Last Wish" {
		t.Fatalf("unexpected choice %v", choices[0])
	}

	// Unmatched prefix falls back to the full list.
	fallback := lib.Choices("zzzz")
	if len(fallback) != 4 {
		t.Fatalf("expected 4 fallback choices, got %d", len(fallback))
	}

	all := lib.Choices("")
	if len(all) != 4 {
		t.Fatalf("expected 4 choices for empty prefix, got %d", len(all))
	}
	// Raids come before dungeons regardless of alphabetical order.
	if !strings.HasPrefix(all[0].Name, "Raid: ") {
		t.Fatalf("expected raids first, got %v", all[0])
	}
}
