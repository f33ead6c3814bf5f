// Package presets loads and validates the static activities.json file
// describing the raids, dungeons and exotic activities the bot offers.
package presets

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goonworks/goonbot/models"
)

// Category keys required in activities.json, in display order.
var categories = []string{"raids", "dungeons", "exotic_activities"}

// capByCategory is the fireteam size per activity category.
var capByCategory = map[string]int{
	"raids":             6,
	"dungeons":          3,
	"exotic_activities": 3,
}

const defaultCap = 6

// maxChoices is Discord's limit on autocomplete results.
const maxChoices = 25

// Warning records a malformed preset entry that was skipped during load.
type Warning struct {
	Category string
	Index    int
	Reason   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%d]: %s", w.Category, w.Index, w.Reason)
}

// Choice is one autocomplete option for an activity argument.
type Choice struct {
	Name  string
	Value string
}

// Library is the immutable in-memory view of the preset file.
type Library struct {
	byKey    map[string]models.Activity
	byOrder  []models.Activity
	warnings []Warning
}

type rawEntry struct {
	Name  *string `json:"name"`
	Emoji *string `json:"emoji"`
}

// Load reads and validates the preset file at path. A missing required
// category key aborts the load; a malformed entry is recorded as a
// Warning and skipped.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	lib := &Library{byKey: make(map[string]models.Activity)}

	for _, category := range categories {
		raw, ok := doc[category]
		if !ok {
			return nil, fmt.Errorf("presets: missing required key %q", category)
		}

		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("presets: key %q is not a list", category)
		}

		for i, rawItem := range entries {
			activity, warn := decodeEntry(category, i, rawItem)
			if warn != nil {
				lib.warnings = append(lib.warnings, *warn)
				continue
			}
			lib.byKey[normalize(activity.Name)] = activity
			lib.byOrder = append(lib.byOrder, activity)
		}
	}

	return lib, nil
}

func decodeEntry(category string, index int, raw json.RawMessage) (models.Activity, *Warning) {
	var entry rawEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return models.Activity{}, &Warning{category, index, "entry is not an object"}
	}
	if entry.Name == nil || strings.TrimSpace(*entry.Name) == "" {
		return models.Activity{}, &Warning{category, index, "missing name"}
	}
	if entry.Emoji == nil || strings.TrimSpace(*entry.Emoji) == "" {
		return models.Activity{}, &Warning{category, index, "missing emoji"}
	}
	return models.Activity{
		Name:     strings.TrimSpace(*entry.Name),
		Emoji:    strings.TrimSpace(*entry.Emoji),
		Category: category,
	}, nil
}

// Warnings returns the validation warnings recorded during load.
func (l *Library) Warnings() []Warning {
	return l.warnings
}

// All returns every loaded activity in category-then-file order.
func (l *Library) All() []models.Activity {
	out := make([]models.Activity, len(l.byOrder))
	copy(out, l.byOrder)
	return out
}

// Lookup returns the activity with the given name, case-insensitively.
func (l *Library) Lookup(name string) (models.Activity, bool) {
	a, ok := l.byKey[normalize(name)]
	return a, ok
}

// Contains reports whether name is a known activity.
func (l *Library) Contains(name string) bool {
	_, ok := l.Lookup(name)
	return ok
}

// CategoryOf returns the category key for an activity name, or "".
func (l *Library) CategoryOf(name string) string {
	a, ok := l.Lookup(name)
	if !ok {
		return ""
	}
	return a.Category
}

// CapFor returns the fireteam capacity for an activity's queue.
func (l *Library) CapFor(name string) int {
	if cap, ok := capByCategory[l.CategoryOf(name)]; ok {
		return cap
	}
	return defaultCap
}

// CategoryLabel returns the display label for a category key.
func CategoryLabel(category string) string {
	switch category {
	case "raids":
		return "Raid"
	case "dungeons":
		return "Dungeon"
	case "exotic_activities":
		return "Exotic"
	}
	return "Activity"
}

// Choices returns up to 25 autocomplete choices whose names contain
// prefix (case-insensitive). When nothing matches, the first 25
// activities are returned so the picker is never empty.
func (l *Library) Choices(prefix string) []Choice {
	pref := normalize(prefix)

	var out []Choice
	for _, category := range categories {
		names := l.namesIn(category)
		sort.Slice(names, func(i, j int) bool {
			return strings.ToLower(names[i]) < strings.ToLower(names[j])
		})
		label := CategoryLabel(category)
		for _, name := range names {
			if pref != "" && !strings.Contains(strings.ToLower(name), pref) {
				continue
			}
			out = append(out, Choice{Name: label + ": " + name, Value: name})
			if len(out) >= maxChoices {
				return out
			}
		}
	}

	if len(out) == 0 {
		all := l.All()
		sort.Slice(all, func(i, j int) bool {
			return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name)
		})
		for _, a := range all {
			out = append(out, Choice{
				Name:  CategoryLabel(a.Category) + ": " + a.Name,
				Value: a.Name,
			})
			if len(out) >= maxChoices {
				break
			}
		}
	}
	return out
}

func (l *Library) namesIn(category string) []string {
	var names []string
	for _, a := range l.byOrder {
		if a.Category == category {
			names = append(names, a.Name)
		}
	}
	return names
}

func normalize(in string) string {
	return strings.ToLower(strings.TrimSpace(in))
}
