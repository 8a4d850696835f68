package recent

import (
	"encoding/json"
	"time"
)

// Entry is one recently opened project.
type Entry struct {
	Path       string    `json:"path"`        // Absolute path to the .kicad_pro file
	Name       string    `json:"name"`        // File name without extension
	LastOpened time.Time `json:"last_opened"` // When the project was last opened
}

// timestampLayouts are tried in order. Files written by other KiAssist builds
// carry ISO-8601 local times without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp reads last_opened. Offset-less values are local time.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON accepts any timestamp parseTimestamp understands and leaves
// LastOpened zero for anything else.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path       string          `json:"path"`
		Name       string          `json:"name"`
		LastOpened json.RawMessage `json:"last_opened"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Path, e.Name, e.LastOpened = raw.Path, raw.Name, time.Time{}

	var s string
	if json.Unmarshal(raw.LastOpened, &s) == nil {
		if t, ok := parseTimestamp(s); ok {
			e.LastOpened = t
		}
	}
	return nil
}

// ledgerData is the on-disk document
type ledgerData struct {
	RecentProjects []Entry `json:"recent_projects"`
}

// rawLedger defers entry decoding so one bad entry does not cost the rest.
type rawLedger struct {
	RecentProjects []json.RawMessage `json:"recent_projects"`
}
