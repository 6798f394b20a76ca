package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"channel_reporter/internal/domain/model"
)

func HistoryDisabledMessage() string {
	return "ℹ️ History is unavailable: no database is configured"
}

func RenderHistory(entries []model.Audit) string {
	if len(entries) == 0 {
		return "📜 History is empty"
	}

	lines := []string{"📜 Recent actions", ""}
	for _, entry := range entries {
		line := fmt.Sprintf("%s %d %s", entry.CreatedAt.Format("01-02 15:04"), entry.ActorTGID, entry.Action)
		if details := payloadSummary(entry.Payload); details != "" {
			line += " " + details
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var historyPayloadKeys = map[string]struct{}{
	"target":    {},
	"reason":    {},
	"succeeded": {},
	"total":     {},
	"success":   {},
	"failure":   {},
}

// payloadSummary renders the handful of payload keys worth a glance, sorted
// for stable output.
func payloadSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		if _, ok := historyPayloadKeys[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, data[key]))
	}
	return strings.Join(parts, " ")
}
