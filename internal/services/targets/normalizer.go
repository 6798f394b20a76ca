package targets

import (
	"strings"

	"channel_reporter/internal/domain/model"
)

// minHandleLength counts the sigil: "@a" is the shortest accepted handle.
const minHandleLength = 2

var linkPrefixes = []string{"https://t.me/", "t.me/"}

type ParsedList struct {
	Valid    []model.Target
	Rejected []string
}

// Normalize turns free text into a canonical @handle target. The second
// return value is false when the input is not a well-formed handle.
func Normalize(raw string) (model.Target, bool) {
	handle := trimQuotes(strings.TrimSpace(raw))

	for _, prefix := range linkPrefixes {
		if strings.Contains(handle, prefix) {
			handle = lastPathSegment(handle)
			break
		}
	}

	if !strings.HasPrefix(handle, model.HandleSigil) {
		handle = model.HandleSigil + handle
	}

	if len(handle) < minHandleLength || !isValidHandle(strings.TrimPrefix(handle, model.HandleSigil)) {
		return model.Target{}, false
	}
	return model.HandleTarget(handle), true
}

// ParseList normalizes a multi-line target list, one target per line, in
// input order. Blank lines and lines that look like commands are skipped.
func ParseList(text string) ParsedList {
	parsed := ParsedList{
		Valid:    make([]model.Target, 0),
		Rejected: make([]string, 0),
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "/") {
			continue
		}
		target, ok := Normalize(line)
		if !ok {
			parsed.Rejected = append(parsed.Rejected, line)
			continue
		}
		parsed.Valid = append(parsed.Valid, target)
	}
	return parsed
}

func trimQuotes(value string) string {
	for len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first != last || !strings.ContainsRune("\"'`", rune(first)) {
			break
		}
		value = strings.TrimSpace(value[1 : len(value)-1])
	}
	return value
}

func lastPathSegment(link string) string {
	if idx := strings.IndexAny(link, "?#"); idx >= 0 {
		link = link[:idx]
	}
	link = strings.TrimRight(link, "/")
	if idx := strings.LastIndex(link, "/"); idx >= 0 {
		return link[idx+1:]
	}
	return link
}

func isValidHandle(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
