// Package kingdom parses group-chat participant strings and maps group names to kingdoms.
package kingdom

import "strings"

// Separators split "participant <sep> group" strings, checked in this order
var Separators = []string{" إلى ", " to ", " -> ", " => "}

// GroupParticipant is the parsed form of a raw group participant string
type GroupParticipant struct {
	Participant string
	Group       string // empty when no separator matched
}

// ParseGroupParticipant splits raw on the first separator it contains.
// The group keeps any later occurrences of the separator.
// It returns false for empty input.
func ParseGroupParticipant(raw string) (GroupParticipant, bool) {
	if raw == "" {
		return GroupParticipant{}, false
	}
	for _, sep := range Separators {
		participant, group, found := strings.Cut(raw, sep)
		if !found {
			continue
		}
		return GroupParticipant{
			Participant: strings.TrimSpace(participant),
			Group:       strings.TrimSpace(group),
		}, true
	}
	return GroupParticipant{Participant: strings.TrimSpace(raw)}, true
}

// GroupName returns the parsed group, or raw itself when no separator matched
func GroupName(raw string) string {
	gp, ok := ParseGroupParticipant(raw)
	if ok && gp.Group != "" {
		return gp.Group
	}
	return raw
}
