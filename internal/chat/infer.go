package chat

import (
	"fmt"
	"regexp"
)

// inferTarget picks the participant that should reply to a human message
// when no explicit target was given. Resolution order:
//
//  1. the sole non-author participant, unconditionally;
//  2. only with auto routing: an @name mention, a "name:" prefix or a bare
//     name-as-word in the message, scanning candidates in registration order;
//  3. the most recent non-author participant with a turn in the transcript;
//  4. "" — ambiguous.
//
// Caller must hold conv.mu.
func inferTarget(conv *Conversation, authorID, message string, allowAutoRoute bool) string {
	var candidates []string
	for _, pid := range conv.order {
		if pid != authorID {
			candidates = append(candidates, pid)
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	if !allowAutoRoute {
		return ""
	}

	for _, candidate := range candidates {
		if mentioned(message, candidate) {
			return candidate
		}
	}

	for i := len(conv.transcript) - 1; i >= 0; i-- {
		sid := conv.transcript[i].SpeakerID
		for _, candidate := range candidates {
			if sid == candidate {
				return sid
			}
		}
	}

	return ""
}

// mentioned reports whether the message names the candidate, matching
// case-insensitively on @name, "name:" or name as a whole word.
func mentioned(message, name string) bool {
	quoted := regexp.QuoteMeta(name)
	patterns := []string{
		fmt.Sprintf(`(?i)@%s\b`, quoted),
		fmt.Sprintf(`(?i)\b%s\s*:`, quoted),
		fmt.Sprintf(`(?i)\b%s\b`, quoted),
	}
	for _, p := range patterns {
		if regexp.MustCompile(p).MatchString(message) {
			return true
		}
	}
	return false
}
