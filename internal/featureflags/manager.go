// Package featureflags evaluates runtime flags parsed from a
// comma-separated config string. Flags gate behavior that should be
// switchable without a deploy, such as falling the ranked feed back to
// chronological order.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// FlagChronologicalFeed forces newest-first feed order for the users it
// matches. It is the kill switch for the ranking pass.
const FlagChronologicalFeed = "chronological_feed"

// Manager evaluates flags parsed from a string such as
// "chronological_feed=off,image_uploads=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses a comma-separated key=value flag list. Malformed
// pairs are skipped so a config typo never takes the server down.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = normalize(key)
		value = normalize(value)
		if !ok || key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled reports whether a flag is on for the given user. Values may be
// on/true/1, off/false/0, or a percentage like "25%" which rolls the
// flag out to a deterministic slice of users. Unknown flags are off, and
// anonymous users (userID 0) never fall inside a percentage rollout.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil || pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if userID == 0 {
			return false
		}
		return rolloutBucket(name, userID) < pct
	}

	return false
}

// Snapshot returns the evaluated status of every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// rolloutBucket hashes the flag name and user into 0..99. The same user
// stays in the same bucket across requests so rollouts do not flap.
func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
