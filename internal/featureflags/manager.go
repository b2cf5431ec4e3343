// Package featureflags evaluates runtime toggles parsed from the
// FEATURE_FLAGS config string. The service uses them to switch the WebP
// social-card encoder and the metrics dashboard without a redeploy.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// flagState is one parsed flag: fully on, or a percentage rollout
// bucketed per user. off is the zero value.
type flagState struct {
	on      bool
	rollout int
}

// Manager answers Enabled checks against flags parsed once at startup.
// Safe for concurrent reads.
type Manager struct {
	states map[string]flagState
}

// NewManager parses a comma-separated "name=value" list. Values are
// on/true/1, off/false/0, or "N%" for a deterministic per-user rollout.
// Malformed entries are skipped.
func NewManager(raw string) *Manager {
	states := make(map[string]flagState)
	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = canon(name)
		if name == "" {
			continue
		}
		if st, ok := parseValue(canon(value)); ok {
			states[name] = st
		}
	}
	return &Manager{states: states}
}

func parseValue(v string) (flagState, bool) {
	switch v {
	case "on", "true", "1":
		return flagState{on: true}, true
	case "off", "false", "0":
		return flagState{}, true
	}
	if pct, found := strings.CutSuffix(v, "%"); found {
		n, err := strconv.Atoi(pct)
		if err != nil || n < 0 || n > 100 {
			return flagState{}, false
		}
		return flagState{rollout: n}, true
	}
	return flagState{}, false
}

// Enabled reports whether a flag is on for the given user. Unknown flags
// are off. Percentage rollouts need a real user ID; userID 0 (anonymous
// traffic, crawlers) only passes at 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	st, ok := m.states[canon(name)]
	if !ok {
		return false
	}
	if st.on {
		return true
	}
	switch {
	case st.rollout >= 100:
		return true
	case st.rollout <= 0 || userID == 0:
		return false
	}
	return bucket(canon(name), userID) < st.rollout
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.states))
	for name := range m.states {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func canon(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket maps (flag, user) into [0,100) so a rollout admits the same
// users on every evaluation.
func bucket(name string, userID uint) int {
	h := fnv.New32a()
	h.Write([]byte(name))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
