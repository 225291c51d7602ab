// Package featureflags gates optional behavior behind named flags parsed
// from configuration.
package featureflags

import "strings"

// Known flags.
const (
	// PushNotifications enables the WebSocket push channel.
	PushNotifications = "push_notifications"
	// WeeklyRanking enables the trailing-window leaderboard scope.
	WeeklyRanking = "weekly_ranking"
)

// Manager holds the enabled flag set. It is immutable after construction,
// so reads need no locking.
type Manager struct {
	enabled map[string]struct{}
}

// New parses a comma-separated flag list. Unknown names are kept; a flag
// that nothing checks is harmless.
func New(raw string) *Manager {
	m := &Manager{enabled: make(map[string]struct{})}
	for _, name := range strings.Split(raw, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			m.enabled[name] = struct{}{}
		}
	}
	return m
}

func (m *Manager) Enabled(flag string) bool {
	_, ok := m.enabled[flag]
	return ok
}

// List returns the enabled flags for diagnostics.
func (m *Manager) List() []string {
	flags := make([]string, 0, len(m.enabled))
	for name := range m.enabled {
		flags = append(flags, name)
	}
	return flags
}
