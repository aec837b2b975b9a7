// Package domain contains entity without logic, just meta-data
package domain

const MaxDisplayNameLen = 64

const (
	DefaultHostName  = "Host"
	DefaultGuestName = "Guest"
)

// SessionID identifies one transport connection for its lifetime.
// A reconnecting client gets a fresh SessionID with no continuity.
type SessionID string

// DisplayName normalizes a client-supplied name: empty falls back to
// the role default, overlong names are cut at MaxDisplayNameLen.
func DisplayName(name string, isHost bool) string {
	if name == "" {
		if isHost {
			return DefaultHostName
		}
		return DefaultGuestName
	}
	if len(name) > MaxDisplayNameLen {
		return name[:MaxDisplayNameLen]
	}
	return name
}
