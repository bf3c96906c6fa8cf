// Package parser extracts typed audio routing state from the text emitted by
// `dumpsys media.audio_flinger`.
//
// Parsing is best-effort: rows that do not match a grammar are skipped and
// missing sections degrade to empty results. Nothing in this package returns
// an error for malformed input.
package parser

import (
	"fmt"
	"strings"
)

// UnknownAppFormat is the placeholder application id used when a track's
// owning pid is not present in the client registry.
const UnknownAppFormat = "未知应用(pid:%s)"

// PlaceholderApplicationID returns the placeholder application id for pid.
func PlaceholderApplicationID(pid string) string {
	return fmt.Sprintf(UnknownAppFormat, pid)
}

// IsPlaceholder reports whether appID was synthesized for an unresolved pid.
func IsPlaceholder(appID string) bool {
	return strings.HasPrefix(appID, "未知应用(pid:")
}

// TrackRecord is one currently-active playback track.
type TrackRecord struct {
	// ApplicationID is the resolved package name or a placeholder.
	ApplicationID string `json:"application_id"`

	// TrackID is the mixer's internal track identifier.
	TrackID string `json:"track_id"`

	// ClientPID is the owning process id as it appeared in the dump.
	ClientPID string `json:"client_pid"`

	// SampleRateHz is kept as text to avoid reinterpreting vendor formatting.
	SampleRateHz string `json:"sample_rate_hz"`
}

// TrackKey identifies a track within one snapshot.
type TrackKey struct {
	TrackID   string
	ClientPID string
}

// Key returns the deduplication key of the record.
func (t TrackRecord) Key() TrackKey {
	return TrackKey{TrackID: t.TrackID, ClientPID: t.ClientPID}
}

// ClientEntry is a single pid to application binding.
type ClientEntry struct {
	PID           string `json:"pid"`
	ApplicationID string `json:"application_id"`
}

// ClientRegistry maps process ids to application ids.
// Insertion order is retained for debugging output; on duplicate pids the
// last write wins but the pid keeps its first position.
type ClientRegistry struct {
	order []string
	apps  map[string]string
}

// NewClientRegistry returns an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{apps: make(map[string]string)}
}

// Set binds pid to appID.
func (r *ClientRegistry) Set(pid, appID string) {
	if _, ok := r.apps[pid]; !ok {
		r.order = append(r.order, pid)
	}
	r.apps[pid] = appID
}

// Lookup returns the application id bound to pid.
func (r *ClientRegistry) Lookup(pid string) (string, bool) {
	if r == nil {
		return "", false
	}
	app, ok := r.apps[pid]
	return app, ok
}

// Resolve returns the application id for pid, or the placeholder on a miss.
func (r *ClientRegistry) Resolve(pid string) string {
	if app, ok := r.Lookup(pid); ok {
		return app
	}
	return PlaceholderApplicationID(pid)
}

// Len returns the number of registered pids.
func (r *ClientRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Entries returns the bindings in insertion order.
func (r *ClientRegistry) Entries() []ClientEntry {
	if r == nil {
		return nil
	}
	entries := make([]ClientEntry, 0, len(r.order))
	for _, pid := range r.order {
		entries = append(entries, ClientEntry{PID: pid, ApplicationID: r.apps[pid]})
	}
	return entries
}
