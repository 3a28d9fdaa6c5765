// Package notify defines the source-agnostic event that every webhook
// normalizer produces and the Mattermost builder consumes.
package notify

import "strings"

// Source identifies the integration a webhook came from.
type Source string

const (
	SourceDatto     Source = "datto"
	SourceOpenPhone Source = "openphone"
)

// Priority is the urgency derived by a classifier.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityWarning  Priority = "Warning"
	PriorityMedium   Priority = "Medium"
	PriorityInfo     Priority = "Info"
	PriorityResolved Priority = "Resolved"
)

// Direction of a telephony event.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionUnknown  Direction = "unknown"
)

// ParseDirection maps the raw payload value, anything unexpected becomes
// DirectionUnknown.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case DirectionIncoming, DirectionOutgoing:
		return Direction(s)
	default:
		return DirectionUnknown
	}
}

// Placeholders substituted for values missing from a payload.
const (
	NotAvailable  = "N/A"
	Unknown       = "Unknown"
	UnknownDevice = "Unknown Device"
	UnknownSite   = "Unknown Site"
	NoLink        = "#"
)

// Link names used as keys in Event.Links.
const (
	LinkAlert        = "alert"
	LinkDevice       = "device"
	LinkSite         = "site"
	LinkRemote       = "remote"
	LinkConversation = "conversation"
	LinkVoicemail    = "voicemail"
	LinkRecording    = "recording"
)

// LinkOrder is the order links are rendered in and the priority used when
// picking a title link.
var LinkOrder = []string{
	LinkAlert,
	LinkDevice,
	LinkSite,
	LinkRemote,
	LinkConversation,
	LinkVoicemail,
	LinkRecording,
}

// LinkLabels are the human labels rendered for each link.
var LinkLabels = map[string]string{
	LinkAlert:        "View Alert",
	LinkDevice:       "View Device",
	LinkSite:         "View Site",
	LinkRemote:       "Web Remote",
	LinkConversation: "Open Conversation",
	LinkVoicemail:    "Play Voicemail",
	LinkRecording:    "Play Recording",
}

// Event is the normalized form of one inbound webhook. Every string field the
// builder renders is non-empty; normalizers fill placeholders for misses.
//
//nolint:govet // fieldalignment: grouped by source for readability
type Event struct {
	Source Source

	DeviceOrContact string
	SiteOrLocation  string

	// Datto RMM
	AlertType         string
	Category          string
	Description       string
	TriggerDetails    string
	DeviceDescription string
	LastUser          string
	OS                string

	// OpenPhone
	Kind           string
	Direction      Direction
	From           string
	To             string
	Status         string
	AnsweredAt     string
	CompletedAt    string
	Duration       string
	VoicemailURL   string
	RecordingURL   string
	ConversationID string
	Body           string

	// Classification
	Title    string
	Summary  string
	Color    string
	Icon     string
	Priority Priority

	Links     map[string]string
	Timestamp int64
}

// Link returns the URL stored under name, or "" when the payload had none.
func (e *Event) Link(name string) string {
	if e.Links == nil {
		return ""
	}
	return e.Links[name]
}

// OrDefault returns s, or def when s is empty or whitespace.
func OrDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
