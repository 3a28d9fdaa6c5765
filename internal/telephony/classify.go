package telephony

import (
	"fmt"
	"sort"
	"strings"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// Classification is the presentation chosen for one OpenPhone event.
type Classification struct {
	Title       string
	Description string
	Color       string
	Icon        string
	Priority    notify.Priority
}

const (
	colorMissed    = "#d32f2f"
	colorVoicemail = "#ff8c00"
	colorAnswered  = "#2e7d32"
	colorOutgoing  = "#1976d2"
	colorRinging   = "#00bfff"
	colorMessage   = "#7b1fa2"
	colorDelivered = "#43a047"
	colorMedia     = "#00897b"
	colorContact   = "#607d8b"
	colorDeleted   = "#795548"
	colorFallback  = "#9e9e9e"
)

// FallbackTitle is used for event kinds outside the dispatch table.
const FallbackTitle = "OpenPhone Event"

type classifier func(kind string, o Object) Classification

// dispatch is closed: every kind OpenPhone can send that we render
// specially. Unknown kinds go through fallback.
var dispatch = map[string]classifier{
	"call.ringing":              callRinging,
	"call.completed":            callCompleted,
	"call.recording.completed":  callRecording,
	"call.summary.completed":    callSummary,
	"call.transcript.completed": callTranscript,
	"message.received":          messageReceived,
	"message.delivered":         messageDelivered,
	"contact.updated":           contactUpdated,
	"contact.deleted":           contactDeleted,
}

// Kinds lists the event kinds with a dedicated classification, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(dispatch))
	for k := range dispatch {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Classify picks title, description, color, icon and priority for an event.
// It never fails: unknown kinds get a generic Info classification.
func Classify(kind string, o Object) Classification {
	if c, ok := dispatch[kind]; ok {
		return c(kind, o)
	}
	return fallback(kind, o)
}

func fallback(kind string, _ Object) Classification {
	return Classification{
		Title:       FallbackTitle,
		Description: fmt.Sprintf("Received %s event", notify.OrDefault(kind, "unknown")),
		Color:       colorFallback,
		Icon:        "📱",
		Priority:    notify.PriorityInfo,
	}
}

func callRinging(_ string, o Object) Classification {
	return Classification{
		Title:       "Incoming Call",
		Description: fmt.Sprintf("%s is calling %s", FormatPhone(o.From), FormatPhone(o.To)),
		Color:       colorRinging,
		Icon:        "📞",
		Priority:    notify.PriorityInfo,
	}
}

func callCompleted(_ string, o Object) Classification {
	from, to := FormatPhone(o.From), FormatPhone(o.To)
	switch o.Direction {
	case notify.DirectionOutgoing:
		return Classification{
			Title:       "Outgoing Call Completed",
			Description: fmt.Sprintf("Call to %s lasted %s", to, Duration(o.AnsweredAt, o.CompletedAt)),
			Color:       colorOutgoing,
			Icon:        "📤",
			Priority:    notify.PriorityInfo,
		}
	case notify.DirectionIncoming:
		switch {
		case o.AnsweredAt != "":
			return Classification{
				Title:       "Call Answered",
				Description: fmt.Sprintf("Call from %s lasted %s", from, Duration(o.AnsweredAt, o.CompletedAt)),
				Color:       colorAnswered,
				Icon:        "✅",
				Priority:    notify.PriorityInfo,
			}
		case o.HasVoicemail:
			return Classification{
				Title:       "New Voicemail",
				Description: fmt.Sprintf("%s left a voicemail", from),
				Color:       colorVoicemail,
				Icon:        "📩",
				Priority:    notify.PriorityMedium,
			}
		default:
			return Classification{
				Title:       "Missed Call",
				Description: fmt.Sprintf("Missed call from %s", from),
				Color:       colorMissed,
				Icon:        "❌",
				Priority:    notify.PriorityWarning,
			}
		}
	default:
		return Classification{
			Title:       "Call Completed",
			Description: fmt.Sprintf("Call between %s and %s ended", from, to),
			Color:       colorOutgoing,
			Icon:        "☎️",
			Priority:    notify.PriorityInfo,
		}
	}
}

func callRecording(_ string, o Object) Classification {
	return Classification{
		Title:       "Call Recording Available",
		Description: fmt.Sprintf("Recording ready for call with %s", counterpart(o)),
		Color:       colorMedia,
		Icon:        "🎙️",
		Priority:    notify.PriorityInfo,
	}
}

func callSummary(_ string, o Object) Classification {
	desc := "A call summary is ready"
	if len(o.Summary) > 0 {
		desc = strings.Join(o.Summary, " ")
	}
	return Classification{
		Title:       "Call Summary Ready",
		Description: desc,
		Color:       colorMedia,
		Icon:        "📝",
		Priority:    notify.PriorityInfo,
	}
}

func callTranscript(_ string, o Object) Classification {
	return Classification{
		Title:       "Call Transcript Ready",
		Description: fmt.Sprintf("Transcript available for call %s", notify.OrDefault(o.CallID, notify.Unknown)),
		Color:       colorMedia,
		Icon:        "🗒️",
		Priority:    notify.PriorityInfo,
	}
}

func messageReceived(_ string, o Object) Classification {
	return Classification{
		Title:       "New Message Received",
		Description: fmt.Sprintf("Message from %s", FormatPhone(o.From)),
		Color:       colorMessage,
		Icon:        "💬",
		Priority:    notify.PriorityMedium,
	}
}

func messageDelivered(_ string, o Object) Classification {
	return Classification{
		Title:       "Message Delivered",
		Description: fmt.Sprintf("Message delivered to %s", FormatPhone(o.To)),
		Color:       colorDelivered,
		Icon:        "📨",
		Priority:    notify.PriorityInfo,
	}
}

func contactUpdated(_ string, o Object) Classification {
	return Classification{
		Title:       "Contact Updated",
		Description: fmt.Sprintf("%s was updated", contactLabel(o)),
		Color:       colorContact,
		Icon:        "👤",
		Priority:    notify.PriorityInfo,
	}
}

func contactDeleted(_ string, o Object) Classification {
	return Classification{
		Title:       "Contact Deleted",
		Description: fmt.Sprintf("%s was deleted", contactLabel(o)),
		Color:       colorDeleted,
		Icon:        "🗑️",
		Priority:    notify.PriorityMedium,
	}
}

// counterpart is the number on the other end of the line from our side.
func counterpart(o Object) string {
	if o.Direction == notify.DirectionOutgoing {
		return FormatPhone(o.To)
	}
	return FormatPhone(o.From)
}

func contactLabel(o Object) string {
	if o.ContactName != "" {
		return o.ContactName
	}
	if o.Company != "" {
		return o.Company
	}
	return "A contact"
}
