// Package telephony normalizes OpenPhone webhook events (calls, messages
// and contacts).
package telephony

import (
	"strings"

	"github.com/buger/jsonparser"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// ExtractEnvelope returns the event kind and the raw event object. The flat
// {type, data:{object}} form is preferred; the nested
// {object:{type, data:{object}}} form is accepted as a fallback. A missing
// object yields "{}" so field lookups miss instead of failing.
func ExtractEnvelope(payload []byte) (kind string, object []byte, err error) {
	if kind := stringAt(payload, "type"); kind != "" {
		return kind, objectAt(payload, "data", "object"), nil
	}
	if kind := stringAt(payload, "object", "type"); kind != "" {
		return kind, objectAt(payload, "object", "data", "object"), nil
	}
	return "", nil, notify.Invalid("Invalid OpenPhone payload format - missing event type")
}

func stringAt(data []byte, keys ...string) string {
	v, err := jsonparser.GetString(data, keys...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func objectAt(data []byte, keys ...string) []byte {
	v, dt, _, err := jsonparser.Get(data, keys...)
	if err != nil || dt != jsonparser.Object {
		return []byte("{}")
	}
	return v
}

// Object is the subset of an OpenPhone call, message or contact object the
// notifier cares about. Absent values are empty strings.
type Object struct {
	ID             string
	From           string
	To             string
	Direction      notify.Direction
	Status         string
	Body           string
	AnsweredAt     string
	CompletedAt    string
	CreatedAt      string
	HasVoicemail   bool
	VoicemailURL   string
	RecordingURL   string
	ConversationID string
	PhoneNumberID  string
	CallID         string
	ContactName    string
	Company        string
	Summary        []string
}

// ParseObject decodes an event object leniently; no field is required.
func ParseObject(object []byte) Object {
	o := Object{
		ID:             stringAt(object, "id"),
		From:           party(object, "from"),
		To:             party(object, "to"),
		Direction:      notify.ParseDirection(stringAt(object, "direction")),
		Status:         stringAt(object, "status"),
		Body:           firstNonEmpty(stringAt(object, "body"), stringAt(object, "text")),
		AnsweredAt:     stringAt(object, "answeredAt"),
		CompletedAt:    stringAt(object, "completedAt"),
		CreatedAt:      stringAt(object, "createdAt"),
		ConversationID: stringAt(object, "conversationId"),
		PhoneNumberID:  stringAt(object, "phoneNumberId"),
		CallID:         stringAt(object, "callId"),
		Company:        stringAt(object, "company"),
	}

	if _, dt, _, err := jsonparser.Get(object, "voicemail"); err == nil && dt == jsonparser.Object {
		o.HasVoicemail = true
		o.VoicemailURL = stringAt(object, "voicemail", "url")
	}
	o.RecordingURL = stringAt(object, "media", "[0]", "url")

	first, last := stringAt(object, "firstName"), stringAt(object, "lastName")
	o.ContactName = strings.TrimSpace(first + " " + last)

	_, _ = jsonparser.ArrayEach(object, func(v []byte, dt jsonparser.ValueType, _ int, _ error) {
		if dt != jsonparser.String {
			return
		}
		if s, err := jsonparser.ParseString(v); err == nil && strings.TrimSpace(s) != "" {
			o.Summary = append(o.Summary, strings.TrimSpace(s))
		}
	}, "summary")
	return o
}

// party reads a phone number that may be a string or a list of strings.
func party(object []byte, key string) string {
	v, dt, _, err := jsonparser.Get(object, key)
	if err != nil {
		return ""
	}
	switch dt {
	case jsonparser.String:
		s, _ := jsonparser.ParseString(v)
		return strings.TrimSpace(s)
	case jsonparser.Array:
		return stringAt(v, "[0]")
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
