package telephony

import (
	"net/url"
	"strings"
	"time"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// DefaultInboxURL is the OpenPhone web inbox used to build conversation links.
const DefaultInboxURL = "https://my.openphone.com/inbox"

// Normalizer turns OpenPhone webhook bodies into notify.Events.
type Normalizer struct {
	// InboxURL prefixes conversation links; empty means DefaultInboxURL.
	InboxURL string
}

// Normalize validates the envelope, classifies the event and fills every
// rendered field. now is used when the payload carries no usable time.
func (n Normalizer) Normalize(payload []byte, now time.Time) (notify.Event, error) {
	kind, raw, err := ExtractEnvelope(payload)
	if err != nil {
		return notify.Event{}, err
	}
	o := ParseObject(raw)
	class := Classify(kind, o)

	ev := notify.Event{
		Source:          notify.SourceOpenPhone,
		DeviceOrContact: displayName(kind, o),
		SiteOrLocation:  notify.Unknown,
		Kind:            kind,
		Direction:       o.Direction,
		From:            FormatPhone(o.From),
		To:              FormatPhone(o.To),
		Status:          notify.OrDefault(o.Status, notify.NotAvailable),
		AnsweredAt:      o.AnsweredAt,
		CompletedAt:     o.CompletedAt,
		VoicemailURL:    o.VoicemailURL,
		RecordingURL:    o.RecordingURL,
		ConversationID:  o.ConversationID,
		Body:            body(o),
		Title:           class.Title,
		Summary:         class.Description,
		Color:           class.Color,
		Icon:            class.Icon,
		Priority:        class.Priority,
		Links:           n.links(o),
		Timestamp:       timestamp(payload, o, now),
	}
	if strings.HasPrefix(kind, "call.") {
		ev.Duration = Duration(o.AnsweredAt, o.CompletedAt)
	}
	return ev, nil
}

func displayName(kind string, o Object) string {
	if strings.HasPrefix(kind, "contact.") {
		return notify.OrDefault(notify.OrDefault(o.ContactName, o.Company), notify.Unknown)
	}
	if o.From == "" && o.To == "" {
		return notify.Unknown
	}
	return counterpart(o)
}

func body(o Object) string {
	if o.Body != "" {
		return o.Body
	}
	return strings.Join(o.Summary, "\n")
}

func (n Normalizer) links(o Object) map[string]string {
	links := map[string]string{}
	if o.VoicemailURL != "" {
		links[notify.LinkVoicemail] = o.VoicemailURL
	}
	if o.RecordingURL != "" {
		links[notify.LinkRecording] = o.RecordingURL
	}
	if o.ConversationID != "" && o.PhoneNumberID != "" {
		base := strings.TrimRight(notify.OrDefault(n.InboxURL, DefaultInboxURL), "/")
		links[notify.LinkConversation] = base + "/" + url.PathEscape(o.PhoneNumberID) + "/c/" + url.PathEscape(o.ConversationID)
	}
	return links
}

// timestamp prefers the object's completion time, then its creation time,
// then the envelope's createdAt.
func timestamp(payload []byte, o Object, now time.Time) int64 {
	candidates := []string{
		o.CompletedAt,
		o.CreatedAt,
		stringAt(payload, "createdAt"),
		stringAt(payload, "object", "createdAt"),
	}
	for _, c := range candidates {
		if t, ok := parseTime(c); ok {
			return t.Unix()
		}
	}
	return now.Unix()
}
