package mattermost

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swatto/hooktomattermost/internal/notify"
)

func criticalAlert() notify.Event {
	return notify.Event{
		Source:            notify.SourceDatto,
		DeviceOrContact:   "Server01",
		SiteOrLocation:    "Main Office",
		AlertType:         "Disk Usage",
		Category:          "Critical",
		Description:       "Disk C: is 97% full",
		TriggerDetails:    "Threshold 95% exceeded",
		DeviceDescription: "Primary file server",
		LastUser:          `CORP\jdoe`,
		OS:                "Microsoft Windows Server 2019",
		Title:             "DISK USAGE ALERT",
		Summary:           "Disk C: is 97% full",
		Color:             "#ff0000",
		Icon:              "🔥",
		Priority:          notify.PriorityCritical,
		Links: map[string]string{
			notify.LinkDevice: "https://rmm.example.com/device/42",
			notify.LinkAlert:  "https://rmm.example.com/alert/9001",
		},
		Timestamp: 1704067200,
	}
}

func missedCall() notify.Event {
	return notify.Event{
		Source:          notify.SourceOpenPhone,
		DeviceOrContact: "(520) 567-5515",
		SiteOrLocation:  notify.Unknown,
		Kind:            "call.completed",
		Direction:       notify.DirectionIncoming,
		From:            "(520) 567-5515",
		To:              "(555) 123-4567",
		Status:          "no-answer",
		Duration:        notify.Unknown,
		Title:           "Missed Call",
		Summary:         "Missed call from (520) 567-5515",
		Color:           "#d32f2f",
		Icon:            "❌",
		Priority:        notify.PriorityWarning,
		Links:           map[string]string{},
		Timestamp:       1704067200,
	}
}

func TestBuild_CriticalAlert(t *testing.T) {
	got := Build(criticalAlert())

	want := Document{
		Username: "Datto RMM Alert System",
		IconURL:  dattoIcon,
		Text:     "🔥 **DISK USAGE ALERT**\n📍 **Server01** at **Main Office**",
		Attachments: []Attachment{
			{
				Color:     "#ff0000",
				Fallback:  "Critical Disk Usage alert on Server01 at Main Office: Disk C: is 97% full",
				Title:     "Server01 | Main Office",
				TitleLink: "https://rmm.example.com/alert/9001",
				Text: "**Disk C: is 97% full**\n\n**Quick Actions:** " +
					"[View Alert](https://rmm.example.com/alert/9001) • [View Device](https://rmm.example.com/device/42)",
				Fields: []Field{
					{Title: "Priority", Value: "Critical", Short: true},
					{Title: "Category", Value: "Critical", Short: true},
					{Title: "Site", Value: "Main Office", Short: true},
					{Title: "Device", Value: "Server01", Short: true},
					{Title: "Last User", Value: `CORP\jdoe`, Short: true},
					{Title: "Operating System", Value: "Microsoft Windows Server 2019", Short: true},
					{Title: "Trigger Details", Value: "Threshold 95% exceeded"},
					{Title: "Device Description", Value: "Primary file server"},
				},
				Footer:     "Datto RMM Alert System",
				FooterIcon: dattoIcon,
				Timestamp:  1704067200,
			},
			{
				Color: bannerColor,
				Text: "⚠️ **IMMEDIATE ATTENTION REQUIRED** ⚠️\n\n" +
					"🚨 This is a **CRITICAL ALERT** that requires immediate investigation.\n" +
					"🔥 Device: **Server01**\n📍 Location: **Main Office**\n⏰ Time: **Mon, 01 Jan 2024 00:00:00 UTC**",
				Footer:     bannerFooter,
				FooterIcon: bannerFooterIcon,
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_AlertWithoutBanner(t *testing.T) {
	for _, p := range []notify.Priority{notify.PriorityWarning, notify.PriorityMedium, notify.PriorityInfo, notify.PriorityResolved} {
		ev := criticalAlert()
		ev.Priority = p
		doc := Build(ev)
		assert.Len(t, doc.Attachments, 1, "priority %s", p)
	}
}

func TestBuild_AlertFieldOrderIsStable(t *testing.T) {
	ev := criticalAlert()
	ev.LastUser = notify.NotAvailable
	ev.Links = nil

	att := Build(ev).Attachments[0]
	var titles []string
	for _, f := range att.Fields {
		titles = append(titles, f.Title)
	}
	assert.Equal(t, []string{
		"Priority", "Category", "Site", "Device", "Last User", "Operating System",
		"Trigger Details", "Device Description",
	}, titles)
	assert.Empty(t, att.TitleLink)
	assert.NotContains(t, att.Text, "Quick Actions")
	assert.Equal(t, notify.NotAvailable, att.Fields[4].Value)
}

func TestBuild_MissedCall(t *testing.T) {
	doc := Build(missedCall())

	assert.Equal(t, "OpenPhone", doc.Username)
	assert.Empty(t, doc.IconURL)
	assert.Equal(t, "❌ **Missed Call**", doc.Text)
	require.Len(t, doc.Attachments, 1)

	att := doc.Attachments[0]
	assert.Equal(t, "#d32f2f", att.Color)
	assert.Equal(t, "Missed Call", att.Title)
	assert.Equal(t, "Missed call from (520) 567-5515", att.Text)
	assert.Empty(t, att.TitleLink)

	want := []Field{
		{Title: "Event Type", Value: "call.completed", Short: true},
		{Title: "Direction", Value: "incoming", Short: true},
		{Title: "From Number", Value: "(520) 567-5515", Short: true},
		{Title: "To Number", Value: "(555) 123-4567", Short: true},
		{Title: "Status", Value: "no-answer", Short: true},
		{Title: "Duration", Value: "Unknown", Short: true},
	}
	if diff := cmp.Diff(want, att.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_TelephonyVariants(t *testing.T) {
	t.Run("message body becomes a long field", func(t *testing.T) {
		ev := missedCall()
		ev.Kind = "message.received"
		ev.Body = "Can you call me back?"
		fields := Build(ev).Attachments[0].Fields
		last := fields[len(fields)-1]
		assert.Equal(t, Field{Title: "Message", Value: "Can you call me back?"}, last)
	})

	t.Run("call summary", func(t *testing.T) {
		ev := missedCall()
		ev.Kind = "call.summary.completed"
		ev.Body = "Customer asked about invoices"
		fields := Build(ev).Attachments[0].Fields
		assert.Equal(t, "Duration", fields[5].Title)
		assert.Equal(t, Field{Title: "Summary", Value: "Customer asked about invoices"}, fields[6])
	})

	t.Run("contact event", func(t *testing.T) {
		ev := missedCall()
		ev.Kind = "contact.updated"
		ev.DeviceOrContact = "Grace Hopper"
		ev.Direction = ""
		fields := Build(ev).Attachments[0].Fields
		assert.Equal(t, "unknown", fields[1].Value)
		assert.Equal(t, Field{Title: "Contact", Value: "Grace Hopper", Short: true}, fields[len(fields)-1])
	})

	t.Run("conversation link", func(t *testing.T) {
		ev := missedCall()
		ev.Links = map[string]string{
			notify.LinkVoicemail:    "https://files.example.com/vm.mp3",
			notify.LinkConversation: "https://my.openphone.com/inbox/PN7/c/CN42",
		}
		att := Build(ev).Attachments[0]
		assert.Equal(t, "https://my.openphone.com/inbox/PN7/c/CN42", att.TitleLink)
		assert.True(t, strings.HasSuffix(att.Text,
			"**Quick Actions:** [Open Conversation](https://my.openphone.com/inbox/PN7/c/CN42) • [Play Voicemail](https://files.example.com/vm.mp3)"))
	})

	t.Run("critical telephony event has no banner", func(t *testing.T) {
		ev := missedCall()
		ev.Priority = notify.PriorityCritical
		assert.Len(t, Build(ev).Attachments, 1)
	})
}

func TestBuild_DoesNotModifyEvent(t *testing.T) {
	ev := criticalAlert()
	before := criticalAlert()
	Build(ev)
	if diff := cmp.Diff(before, ev); diff != "" {
		t.Errorf("event modified (-before +after):\n%s", diff)
	}
}

func TestActionLine(t *testing.T) {
	ev := notify.Event{Links: map[string]string{
		notify.LinkRemote: "https://remote.example.com/42",
		notify.LinkSite:   "https://rmm.example.com/site/7",
		notify.LinkAlert:  "https://rmm.example.com/alert/1",
		notify.LinkDevice: "https://rmm.example.com/device/42",
	}}
	assert.Equal(t,
		"**Quick Actions:** [View Alert](https://rmm.example.com/alert/1) • "+
			"[View Device](https://rmm.example.com/device/42) • "+
			"[View Site](https://rmm.example.com/site/7) • "+
			"[Web Remote](https://remote.example.com/42)",
		ActionLine(ev))

	assert.Empty(t, ActionLine(notify.Event{}))
}

func TestDocumentJSON(t *testing.T) {
	data, err := json.Marshal(Build(missedCall()))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "icon_url")
	att := raw["attachments"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 1704067200, att["ts"])
	assert.NotContains(t, att, "title_link")
}

func TestClient_Send(t *testing.T) {
	var got Document
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	doc := Build(criticalAlert())
	require.NoError(t, client.Send(context.Background(), &doc))

	assert.Contains(t, contentType, "application/json")
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("delivered document mismatch (-sent +received):\n%s", diff)
	}
}

func TestClient_SendNon2xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	doc := Build(missedCall())
	err := NewClient(server.URL, time.Second).Send(context.Background(), &doc)
	require.Error(t, err)

	var relayErr *RelayError
	require.True(t, errors.As(err, &relayErr))
	assert.Equal(t, http.StatusServiceUnavailable, relayErr.Status)
	assert.Equal(t, "maintenance", relayErr.Body)
	assert.Contains(t, err.Error(), "503")
	assert.EqualValues(t, 1, calls.Load(), "relay must not retry")
}

func TestClient_SendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	doc := Build(missedCall())
	err := NewClient(url, time.Second).Send(context.Background(), &doc)
	require.Error(t, err)

	var relayErr *RelayError
	require.True(t, errors.As(err, &relayErr))
	assert.Zero(t, relayErr.Status)
	assert.Error(t, relayErr.Err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("http://example.invalid/hooks/x", 0)
	assert.Equal(t, "http://example.invalid/hooks/x", c.URL())
	assert.Equal(t, DefaultTimeout, c.http.GetClient().Timeout)
}
