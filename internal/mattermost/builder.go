package mattermost

import (
	"fmt"
	"strings"
	"time"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// profile is the fixed sender identity of one integration.
type profile struct {
	Username   string
	IconURL    string
	Footer     string
	FooterIcon string
}

const dattoIcon = "https://i.imgur.com/YJhsAgQ.png"

var profiles = map[notify.Source]profile{
	notify.SourceDatto: {
		Username:   "Datto RMM Alert System",
		IconURL:    dattoIcon,
		Footer:     "Datto RMM Alert System",
		FooterIcon: dattoIcon,
	},
	notify.SourceOpenPhone: {
		Username: "OpenPhone",
		Footer:   "OpenPhone",
	},
}

// Critical banner appended to Datto alerts.
const (
	bannerColor      = "#ff0000"
	bannerFooter     = "Critical Alert Banner"
	bannerFooterIcon = "https://cdn-icons-png.flaticon.com/512/564/564619.png"
)

// ActionSeparator joins the links of the quick-actions line.
const ActionSeparator = " • "

// Build converts a normalized event into a Mattermost document. It does not
// modify ev.
func Build(ev notify.Event) Document {
	p := profiles[ev.Source]

	att := Attachment{
		Color:      ev.Color,
		TitleLink:  titleLink(ev),
		Footer:     p.Footer,
		FooterIcon: p.FooterIcon,
		Timestamp:  ev.Timestamp,
	}

	var text string
	switch ev.Source {
	case notify.SourceDatto:
		text = fmt.Sprintf("%s **%s**\n📍 **%s** at **%s**", ev.Icon, ev.Title, ev.DeviceOrContact, ev.SiteOrLocation)
		att.Fallback = fmt.Sprintf("%s %s alert on %s at %s: %s", ev.Priority, ev.AlertType, ev.DeviceOrContact, ev.SiteOrLocation, ev.Description)
		att.Title = fmt.Sprintf("%s | %s", ev.DeviceOrContact, ev.SiteOrLocation)
		att.Text = fmt.Sprintf("**%s**", ev.Description)
		att.Fields = alertFields(ev)
	default:
		text = fmt.Sprintf("%s **%s**", ev.Icon, ev.Title)
		att.Fallback = fmt.Sprintf("%s: %s", ev.Title, ev.Summary)
		att.Title = ev.Title
		att.Text = ev.Summary
		att.Fields = telephonyFields(ev)
	}

	if actions := ActionLine(ev); actions != "" {
		att.Text += "\n\n" + actions
	}

	doc := Document{
		Username:    p.Username,
		IconURL:     p.IconURL,
		Text:        text,
		Attachments: []Attachment{att},
	}
	if ev.Source == notify.SourceDatto && ev.Priority == notify.PriorityCritical {
		doc.Attachments = append(doc.Attachments, criticalBanner(ev))
	}
	return doc
}

func alertFields(ev notify.Event) []Field {
	return []Field{
		{Title: "Priority", Value: string(ev.Priority), Short: true},
		{Title: "Category", Value: ev.Category, Short: true},
		{Title: "Site", Value: ev.SiteOrLocation, Short: true},
		{Title: "Device", Value: ev.DeviceOrContact, Short: true},
		{Title: "Last User", Value: ev.LastUser, Short: true},
		{Title: "Operating System", Value: ev.OS, Short: true},
		{Title: "Trigger Details", Value: ev.TriggerDetails, Short: false},
		{Title: "Device Description", Value: ev.DeviceDescription, Short: false},
	}
}

func telephonyFields(ev notify.Event) []Field {
	fields := []Field{
		{Title: "Event Type", Value: ev.Kind, Short: true},
		{Title: "Direction", Value: string(notify.ParseDirection(string(ev.Direction))), Short: true},
		{Title: "From Number", Value: ev.From, Short: true},
		{Title: "To Number", Value: ev.To, Short: true},
		{Title: "Status", Value: ev.Status, Short: true},
	}
	switch {
	case strings.HasPrefix(ev.Kind, "call."):
		fields = append(fields, Field{Title: "Duration", Value: notify.OrDefault(ev.Duration, notify.Unknown), Short: true})
		if ev.Body != "" {
			fields = append(fields, Field{Title: "Summary", Value: ev.Body, Short: false})
		}
	case strings.HasPrefix(ev.Kind, "message."):
		fields = append(fields, Field{Title: "Message", Value: notify.OrDefault(ev.Body, notify.NotAvailable), Short: false})
	case strings.HasPrefix(ev.Kind, "contact."):
		fields = append(fields, Field{Title: "Contact", Value: ev.DeviceOrContact, Short: true})
	}
	return fields
}

// titleLink picks the most relevant link in notify.LinkOrder.
func titleLink(ev notify.Event) string {
	for _, name := range notify.LinkOrder {
		if url := ev.Link(name); url != "" {
			return url
		}
	}
	return ""
}

// ActionLine renders the event's links as "[label](url)" tokens, or "" when
// the event has none.
func ActionLine(ev notify.Event) string {
	var actions []string
	for _, name := range notify.LinkOrder {
		if url := ev.Link(name); url != "" {
			actions = append(actions, fmt.Sprintf("[%s](%s)", notify.LinkLabels[name], url))
		}
	}
	if len(actions) == 0 {
		return ""
	}
	return "**Quick Actions:** " + strings.Join(actions, ActionSeparator)
}

func criticalBanner(ev notify.Event) Attachment {
	at := time.Unix(ev.Timestamp, 0).UTC().Format(time.RFC1123)
	return Attachment{
		Color: bannerColor,
		Text: fmt.Sprintf("⚠️ **IMMEDIATE ATTENTION REQUIRED** ⚠️\n\n"+
			"🚨 This is a **CRITICAL ALERT** that requires immediate investigation.\n"+
			"🔥 Device: **%s**\n📍 Location: **%s**\n⏰ Time: **%s**",
			ev.DeviceOrContact, ev.SiteOrLocation, at),
		Footer:     bannerFooter,
		FooterIcon: bannerFooterIcon,
	}
}
