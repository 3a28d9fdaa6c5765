package alert

import (
	"regexp"
	"strings"

	"github.com/swatto/hooktomattermost/internal/notify"
)

var (
	// headerReg matches Datto's header line "New monitoring alert on <device> | <site>".
	headerReg = regexp.MustCompile(`New monitoring alert on (.+?) \| (.+)`)
	// labelTokenReg matches the leading "*Label:*" markdown token of a field.
	labelTokenReg = regexp.MustCompile(`^\*([^*]+)\*\s*`)
	// linkReg captures the URL of a Slack link token "<url|label>".
	linkReg = regexp.MustCompile(`<([^|>]+)`)
)

// linkAnchor marks the section block that carries the action links.
const linkAnchor = "View Device"

// Names of the link fields Datto emits, keyed by notify link name.
var linkFieldNames = map[string]string{
	notify.LinkDevice: "View Device",
	notify.LinkAlert:  "View Alert",
	notify.LinkSite:   "View Site",
	notify.LinkRemote: "Web Remote",
}

// ParseHeader pulls device and site names out of the first block's text.
func ParseHeader(blocks []Block) (device, site string) {
	device, site = notify.UnknownDevice, notify.UnknownSite
	if len(blocks) == 0 {
		return device, site
	}
	m := headerReg.FindStringSubmatch(blocks[0].Text)
	if m == nil {
		return device, site
	}
	return notify.OrDefault(strings.TrimSpace(m[1]), notify.UnknownDevice),
		notify.OrDefault(strings.TrimSpace(m[2]), notify.UnknownSite)
}

// ExtractField returns the value of the field labelled label in the first
// section block that has fields, or notify.NotAvailable.
//
// A field whose markdown label equals label wins over one that merely
// contains it, so short labels like "OS" don't match "Host unreachable".
func ExtractField(blocks []Block, label string) string {
	section := fieldsSection(blocks)
	if section == nil {
		return notify.NotAvailable
	}

	field := fieldByLabel(section.Fields, label)
	if field == nil {
		return notify.NotAvailable
	}

	value := strings.TrimSpace(labelTokenReg.ReplaceAllString(field.Text, ""))
	return notify.OrDefault(value, notify.NotAvailable)
}

func fieldByLabel(fields []Field, label string) *Field {
	want := strings.ToLower(label)
	for i := range fields {
		m := labelTokenReg.FindStringSubmatch(fields[i].Text)
		if m == nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))) == want {
			return &fields[i]
		}
	}
	for i := range fields {
		if strings.Contains(strings.ToLower(fields[i].Text), want) {
			return &fields[i]
		}
	}
	return nil
}

// ExtractLink returns the URL of the link field called name (e.g. "View
// Alert") from the action-links block, or notify.NoLink.
func ExtractLink(blocks []Block, name string) string {
	section := sectionContaining(blocks, linkAnchor)
	if section == nil {
		return notify.NoLink
	}
	for _, f := range section.Fields {
		if !strings.Contains(f.Text, name) {
			continue
		}
		if m := linkReg.FindStringSubmatch(f.Text); m != nil && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1])
		}
		return notify.NoLink
	}
	return notify.NoLink
}

// ExtractLinks returns every action link present in the payload, keyed by
// notify link name. Missing links are left out.
func ExtractLinks(blocks []Block) map[string]string {
	links := map[string]string{}
	for key, name := range linkFieldNames {
		if url := ExtractLink(blocks, name); url != notify.NoLink {
			links[key] = url
		}
	}
	return links
}
