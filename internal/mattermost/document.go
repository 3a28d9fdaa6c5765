// Package mattermost builds Mattermost incoming-webhook messages from
// normalized events and delivers them.
package mattermost

// Document is the JSON body accepted by a Mattermost incoming webhook.
type Document struct {
	Username    string       `json:"username,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a Slack-compatible message attachment.
type Attachment struct {
	Color      string  `json:"color,omitempty"`
	Fallback   string  `json:"fallback,omitempty"`
	Title      string  `json:"title,omitempty"`
	TitleLink  string  `json:"title_link,omitempty"`
	Text       string  `json:"text,omitempty"`
	Fields     []Field `json:"fields,omitempty"`
	Footer     string  `json:"footer,omitempty"`
	FooterIcon string  `json:"footer_icon,omitempty"`
	Timestamp  int64   `json:"ts,omitempty"`
}

// Field is rendered in a two-column grid when Short is true.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
