// Command mock-sources plays the upstream side of an end-to-end run: it posts
// a Datto RMM alert or an OpenPhone event to the relay, the way the vendors'
// webhook senders do, and prints the relay's answer.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const dattoAlert = `{
  "blocks": [
    {"type": "header", "text": {"type": "plain_text", "text": "New monitoring alert on Server01 | Main Office"}},
    {"type": "section", "fields": [
      {"type": "mrkdwn", "text": "*Category:* Critical"},
      {"type": "mrkdwn", "text": "*Description:* Disk C: is 97% full on host"},
      {"type": "mrkdwn", "text": "*Alert Type:* Disk Usage"},
      {"type": "mrkdwn", "text": "*Last User:* CORP\\jdoe"},
      {"type": "mrkdwn", "text": "*OS:* Microsoft Windows Server 2019"}
    ]},
    {"type": "section", "fields": [
      {"type": "mrkdwn", "text": "<https://rmm.example.com/device/42|View Device>"},
      {"type": "mrkdwn", "text": "<https://rmm.example.com/alert/9001|View Alert>"}
    ]}
  ]
}`

const missedCall = `{
  "type": "call.completed",
  "data": {"object": {"direction": "incoming", "from": "+15205675515", "to": "+15551234567", "status": "no-answer", "conversationId": "CN42"}}
}`

const messageReceived = `{
  "type": "message.received",
  "data": {"object": {"direction": "incoming", "from": "+15205675515", "to": "+15551234567", "body": "Is the server back up?"}}
}`

var samples = map[string]struct {
	path    string
	payload string
}{
	"datto":   {"/webhook/datto", dattoAlert},
	"call":    {"/webhook/openphone", missedCall},
	"message": {"/webhook/openphone", messageReceived},
}

func main() {
	target := flag.String("target", envOr("RELAY_URL", "http://localhost:9090"), "relay base URL")
	sample := flag.String("sample", "datto", "payload to send: datto, call or message")
	secret := flag.String("secret", os.Getenv("WEBHOOK_SECRET"), "bearer token for the relay")
	flag.Parse()

	s, ok := samples[*sample]
	if !ok {
		slog.Error("unknown sample", "sample", *sample)
		os.Exit(2)
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*target, "/")+s.path, strings.NewReader(s.payload))
	if err != nil {
		slog.Error("failed to build request", "error", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if *secret != "" {
		req.Header.Set("Authorization", "Bearer "+*secret)
	}

	client := &http.Client{Timeout: 45 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		slog.Error("request failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	slog.Info("relay answered", "sample", *sample, "status", resp.StatusCode, "request_id", resp.Header.Get("X-Request-ID"))
	fmt.Println(string(body))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
