package main

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/swatto/hooktomattermost/internal/handler"
)

func TestPadCenter(t *testing.T) {
	tests := []struct {
		s      string
		width  int
		length int // expected total length in runes
	}{
		{"ab", 5, 5},
		{"x", 3, 3},
		{"", 4, 4},
		{"hello", 5, 5},
		{"hello", 10, 10},
		{"hooktomattermost", 64, 64},
		{"Datto → Mattermost", 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.s+"/"+fmt.Sprint(tt.width), func(t *testing.T) {
			got := padCenter(tt.s, tt.width)
			if n := utf8.RuneCountInString(got); n != tt.length {
				t.Errorf("padCenter(%q, %d) length = %d, want %d", tt.s, tt.width, n, tt.length)
			}
			if !strings.Contains(got, tt.s) && utf8.RuneCountInString(tt.s) < tt.width {
				t.Errorf("padCenter(%q, %d) = %q lost its content", tt.s, tt.width, got)
			}
		})
	}
}

func TestConfigLine(t *testing.T) {
	// Value should start at rune column configValueAt (24).
	tests := []struct {
		label string
		value string
	}{
		{"Port", "9090"},
		{"Mattermost", "https://chat.example.com/hooks/…"},
		{"Relay timeout", "30s"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := configLine(tt.label, tt.value)
			idx := strings.Index(got, tt.value)
			if idx < 0 {
				t.Fatalf("configLine(%q, %q) = %q: value missing", tt.label, tt.value, got)
			}
			if col := utf8.RuneCountInString(got[:idx]); col != configValueAt {
				t.Errorf("configLine(%q, %q) = %q: value at column %d, want %d", tt.label, tt.value, got, col, configValueAt)
			}
		})
	}

	long := configLine("A very long configuration label", "v")
	if !strings.Contains(long, ": v") {
		t.Errorf("long label should keep one space before the value, got %q", long)
	}
}

func TestRedactWebhook(t *testing.T) {
	tests := map[string]string{
		"":                                       "not set (webhooks will fail)",
		"https://chat.example.com/hooks/s3cr3tk": "https://chat.example.com/hooks/…",
		"::nope":                                 "(invalid)",
	}
	for in, want := range tests {
		if got := redactWebhook(in); got != want {
			t.Errorf("redactWebhook(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintBanner_Defaults(t *testing.T) {
	output := captureStdout(func() {
		printBanner("8080", &handler.Config{RelayTimeout: 30 * time.Second})
	})

	for _, want := range []string{"8080", AppName, "not set", "30s", "simple", "info", "POST /webhook/datto", "POST /webhook/openphone"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected banner to contain %q, got:\n%s", want, output)
		}
	}
	for _, unwanted := range []string{"Rate limit", "Webhook auth", "Dry-run"} {
		if strings.Contains(output, unwanted) {
			t.Errorf("banner should not mention %q by default, got:\n%s", unwanted, output)
		}
	}
}

func TestPrintBanner_OptionalFields(t *testing.T) {
	output := captureStdout(func() {
		printBanner("9090", &handler.Config{
			WebhookURL:    "https://chat.example.com/hooks/s3cr3tk",
			InboxURL:      "https://inbox.example.com",
			RateLimit:     100,
			LogFormat:     "nginx",
			LogLevel:      "debug",
			WebhookSecret: "secret",
			DryRun:        true,
			LogPayloads:   true,
		})
	})

	for _, want := range []string{
		"https://chat.example.com/hooks/…", "100 req/min", "nginx", "debug",
		"https://inbox.example.com (custom)", "enabled (Bearer)", "Dry-run", "Payload logging",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected banner to contain %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "s3cr3tk") {
		t.Errorf("banner must not print the webhook key, got:\n%s", output)
	}
	if strings.Contains(output, "secret") {
		t.Errorf("banner must not print the webhook secret, got:\n%s", output)
	}
}
