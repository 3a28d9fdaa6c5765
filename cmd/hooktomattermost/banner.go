package main

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/swatto/hooktomattermost/internal/handler"
)

const (
	boxInnerWidth = 64
	configValueAt = 24 // column where config values start
)

// padCenter returns s centered in a string of length width, padded with spaces.
func padCenter(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	pad := width - n
	left := pad / 2
	right := pad - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// boxLine returns a box line with s centered between the vertical borders.
func boxLine(s string) string {
	return "║" + padCenter(s, boxInnerWidth) + "║"
}

// configLine returns a config line with label and value, value aligned at configValueAt.
// There is always at least one space between the colon and the value.
// Uses rune count for padding so multi-byte characters (e.g. •) don't break alignment.
func configLine(label, value string) string {
	prefix := "    • " + label + ":"
	prefixWidth := utf8.RuneCountInString(prefix)
	pad := max(1, configValueAt-prefixWidth)
	return prefix + strings.Repeat(" ", pad) + value
}

// redactWebhook keeps scheme and host only; the path of a Mattermost
// incoming webhook is its credential.
func redactWebhook(raw string) string {
	if raw == "" {
		return "not set (webhooks will fail)"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(invalid)"
	}
	return u.Scheme + "://" + u.Host + "/hooks/…"
}

// printBanner prints startup information about the application
func printBanner(port string, cfg *handler.Config) {
	border := "╔" + strings.Repeat("═", boxInnerWidth) + "╗"
	fmt.Println()
	fmt.Println(border)
	fmt.Println(boxLine(AppName))
	fmt.Println(boxLine(AppDescription))
	fmt.Println("╚" + strings.Repeat("═", boxInnerWidth) + "╝")
	fmt.Println()
	fmt.Printf("  Version:        %s\n", Version)
	fmt.Printf("  Go version:     %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:        %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Println()
	fmt.Println("  Configuration:")
	fmt.Println(configLine("Port", port))
	fmt.Println(configLine("Mattermost", redactWebhook(cfg.WebhookURL)))
	fmt.Println(configLine("Relay timeout", cfg.RelayTimeout.String()))
	logFmt := cfg.LogFormat
	if logFmt == "" {
		logFmt = "simple"
	}
	fmt.Println(configLine("Log format", logFmt))
	logLevel := cfg.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	fmt.Println(configLine("Log level", logLevel))
	if cfg.RateLimit > 0 {
		fmt.Println(configLine("Rate limit", fmt.Sprintf("%d req/min", cfg.RateLimit)))
	}
	if cfg.InboxURL != "" {
		fmt.Println(configLine("Inbox URL", cfg.InboxURL+" (custom)"))
	}
	if cfg.WebhookSecret != "" {
		fmt.Println(configLine("Webhook auth", "enabled (Bearer)"))
	}
	if cfg.DryRun {
		fmt.Println(configLine("Dry-run", "enabled (nothing posted)"))
	}
	if cfg.LogPayloads {
		fmt.Println(configLine("Payload logging", "enabled (debug level)"))
	}
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println(configLine("Datto RMM", "POST /webhook/datto"))
	fmt.Println(configLine("OpenPhone", "POST /webhook/openphone"))
	fmt.Println()
	fmt.Printf("  Server listening on http://0.0.0.0:%s\n", port)
	fmt.Println()
}
