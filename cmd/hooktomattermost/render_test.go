package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/swatto/hooktomattermost/internal/mattermost"
	"github.com/swatto/hooktomattermost/internal/notify"
)

const missedCall = `{"type":"call.completed","data":{"object":{"direction":"incoming","from":"+15205675515","to":"+15551234567","status":"no-answer"}}}`

func readAlertFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "handler", "testdata", "datto_critical.json"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return data
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    notify.Source
	}{
		{"blocks array", `{"blocks":[]}`, notify.SourceDatto},
		{"openphone event", missedCall, notify.SourceOpenPhone},
		{"blocks not an array", `{"blocks":"x"}`, notify.SourceOpenPhone},
		{"empty object", `{}`, notify.SourceOpenPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectSource([]byte(tt.payload)); got != tt.want {
				t.Errorf("detectSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "openphone", "table", []byte(missedCall)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"openphone → Mattermost", "FIELD", "From Number", "(520) 567-5515", "OpenPhone"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Banner") {
		t.Errorf("telephony events never carry a banner, got:\n%s", out)
	}
}

func TestRender_AutoDetectsDatto(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "auto", "table", readAlertFixture(t)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"datto → Mattermost", "Server01", "Main Office", "Banner"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "", "json", readAlertFixture(t)); err != nil {
		t.Fatalf("render: %v", err)
	}

	var doc mattermost.Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not a Mattermost document: %v\n%s", err, buf.String())
	}
	if doc.Username != "Datto RMM Alert System" {
		t.Errorf("unexpected username %q", doc.Username)
	}
	if len(doc.Attachments) != 2 {
		t.Fatalf("expected primary and banner attachments, got %d", len(doc.Attachments))
	}
	if doc.Attachments[1].Color != "#ff0000" {
		t.Errorf("expected red banner, got %q", doc.Attachments[1].Color)
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		format  string
		payload string
		want    string
	}{
		{"unknown source", "slack", "table", missedCall, "unknown source"},
		{"unknown format", "auto", "yaml", missedCall, "unknown format"},
		{"invalid json", "openphone", "table", `{"type":`, "Invalid JSON payload"},
		{"datto without blocks", "datto", "json", `{"text":"hello"}`, "blocks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := render(&buf, tt.source, tt.format, []byte(tt.payload))
			if err == nil {
				t.Fatalf("expected error, got output:\n%s", buf.String())
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err)
			}
			if buf.Len() != 0 {
				t.Errorf("nothing should be written on error, got %q", buf.String())
			}
		})
	}
}

func TestRenderCmd(t *testing.T) {
	t.Run("file argument", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "call.json")
		if err := os.WriteFile(path, []byte(missedCall), 0o600); err != nil {
			t.Fatal(err)
		}

		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"render", "--format", "json", path})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("render command failed: %v", err)
		}
		if !strings.Contains(out.String(), `"username": "OpenPhone"`) {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("stdin", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader(missedCall))
		cmd.SetArgs([]string{"render", "-s", "openphone", "-"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("render command failed: %v", err)
		}
		if !strings.Contains(out.String(), "(520) 567-5515") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"render", filepath.Join(t.TempDir(), "absent.json")})
		if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "failed to read payload") {
			t.Fatalf("expected read error, got %v", err)
		}
	})
}
