package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/buger/jsonparser"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/swatto/hooktomattermost/internal/handler"
	"github.com/swatto/hooktomattermost/internal/notify"
)

func newRenderCmd() *cobra.Command {
	var source, format string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Show the Mattermost message a webhook payload would produce, without sending it",
		Long: `Render runs a Datto RMM or OpenPhone webhook payload through the same
normalizer and builder as the server and prints the result. The payload is
read from file, or from stdin when no file (or "-") is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), source, format, payload)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "auto", "payload source: auto, datto or openphone")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	return cmd
}

func readPayload(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return data, nil
}

// detectSource guesses the integration from the payload shape: Datto alerts
// carry a top-level blocks array.
func detectSource(payload []byte) notify.Source {
	if _, dt, _, err := jsonparser.Get(payload, "blocks"); err == nil && dt == jsonparser.Array {
		return notify.SourceDatto
	}
	return notify.SourceOpenPhone
}

func render(w io.Writer, sourceFlag, format string, payload []byte) error {
	var source notify.Source
	switch sourceFlag {
	case "auto", "":
		source = detectSource(payload)
	case string(notify.SourceDatto), string(notify.SourceOpenPhone):
		source = notify.Source(sourceFlag)
	default:
		return fmt.Errorf("unknown source %q (want auto, datto or openphone)", sourceFlag)
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}

	h := handler.NewWithRelay(&handler.Config{DryRun: true}, nil, Version)
	res, err := h.Render(source, payload)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Document)
	}
	renderTable(w, source, res)
	return nil
}

func renderTable(w io.Writer, source notify.Source, res *handler.Result) {
	doc := res.Document
	primary := doc.Attachments[0]

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("%s → Mattermost", source)
	t.AppendHeader(table.Row{"FIELD", "VALUE", "SHORT"})
	t.AppendRows([]table.Row{
		{"Username", doc.Username, ""},
		{"Text", doc.Text, ""},
		{"Priority", res.Event.Priority, ""},
		{"Color", primary.Color, ""},
		{"Title", primary.Title, ""},
		{"Title link", primary.TitleLink, ""},
	})
	t.AppendSeparator()
	for _, f := range primary.Fields {
		t.AppendRow(table.Row{f.Title, f.Value, f.Short})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Body", primary.Text, ""})
	if len(doc.Attachments) > 1 {
		t.AppendRow(table.Row{"Banner", doc.Attachments[1].Text, ""})
	}
	t.Render()
}
