// Package alert normalizes Datto RMM monitoring alerts. Datto delivers them
// as Slack "blocks" messages, so every value has to be dug out of markdown
// strings rather than read from typed JSON fields.
package alert

import (
	"strings"

	"github.com/buger/jsonparser"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// BlockKind tags the variant of a Block.
type BlockKind int

const (
	KindOther BlockKind = iota
	KindHeader
	KindSection
)

// Field is one entry of a section block, usually "*Label:* Value" markdown
// or a "<url|label>" link token.
type Field struct {
	Type string
	Text string
}

// Block is a single Slack layout block. Only section blocks carry Fields.
type Block struct {
	Kind   BlockKind
	Text   string
	Fields []Field
}

// ParseBlocks decodes the blocks array of a Datto payload. A missing or
// non-array blocks member is a validation failure; malformed individual
// blocks are kept as KindOther so later lookups simply miss.
func ParseBlocks(payload []byte) ([]Block, error) {
	raw, dataType, _, err := jsonparser.Get(payload, "blocks")
	if err != nil || dataType != jsonparser.Array {
		return nil, notify.Invalid("Invalid Slack payload format - missing blocks")
	}

	blocks := []Block{}
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, _ error) {
		blocks = append(blocks, parseBlock(value, dt))
	})
	if err != nil {
		return nil, notify.Invalid("Invalid Slack payload format - malformed blocks")
	}
	return blocks, nil
}

func parseBlock(value []byte, dt jsonparser.ValueType) Block {
	if dt != jsonparser.Object {
		return Block{Kind: KindOther}
	}

	b := Block{Text: blockText(value)}
	blockType, _ := jsonparser.GetString(value, "type")
	switch blockType {
	case "header":
		b.Kind = KindHeader
	case "section":
		b.Kind = KindSection
		_, _ = jsonparser.ArrayEach(value, func(f []byte, fdt jsonparser.ValueType, _ int, _ error) {
			if fdt != jsonparser.Object {
				return
			}
			text, _ := jsonparser.GetString(f, "text")
			fieldType, _ := jsonparser.GetString(f, "type")
			b.Fields = append(b.Fields, Field{Type: fieldType, Text: text})
		}, "fields")
	default:
		b.Kind = KindOther
	}
	return b
}

// blockText accepts both {"text":{"text":"..."}} and {"text":"..."}.
func blockText(value []byte) string {
	if s, err := jsonparser.GetString(value, "text", "text"); err == nil {
		return s
	}
	if s, err := jsonparser.GetString(value, "text"); err == nil {
		return s
	}
	return ""
}

// fieldsSection returns the first section block that has fields.
func fieldsSection(blocks []Block) *Block {
	for i := range blocks {
		if blocks[i].Kind == KindSection && len(blocks[i].Fields) > 0 {
			return &blocks[i]
		}
	}
	return nil
}

// sectionContaining returns the first section block with a field whose text
// contains anchor.
func sectionContaining(blocks []Block, anchor string) *Block {
	for i := range blocks {
		if blocks[i].Kind != KindSection {
			continue
		}
		for _, f := range blocks[i].Fields {
			if strings.Contains(f.Text, anchor) {
				return &blocks[i]
			}
		}
	}
	return nil
}
