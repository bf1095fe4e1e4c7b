package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Decode reads a resume file. A JSON document with a "sections" list is decoded
// field by field; anything else is treated as "## Title" text.
func Decode(data []byte) (Content, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return FromText(string(data)), nil
	}

	var doc map[string]any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Content{}, fmt.Errorf("parse resume json: %w", err)
	}
	return DecodeDocument(doc)
}

// DecodeDocument decodes a generic document into Content. Section lines may be
// given as a single string, and a missing type is derived from the title.
func DecodeDocument(doc map[string]any) (Content, error) {
	var c Content
	cfg := &mapstructure.DecoderConfig{
		Result:           &c,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return Content{}, err
	}
	if err := decoder.Decode(doc); err != nil {
		return Content{}, fmt.Errorf("decode resume: %w", err)
	}

	for i := range c.Sections {
		s := &c.Sections[i]
		s.Title = strings.TrimSpace(s.Title)
		if s.Type == "" {
			s.Type = TypeForTitle(s.Title)
		}
		if len(s.Lines) == 1 && strings.Contains(s.Lines[0], "\n") {
			s.Lines = trimBlankEdges(strings.Split(s.Lines[0], "\n"))
		}
		if s.Order == 0 && i > 0 {
			s.Order = i
		}
	}
	return c, nil
}
