package protocol

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads one protocol JSON document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding protocol: %w", err)
	}
	return &doc, nil
}

// Merge concatenates the domains of several documents in argument order,
// as when a protocol ships split across browser and JS files. The first
// declared version wins.
func Merge(docs ...*Document) *Document {
	merged := &Document{}
	for _, d := range docs {
		if d == nil {
			continue
		}
		if merged.Version == nil && d.Version != nil {
			v := *d.Version
			merged.Version = &v
		}
		merged.Domains = append(merged.Domains, d.Domains...)
	}
	return merged
}
