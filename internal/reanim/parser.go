package reanim

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
)

// Parse decodes reanim content. Reanim files have no root element, so the
// content is wrapped in <reanim> before decoding.
func Parse(data []byte) (*ReanimXML, error) {
	wrapped := make([]byte, 0, len(data)+len("<reanim></reanim>"))
	wrapped = append(wrapped, "<reanim>"...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, "</reanim>"...)

	var r ReanimXML
	if err := xml.Unmarshal(wrapped, &r); err != nil {
		return nil, fmt.Errorf("failed to parse reanim XML: %w", err)
	}
	if r.FPS <= 0 {
		return nil, fmt.Errorf("reanim has invalid fps %d", r.FPS)
	}
	return &r, nil
}

// ParseReanimFile parses a reanim file from disk.
//
// Example:
//
//	r, err := reanim.ParseReanimFile("data/reanim/PeaShooter.reanim")
//	if err != nil {
//	    log.Fatalf("Failed to parse reanim: %v", err)
//	}
func ParseReanimFile(path string) (*ReanimXML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reanim file '%s': %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return r, nil
}

// ParseReanimFS parses a reanim file from fsys (e.g. the embedded data FS).
func ParseReanimFS(fsys fs.FS, path string) (*ReanimXML, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reanim file '%s': %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return r, nil
}
