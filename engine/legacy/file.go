// Package legacy reads the flat settings.xml file older plugin versions kept
// in their profile directory.
package legacy

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/slyguy/settings/engine/settings"
	"github.com/slyguy/settings/pkg/logger"
)

// FileName is the legacy file name inside a profile directory.
const FileName = "settings.xml"

type document struct {
	XMLName  xml.Name  `xml:"settings"`
	Settings []element `xml:"setting"`
}

type element struct {
	ID      string `xml:"id,attr"`
	Default string `xml:"default,attr"`
	Value   string `xml:"value,attr"`
	Text    string `xml:",chardata"`
}

// Parse decodes a legacy settings document. Both the element text form and
// the older value attribute form are accepted; elements without an id are
// skipped.
func Parse(r io.Reader) ([]settings.LegacyEntry, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("legacy: parse settings: %w", err)
	}
	entries := make([]settings.LegacyEntry, 0, len(doc.Settings))
	for _, el := range doc.Settings {
		if el.ID == "" {
			continue
		}
		value := el.Text
		if strings.TrimSpace(value) == "" {
			value = el.Value
		}
		entries = append(entries, settings.LegacyEntry{
			ID:      el.ID,
			Value:   value,
			Default: el.Default == "true",
		})
	}
	return entries, nil
}

// File is a settings.LegacySource backed by a settings.xml file. A missing
// file has no entries.
type File struct {
	path string
}

var _ settings.LegacySource = (*File)(nil)

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Entries(ctx context.Context) ([]settings.LegacyEntry, error) {
	log := logger.FromContext(ctx)
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("No legacy settings file", "path", f.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("legacy: open %s: %w", f.path, err)
	}
	defer file.Close()
	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, f.path)
	}
	log.Debug("Read legacy settings", "path", f.path, "entries", len(entries))
	return entries, nil
}
