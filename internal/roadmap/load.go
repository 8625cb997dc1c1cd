package roadmap

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
	"golang.org/x/mod/semver"
)

// SupportedSchemaMajor is the roadmap document major version this build reads.
const SupportedSchemaMajor = "v1"

// ErrUnknownItem is returned when an item id is not in the roadmap.
var ErrUnknownItem = errors.New("unknown roadmap item")

// ErrUnsupportedSchema is returned for documents with an incompatible schemaVersion.
var ErrUnsupportedSchema = errors.New("unsupported roadmap schema version")

//go:embed default_roadmap.jsonc
var defaultRoadmap []byte

// Document is the on-disk roadmap format.
type Document struct {
	SchemaVersion string   `json:"schemaVersion"`
	Title         string   `json:"title"`
	Items         []Item   `json:"items"`
	RootItemIDs   []string `json:"rootItemIds"`
}

// Parse decodes a roadmap document. JSONC comments and trailing commas are
// accepted.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(jsonc.ToJSON(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse roadmap: %w", err)
	}

	version := doc.SchemaVersion
	if version == "" {
		version = SupportedSchemaMajor + ".0.0"
	}
	if !semver.IsValid(version) {
		return nil, fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedSchema, doc.SchemaVersion)
	}
	if semver.Major(version) != SupportedSchemaMajor {
		return nil, fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedSchema, version, SupportedSchemaMajor)
	}
	doc.SchemaVersion = semver.Canonical(version)
	return &doc, nil
}

// Data converts the document into the keyed entity table.
// Duplicate or empty ids are rejected.
func (d *Document) Data() (Data, error) {
	data := Data{
		Items:       make(map[string]Item, len(d.Items)),
		RootItemIDs: d.RootItemIDs,
	}
	for i, it := range d.Items {
		if it.ID == "" {
			return Data{}, fmt.Errorf("item at index %d has no id", i)
		}
		if _, dup := data.Items[it.ID]; dup {
			return Data{}, fmt.Errorf("duplicate item id: %q", it.ID)
		}
		data.Items[it.ID] = it
	}
	return data, nil
}

// Load reads and indexes a roadmap file.
func Load(path string) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roadmap: %w", err)
	}
	return FromBytes(raw)
}

// LoadDefault indexes the built-in AI engineering roadmap.
func LoadDefault() (*Graph, error) {
	return FromBytes(defaultRoadmap)
}

// FromBytes parses raw and builds its Graph.
func FromBytes(raw []byte) (*Graph, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	data, err := doc.Data()
	if err != nil {
		return nil, err
	}
	return NewGraph(data), nil
}
