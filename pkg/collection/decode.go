package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// List is the listCollections response envelope.
type List struct {
	Collections []Collection `json:"collections"`
}

// DecodeJSON reads collections from either a {"collections": [...]} envelope
// or a bare JSON array.
func DecodeJSON(r io.Reader) ([]Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var cs []Collection
		if err := json.Unmarshal(data, &cs); err != nil {
			return nil, fmt.Errorf("decode collections: %w", err)
		}
		return cs, nil
	}

	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return l.Collections, nil
}

// tomlFile mirrors the flat shape; BurntSushi/toml cannot reach the JSON
// unmarshaler on Field, so fields are decoded through flatField.
type tomlFile struct {
	Collections []struct {
		ID          string               `toml:"id"`
		Name        string               `toml:"name"`
		DisplayName string               `toml:"display_name"`
		Fields      map[string]flatField `toml:"fields"`
		Rules       []string             `toml:"rules"`
	} `toml:"collections"`
}

// DecodeTOML reads collections from a TOML document with [[collections]]
// tables.
func DecodeTOML(r io.Reader) ([]Collection, error) {
	var doc tomlFile
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}

	out := make([]Collection, 0, len(doc.Collections))
	for _, tc := range doc.Collections {
		c := Collection{
			ID:          tc.ID,
			Name:        tc.Name,
			DisplayName: tc.DisplayName,
			Rules:       tc.Rules,
		}
		if len(tc.Fields) > 0 {
			c.Fields = make(map[string]Field, len(tc.Fields))
		}
		for name, ff := range tc.Fields {
			f, err := ff.field()
			if err != nil {
				return nil, fmt.Errorf("collection %s field %s: %w", tc.ID, name, err)
			}
			c.Fields[name] = f
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadFile loads collections from a .json or .toml file.
func ReadFile(path string) ([]Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return DecodeTOML(f)
	case ".json", "":
		return DecodeJSON(f)
	default:
		return nil, fmt.Errorf("unsupported schema file extension %q", filepath.Ext(path))
	}
}

// WriteJSON writes collections in the {"collections": [...]} envelope.
func WriteJSON(w io.Writer, cs []Collection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(List{Collections: cs})
}
