package collection

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType is the tagged-variant case of a [Field].
type FieldType int

const (
	TypeUnknown FieldType = iota
	TypeIdentifier
	TypeString
	TypeInteger
	TypeBool
	TypeDouble
	TypeTimestamp
	TypeReference
	TypeBytes
	TypeArray
	TypeMap
)

// oneofKeys maps each type to its protobuf-JSON oneof key.
var oneofKeys = map[FieldType]string{
	TypeIdentifier: "identifierType",
	TypeString:     "stringType",
	TypeInteger:    "integerType",
	TypeBool:       "boolType",
	TypeDouble:     "doubleType",
	TypeTimestamp:  "timestampType",
	TypeReference:  "referenceType",
	TypeBytes:      "bytesType",
	TypeArray:      "arrayType",
	TypeMap:        "mapType",
}

var typeLabels = map[FieldType]string{
	TypeIdentifier: "identifier",
	TypeString:     "string",
	TypeInteger:    "integer",
	TypeBool:       "boolean",
	TypeDouble:     "double",
	TypeTimestamp:  "timestamp",
	TypeReference:  "reference",
	TypeBytes:      "bytes",
	TypeArray:      "array",
	TypeMap:        "map",
}

// String returns the display label for the type ("boolean", "reference", ...).
func (t FieldType) String() string {
	if s, ok := typeLabels[t]; ok {
		return s
	}
	return "unknown"
}

// ParseFieldType accepts a display label, a short alias ("bool"), or a
// protobuf-JSON oneof key ("referenceType"). Unrecognized names yield
// TypeUnknown and false.
func ParseFieldType(s string) (FieldType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "type")
	switch s {
	case "bool":
		return TypeBool, true
	case "int", "int64":
		return TypeInteger, true
	case "id":
		return TypeIdentifier, true
	case "ref":
		return TypeReference, true
	}
	for t, label := range typeLabels {
		if s == label {
			return t, true
		}
	}
	return TypeUnknown, false
}

// Field is a typed column of a [Collection].
//
// Value carries the case's associated value. Only the reference case is
// inspected by the diagram: by convention it embeds the target's resource
// name ("collections/users").
type Field struct {
	Type     FieldType
	Value    string
	Required bool
	System   bool
}

// IsReference reports whether the field references another collection.
func (f Field) IsReference() bool { return f.Type == TypeReference }

// flatField is the hand-written shape: {"type": "reference", "value": "..."}.
type flatField struct {
	Type     string `json:"type" toml:"type"`
	Value    string `json:"value,omitempty" toml:"value"`
	Required bool   `json:"required,omitempty" toml:"required"`
	System   bool   `json:"system,omitempty" toml:"system"`
}

func (ff flatField) field() (Field, error) {
	t, ok := ParseFieldType(ff.Type)
	if !ok && ff.Type != "" {
		return Field{}, fmt.Errorf("unknown field type %q", ff.Type)
	}
	return Field{Type: t, Value: ff.Value, Required: ff.Required, System: ff.System}, nil
}

// UnmarshalJSON decodes either the protobuf-JSON oneof shape or the flat
// {"type", "value"} shape.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if _, flat := raw["type"]; flat {
		var ff flatField
		if err := json.Unmarshal(data, &ff); err != nil {
			return err
		}
		parsed, err := ff.field()
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	}

	*f = Field{}
	if v, ok := raw["required"]; ok {
		if err := json.Unmarshal(v, &f.Required); err != nil {
			return fmt.Errorf("decode required: %w", err)
		}
	}
	if v, ok := raw["system"]; ok {
		if err := json.Unmarshal(v, &f.System); err != nil {
			return fmt.Errorf("decode system: %w", err)
		}
	}
	for t, key := range oneofKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		f.Type = t
		// Scalar cases carry a string; message cases ({} for timestamps) are
		// kept only as a type tag.
		var s string
		if json.Unmarshal(v, &s) == nil {
			f.Value = s
		}
		break
	}
	return nil
}

// MarshalJSON encodes the field in the protobuf-JSON oneof shape.
func (f Field) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)
	if key, ok := oneofKeys[f.Type]; ok {
		if f.Type == TypeTimestamp {
			out[key] = struct{}{}
		} else {
			out[key] = f.Value
		}
	}
	if f.Required {
		out["required"] = true
	}
	if f.System {
		out["system"] = true
	}
	return json.Marshal(out)
}
