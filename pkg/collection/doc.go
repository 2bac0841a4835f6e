// Package collection defines the schema descriptors rendered by schematic.
//
// A [Collection] is a named schema definition, analogous to a table, with
// typed [Field]s and opaque validation rules. Collections are produced by an
// external backend (see pkg/source) and are read-only to the diagram.
//
// # Wire Formats
//
// Collections decode from two JSON shapes. The backend's protobuf-JSON shape
// encodes the field type as a oneof key:
//
//	{
//	  "id": "c2",
//	  "name": "collections/orders",
//	  "displayName": "Orders",
//	  "fields": {
//	    "owner": {"referenceType": "collections/users", "required": true}
//	  },
//	  "rules": ["owner != null"]
//	}
//
// A flat shape is also accepted, convenient for hand-written schema files:
//
//	{"fields": {"owner": {"type": "reference", "value": "collections/users"}}}
//
// TOML schema files use the flat shape:
//
//	[[collections]]
//	id = "c2"
//	name = "collections/orders"
//
//	[collections.fields.owner]
//	type = "reference"
//	value = "collections/users"
//
// Use [ReadFile] to load either format by extension.
package collection
