// Package schema declares the entities persisted by the sqlite backend.
// internal/store creates the matching tables; a test there keeps the two
// in step.
package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KVEntry holds one opaque value, such as the progress map or the review
// schedule, under its key.
type KVEntry struct {
	ent.Schema
}

func (KVEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			NotEmpty().
			Unique().
			Immutable().
			Comment("Storage key, e.g. progress or reviews"),
		field.Bytes("value").
			Comment("JSON document stored under the key"),
		field.Int64("updated_at").
			Comment("Unix milliseconds of the last write"),
	}
}
