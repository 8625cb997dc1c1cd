package store

import (
	"testing"

	"entgo.io/ent"
	"github.com/google/go-cmp/cmp"

	entschema "github.com/abhisek/roadmapper/ent/schema"
)

func fieldNames(fields []ent.Field) []string {
	var names []string
	for _, f := range fields {
		names = append(names, f.Descriptor().Name)
	}
	return names
}

func tableColumns(idx int) []string {
	var names []string
	for _, c := range tables[idx].Columns {
		names = append(names, c.Name)
	}
	return names
}

func TestTablesMatchEntSchema(t *testing.T) {
	if diff := cmp.Diff(fieldNames(entschema.KVEntry{}.Fields()), tableColumns(0)); diff != "" {
		t.Errorf("kv table drifted from KVEntry (-schema +table):\n%s", diff)
	}

	// ent adds the integer id implicitly.
	want := append([]string{"id"}, fieldNames(entschema.LLMRequestEvent{}.Fields())...)
	if diff := cmp.Diff(want, tableColumns(1)); diff != "" {
		t.Errorf("events table drifted from LLMRequestEvent (-schema +table):\n%s", diff)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestSQLite(t)
	if err := migrate(t.Context(), s.DB()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
