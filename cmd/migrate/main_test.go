package main

import (
	"strings"
	"testing"
)

func TestTableDDL(t *testing.T) {
	ddl := tableDDL("finanzas")

	for _, table := range []string{"categories", "transactions", "concept_categories", "imports"} {
		stmt, ok := ddl[table]
		if !ok {
			t.Fatalf("missing DDL for table %s", table)
		}
		if !strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS finanzas."+table) {
			t.Errorf("DDL for %s is not idempotent or misnamed:\n%s", table, stmt)
		}
	}

	if !strings.Contains(ddl["transactions"], "importe NUMERIC NOT NULL") {
		t.Error("transactions DDL must store amounts as NUMERIC")
	}
	if !strings.Contains(ddl["concept_categories"], "confidence FLOAT64 NOT NULL") {
		t.Error("concept_categories DDL must carry a confidence column")
	}
}
