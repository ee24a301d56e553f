package model

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db")+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	db := openSQLite(t)

	for i := 0; i < 2; i++ {
		if err := MigrateSQLite(db); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}

	var applied int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied migrations = %d, want 1", applied)
	}
}

func TestSQLiteSchemaEnforcesInvariants(t *testing.T) {
	db := openSQLite(t)
	if err := MigrateSQLite(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO invite_codes (id, code, uses, max_uses, created_at, updated_at)
		VALUES ('a', 'CAP', 0, 1, 0, 0)`); err != nil {
		t.Fatalf("insert invite: %v", err)
	}

	bad := []struct {
		name string
		stmt string
	}{
		{"uses over cap", `UPDATE invite_codes SET uses = 2 WHERE id = 'a'`},
		{"negative uses", `UPDATE invite_codes SET uses = -1 WHERE id = 'a'`},
		{"zero cap", `INSERT INTO invite_codes (id, code, uses, max_uses, created_at, updated_at) VALUES ('b', 'ZERO', 0, 0, 0, 0)`},
		{"duplicate code", `INSERT INTO invite_codes (id, code, uses, created_at, updated_at) VALUES ('c', 'CAP', 0, 0, 0)`},
		{"usage for unknown invite", `INSERT INTO invite_usages (invite_id, user_id, consumed_at) VALUES ('zzz', 'u', 0)`},
	}
	for _, tt := range bad {
		if _, err := db.Exec(tt.stmt); err == nil {
			t.Fatalf("%s: expected constraint violation", tt.name)
		}
	}

	if _, err := db.Exec(`INSERT INTO invite_usages (invite_id, user_id, consumed_at) VALUES ('a', 'u', 0)`); err != nil {
		t.Fatalf("first usage: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO invite_usages (invite_id, user_id, consumed_at) VALUES ('a', 'u', 1)`); err == nil {
		t.Fatal("expected duplicate usage to be rejected")
	}
}
