package schema

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/LHolmes69/ccs-calendarserver/upgrade"
	"github.com/LHolmes69/ccs-calendarserver/upgrade/dialect"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "single statement without trailing semicolon",
			script: `SELECT 1`,
			want:   []string{"SELECT 1"},
		},
		{
			name: "comments and blank lines stripped",
			script: `-- Upgrade database schema
CREATE INDEX A ON T(C);

-- update the version
UPDATE CALENDARSERVER SET VALUE = '61' WHERE NAME = 'VERSION';
`,
			want: []string{
				"CREATE INDEX A ON T(C)",
				"UPDATE CALENDARSERVER SET VALUE = '61' WHERE NAME = 'VERSION'",
			},
		},
		{
			name:   "semicolon inside a string literal",
			script: `INSERT INTO T (C) VALUES ('a;b'); SELECT 1;`,
			want:   []string{"INSERT INTO T (C) VALUES ('a;b')", "SELECT 1"},
		},
		{
			name:   "comment marker inside a string literal",
			script: `INSERT INTO T (C) VALUES ('not -- a comment');`,
			want:   []string{"INSERT INTO T (C) VALUES ('not -- a comment')"},
		},
		{
			name:   "empty script",
			script: "-- nothing here\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitStatements(tt.script)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitStatements() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadRegistryPerDialect(t *testing.T) {
	dialects := []dialect.Dialect{dialect.Postgres{}, dialect.MySQL{}, dialect.SQLite{}}
	for _, d := range dialects {
		t.Run(d.Name(), func(t *testing.T) {
			registry, err := LoadRegistry(d)
			if err != nil {
				t.Fatalf("LoadRegistry(%s) error = %v", d.Name(), err)
			}
			if got := registry.Lowest(); got != 58 {
				t.Errorf("Lowest() = %d, want 58", got)
			}
			if got := registry.Latest(); got != 61 {
				t.Errorf("Latest() = %d, want 61", got)
			}
			chain, err := registry.BuildChain(58, 61)
			if err != nil {
				t.Fatalf("BuildChain(58, 61) error = %v", err)
			}
			if len(chain) != 3 {
				t.Fatalf("BuildChain(58, 61) returned %d steps, want 3", len(chain))
			}
		})
	}
}

func TestVerifyDialects(t *testing.T) {
	if err := VerifyDialects(); err != nil {
		t.Fatalf("VerifyDialects() error = %v", err)
	}
}

// TestUpgradeFrom60To61 runs the shipped 60 to 61 script end to end: the
// three REVISIONS indexes must exist and the version row must read 61.
func TestUpgradeFrom60To61(t *testing.T) {
	ctx := context.Background()
	// Shared-cache in-memory database: the engine holds a pinned lock
	// connection alongside the step transactions, so the pool needs more
	// than one connection to the same data.
	db, err := sql.Open("sqlite3", "file:artifact61?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	keeper, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("failed to pin sqlite connection: %v", err)
	}
	defer db.Close()
	defer keeper.Close()

	fixture := []string{
		`CREATE TABLE CALENDAR_OBJECT_REVISIONS (RESOURCE_NAME TEXT, REVISION INTEGER)`,
		`CREATE TABLE ADDRESSBOOK_OBJECT_REVISIONS (RESOURCE_NAME TEXT, REVISION INTEGER)`,
		`CREATE TABLE NOTIFICATION_OBJECT_REVISIONS (RESOURCE_NAME TEXT, REVISION INTEGER)`,
	}
	for _, stmt := range fixture {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("fixture failed: %v", err)
		}
	}

	d := dialect.SQLite{}
	store := upgrade.NewStore(db, d.Name())
	if err := store.Init(ctx, 60); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	registry, err := LoadRegistry(d)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	engine := upgrade.NewEngine(db, d, registry)

	applied, err := engine.Upgrade(ctx, 61)
	if err != nil {
		t.Fatalf("Upgrade(61) error = %v", err)
	}
	if len(applied) != 1 || applied[0] != 61 {
		t.Fatalf("Upgrade(61) applied %v, want [61]", applied)
	}

	for _, name := range []string{
		"CALENDAR_OBJECT_REVIS_fa21ef83",
		"ADDRESSBOOK_OBJECT_RE_0900cfdf",
		"NOTIFICATION_OBJECT_R_c251f0fd",
	} {
		var count int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, name).Scan(&count)
		if err != nil {
			t.Fatalf("failed to look up index %s: %v", name, err)
		}
		if count != 1 {
			t.Errorf("index %s missing after upgrade", name)
		}
	}

	version, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if version != 61 {
		t.Errorf("stored version = %d, want 61", version)
	}
}
