package bundle

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/typesystem"
)

// Magic identifies emojc bundles in the metadata table.
const Magic = "emojb1"

// Bundle is the compiled artifact: one row per function with its emitted
// words, the string pool and build metadata, stored as a SQLite database.
type Bundle struct {
	// BuildID uniquely names this compile.
	BuildID string
	Package string
	Version string
}

const schema = `
CREATE TABLE metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE functions (
	id      INTEGER PRIMARY KEY,
	name    TEXT NOT NULL,
	owner   TEXT NOT NULL,
	vti     INTEGER NOT NULL,
	kind    INTEGER NOT NULL,
	linking INTEGER NOT NULL,
	words   BLOB NOT NULL
);
CREATE TABLE string_pool (
	idx   INTEGER PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Write drains the registry's function queue into a bundle file at path.
// Functions without an assigned vtable index receive one now, in
// enumeration order.
func Write(path, packageName, version string, registry *typesystem.Registry) (*Bundle, error) {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("replacing bundle %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("creating bundle %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating bundle schema: %w", err)
	}

	b := &Bundle{
		BuildID: uuid.New().String(),
		Package: packageName,
		Version: version,
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		"magic":    Magic,
		"build_id": b.BuildID,
		"package":  b.Package,
		"version":  b.Version,
		"compiler": config.Version,
	} {
		if _, err := tx.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?)`, key, value); err != nil {
			return nil, err
		}
	}

	for idx, s := range registry.Strings() {
		if _, err := tx.Exec(`INSERT INTO string_pool (idx, value) VALUES (?, ?)`, idx, s); err != nil {
			return nil, err
		}
	}

	insert, err := tx.Prepare(`INSERT INTO functions (name, owner, vti, kind, linking, words) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer insert.Close()

	for _, f := range registry.DrainQueue() {
		f.AssignVTI()
		owner := ""
		if f.Owner != nil {
			owner = f.Owner.Name()
		}
		vti := 0
		if f.VTIAssigned() {
			vti = f.VTI()
		}
		var words []byte
		if f.Writer != nil {
			words = encodeWords(f.Writer.Words())
		}
		if _, err := insert.Exec(f.Name, owner, vti, int(f.Kind), f.LinkingTableIndex, words); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// encodeWords packs instruction words little-endian.
func encodeWords(words []uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// Read opens a bundle and returns its metadata. Used by tooling and tests
// to verify an artifact.
func Read(path string) (*Bundle, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta := make(map[string]string)
	rows, err := db.Query(`SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("reading bundle metadata: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if meta["magic"] != Magic {
		return nil, fmt.Errorf("%s is not an emojc bundle", path)
	}
	return &Bundle{BuildID: meta["build_id"], Package: meta["package"], Version: meta["version"]}, nil
}

// FunctionCount returns the number of compiled functions in a bundle.
func FunctionCount(path string) (int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM functions`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
