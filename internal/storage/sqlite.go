package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the cookie table.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS cookies (
			url TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT '',
			expires TEXT,
			secure INTEGER NOT NULL DEFAULT 0,
			http_only INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (url, name)
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads every stored cookie.
func (s *SQLiteStorage) Load() ([]Cookie, error) {
	cookies := []Cookie{}

	rows, err := s.db.Query(`
		SELECT url, name, value, domain, path, expires, secure, http_only
		FROM cookies
		ORDER BY url, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c Cookie
		var expires sql.NullString
		var secure, httpOnly int

		if err := rows.Scan(&c.URL, &c.Name, &c.Value, &c.Domain, &c.Path, &expires, &secure, &httpOnly); err != nil {
			return nil, err
		}

		if expires.Valid {
			if t, err := time.Parse(time.RFC3339, expires.String); err == nil {
				c.Expires = t
			}
		}
		c.Secure = secure == 1
		c.HttpOnly = httpOnly == 1

		cookies = append(cookies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cookies, nil
}

// Save replaces the stored cookies.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(cookies []Cookie) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cookies"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO cookies (url, name, value, domain, path, expires, secure, http_only)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cookies {
		var expires *string
		if !c.Expires.IsZero() {
			v := c.Expires.UTC().Format(time.RFC3339)
			expires = &v
		}

		if _, err := stmt.Exec(
			c.URL, c.Name, c.Value, c.Domain, c.Path,
			expires, boolToInt(c.Secure), boolToInt(c.HttpOnly),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
