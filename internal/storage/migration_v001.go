package storage

import "database/sql"

// migrateV001 creates the history table. Row ids grow with insertion order,
// which is the order entries are listed and evicted in.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ts          DATETIME NOT NULL,
			total_views INTEGER NOT NULL CHECK (total_views >= 0),
			video_count INTEGER NOT NULL CHECK (video_count >= 0),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_ts ON history(ts)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
