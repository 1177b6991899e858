package sqlite

import "database/sql"

// EnsureSchema creates core tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Items (
            ItemId TEXT PRIMARY KEY,
            RawInput TEXT NOT NULL,
            Category TEXT NOT NULL,
            Subcategory TEXT,
            Title TEXT NOT NULL,
            Tags TEXT NOT NULL,
            Entities TEXT NOT NULL,
            Urgency TEXT NOT NULL,
            Status TEXT NOT NULL,
            PendingAIProcessing BOOLEAN NOT NULL DEFAULT 0,
            Synced BOOLEAN NOT NULL DEFAULT 0,
            ScheduledNotification TEXT,
            CreatedAt TIMESTAMP NOT NULL,
            UpdatedAt TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS Items_Status_Idx ON Items(Status);`,
		`CREATE INDEX IF NOT EXISTS Items_Pending_Idx ON Items(PendingAIProcessing, Status);`,
		`CREATE TABLE IF NOT EXISTS Projects (
            ProjectId TEXT PRIMARY KEY,
            Name TEXT NOT NULL,
            Description TEXT,
            Color TEXT NOT NULL,
            ItemIds TEXT NOT NULL,
            SuggestedByAI BOOLEAN NOT NULL DEFAULT 0,
            UserApproved BOOLEAN NOT NULL DEFAULT 0,
            CreatedAt TIMESTAMP NOT NULL,
            UpdatedAt TIMESTAMP NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
