package database

func (d *Database) RunMigrations() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS houses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			area REAL NOT NULL DEFAULT 0,
			bedrooms INTEGER,
			bathrooms INTEGER,
			floors REAL,
			description TEXT,
			url TEXT NOT NULL UNIQUE,
			image_url TEXT,
			material TEXT,
			style TEXT,
			garage TEXT,
			house_size TEXT,
			badges TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_activity TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			house_id INTEGER NOT NULL REFERENCES houses(id),
			score REAL NOT NULL,
			match_reasons TEXT,
			criteria TEXT,
			is_primary BOOLEAN NOT NULL DEFAULT 0,
			generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS statistics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			action TEXT NOT NULL,
			house_id INTEGER,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_user
			ON recommendations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_statistics_user
			ON statistics(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
