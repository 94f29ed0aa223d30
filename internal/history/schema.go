package history

// SearchesSchema records every query a user submits.
const SearchesSchema = `
CREATE TABLE IF NOT EXISTS searches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	query TEXT NOT NULL,
	searched_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_user ON searches(user_id, searched_at);
`

// MoviesSchema counts how often each title was shown to a user.
const MoviesSchema = `
CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	year INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	count INTEGER NOT NULL DEFAULT 1,
	last_shown INTEGER NOT NULL,
	UNIQUE(user_id, title)
);
`

// UserSettingsSchema holds per-user source toggles.
const UserSettingsSchema = `
CREATE TABLE IF NOT EXISTS user_settings (
	user_id INTEGER PRIMARY KEY NOT NULL,
	metadata_enabled INTEGER NOT NULL,
	links_enabled INTEGER NOT NULL
);
`

var schemas = []string{SearchesSchema, MoviesSchema, UserSettingsSchema}
