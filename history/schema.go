package history

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	ok BOOLEAN NOT NULL,
	errors INTEGER NOT NULL,
	detail TEXT NOT NULL
);
`
