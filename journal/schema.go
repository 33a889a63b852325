// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS predictions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	symbol TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	direction TEXT NOT NULL,
	confidence REAL NOT NULL,
	strength REAL NOT NULL,
	ref_price REAL NOT NULL,
	horizon_seconds INTEGER NOT NULL,
	categories TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	evaluated_at DATETIME,
	realized_price REAL,
	realized_change_pct REAL,
	outcome TEXT
);

CREATE INDEX IF NOT EXISTS idx_predictions_status ON predictions(status, created_at);
`
