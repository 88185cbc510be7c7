package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA temp_store = MEMORY;

-- Reading records: one JSON payload per (namespace, url)
CREATE TABLE IF NOT EXISTS reading_records (
    namespace TEXT NOT NULL,
    url TEXT NOT NULL,
    payload TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (namespace, url)
);

CREATE INDEX IF NOT EXISTS idx_reading_records_updated ON reading_records(namespace, updated_at DESC);
`
