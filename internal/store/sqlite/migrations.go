package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    id          TEXT PRIMARY KEY,
    scanned     INTEGER NOT NULL,
    senders     INTEGER NOT NULL,
    created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS opportunities (
    scan_id     TEXT NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
    domain      TEXT NOT NULL,
    count       INTEGER NOT NULL,
    from_name   TEXT,
    link        TEXT,
    subjects    TEXT,
    rank        INTEGER NOT NULL,
    PRIMARY KEY (scan_id, domain)
);

CREATE TABLE IF NOT EXISTS attempts (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    domain          TEXT NOT NULL,
    link            TEXT,
    success         BOOLEAN NOT NULL,
    classification  TEXT NOT NULL,
    message         TEXT,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_opportunities_scan ON opportunities(scan_id);
CREATE INDEX IF NOT EXISTS idx_attempts_domain ON attempts(domain);
CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at DESC);
`
