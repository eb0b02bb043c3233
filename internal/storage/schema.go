package storage

const schema = `
-- The 'decks' table holds named collections of cards.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- The 'sources' table tracks where imported cards come from, either a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local', -- 'local' or 'git'
    deck_id TEXT NOT NULL,
    last_scanned TEXT,

    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

-- The 'cards' table stores card content and deck membership.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    hash TEXT, -- content hash, only for imported cards
    source_id INTEGER,
    created_at TEXT NOT NULL,

    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE,
    FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards(deck_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cards_deck_hash ON cards(deck_id, hash) WHERE hash IS NOT NULL;

-- The 'card_reviews' table holds exactly one schedule record per card.
CREATE TABLE IF NOT EXISTS card_reviews (
    card_id TEXT PRIMARY KEY,
    easiness_factor REAL NOT NULL,
    interval_days INTEGER NOT NULL,
    repetitions INTEGER NOT NULL,
    next_review TEXT NOT NULL,
    last_review TEXT,
    updated_at TEXT NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
);

-- The 'review_history' table is an append-only log of grades.
CREATE TABLE IF NOT EXISTS review_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    quality INTEGER NOT NULL,
    reviewed_at TEXT NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_review_history_reviewed_at ON review_history(reviewed_at);
`
