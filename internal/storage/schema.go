package storage

const schema = `
-- The 'quests' table is the corpus of study units. Names are globally unique.
CREATE TABLE IF NOT EXISTS quests (
    name TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

-- The 'cards' table holds per-(user, quest, type) mastery records.
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    quest_name TEXT NOT NULL,
    type TEXT NOT NULL,             -- BLANK or ABBREV
    level INTEGER NOT NULL DEFAULT 1,
    grade TEXT NOT NULL DEFAULT 'NORMAL',
    card_text TEXT NOT NULL,
    collected_at DATETIME NOT NULL,

    UNIQUE(user_id, quest_name, type),
    FOREIGN KEY(quest_name) REFERENCES quests(name)
);

-- The 'mnemonics' table holds one user-authored memory aid per (user, quest).
CREATE TABLE IF NOT EXISTS mnemonics (
    user_id TEXT NOT NULL,
    quest_name TEXT NOT NULL,
    text TEXT NOT NULL,
    updated_at DATETIME NOT NULL,

    PRIMARY KEY(user_id, quest_name)
);

-- The 'users' table tracks cumulative level and experience.
CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    level INTEGER NOT NULL DEFAULT 1,
    xp INTEGER NOT NULL DEFAULT 0,
    title TEXT NOT NULL DEFAULT ''
);

-- The 'sources' table tracks external quest-text origins, either a local
-- directory or a git repository synced on demand.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_synced DATETIME
);
`
