package database

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    password TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    parent_id INTEGER REFERENCES collections(id),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS media (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT,
    url TEXT NOT NULL UNIQUE,
    checksum TEXT NOT NULL,
    collection INTEGER NOT NULL REFERENCES collections(id),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS collection_links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    parent_id INTEGER NOT NULL REFERENCES collections(id),
    child_id INTEGER NOT NULL REFERENCES collections(id),
    UNIQUE (parent_id, child_id)
);

CREATE TABLE IF NOT EXISTS media_artwork (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    media_id INTEGER NOT NULL REFERENCES media(id),
    format TEXT NOT NULL,
    url TEXT NOT NULL,
    tag TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    UNIQUE (media_id, format, url),
    UNIQUE (media_id, format, tag)
);

CREATE TABLE IF NOT EXISTS media_metadata (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    media_id INTEGER NOT NULL REFERENCES media(id),
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    UNIQUE (media_id, key)
);

CREATE TABLE IF NOT EXISTS collection_metadata (
    collection_id INTEGER PRIMARY KEY REFERENCES collections(id),
    meta TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_media_collection ON media (collection);
CREATE INDEX IF NOT EXISTS idx_collections_parent ON collections (parent_id);
CREATE INDEX IF NOT EXISTS idx_media_artwork_media ON media_artwork (media_id);
CREATE INDEX IF NOT EXISTS idx_media_metadata_media ON media_metadata (media_id);
`
