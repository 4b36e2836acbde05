package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money columns are TEXT holding exact decimal strings.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    parent_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (parent_id) REFERENCES users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS invoices (
    id TEXT PRIMARY KEY,
    invoice_no TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    month TEXT,
    total TEXT NOT NULL DEFAULT '0',
    paid_total TEXT NOT NULL DEFAULT '0',
    status TEXT NOT NULL DEFAULT 'pending',
    due_date TEXT,
    issued_at TEXT,
    document_url TEXT NOT NULL DEFAULT '',
    proof_url TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS invoice_items (
    invoice_id TEXT NOT NULL,
    slot INTEGER NOT NULL CHECK (slot BETWEEN 0 AND 6),
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    PRIMARY KEY (invoice_id, slot),
    FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    invoice_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    method TEXT NOT NULL,
    approved INTEGER NOT NULL DEFAULT 0,
    approved_by TEXT NOT NULL DEFAULT '',
    paid_at INTEGER NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    proof_url TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS templates (
    kind TEXT PRIMARY KEY,
    html TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    updated_by TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS plans (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    base_price TEXT NOT NULL DEFAULT '0',
    couple_price TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS plan_rules (
    plan_code TEXT NOT NULL,
    position INTEGER NOT NULL,
    min_age INTEGER NOT NULL,
    max_age INTEGER NOT NULL,
    fee TEXT NOT NULL,
    PRIMARY KEY (plan_code, position),
    FOREIGN KEY (plan_code) REFERENCES plans(code) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS club_profiles (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    plan_code TEXT NOT NULL DEFAULT '',
    couple INTEGER NOT NULL DEFAULT 0,
    monthly_fee TEXT NOT NULL DEFAULT '0',
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS family_members (
    id TEXT PRIMARY KEY,
    profile_id TEXT NOT NULL,
    name TEXT NOT NULL,
    relation TEXT NOT NULL,
    birth_date TEXT,
    fee TEXT NOT NULL DEFAULT '0',
    FOREIGN KEY (profile_id) REFERENCES club_profiles(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_users_parent_id ON users(parent_id);
CREATE INDEX IF NOT EXISTS idx_invoices_user_id ON invoices(user_id);
CREATE INDEX IF NOT EXISTS idx_invoices_month ON invoices(month);
CREATE INDEX IF NOT EXISTS idx_payments_invoice_id ON payments(invoice_id);
CREATE INDEX IF NOT EXISTS idx_club_profiles_user_id ON club_profiles(user_id);
CREATE INDEX IF NOT EXISTS idx_family_members_profile_id ON family_members(profile_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
