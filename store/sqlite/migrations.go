package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Ostium store (SQLite).
var Migrations = migrate.NewGroup("ostium")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_rules",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ostium_rules (
    id              TEXT PRIMARY KEY,
    resource_type   TEXT NOT NULL,
    property        TEXT NOT NULL DEFAULT '*',
    access_type     TEXT NOT NULL DEFAULT '*',
    principal_type  TEXT NOT NULL,
    principal_id    TEXT NOT NULL,
    permission      TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_ostium_rules_resource ON ostium_rules (resource_type, property, access_type);
CREATE INDEX IF NOT EXISTS idx_ostium_rules_principal ON ostium_rules (principal_type, principal_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ostium_rules`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_roles",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ostium_roles (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL UNIQUE,
    description     TEXT NOT NULL DEFAULT '',
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ostium_roles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_role_mappings",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ostium_role_mappings (
    id              TEXT PRIMARY KEY,
    role_id         TEXT NOT NULL REFERENCES ostium_roles(id) ON DELETE CASCADE,
    principal_type  TEXT NOT NULL,
    principal_id    TEXT NOT NULL,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(role_id, principal_type, principal_id)
);

CREATE INDEX IF NOT EXISTS idx_ostium_mappings_role ON ostium_role_mappings (role_id);
CREATE INDEX IF NOT EXISTS idx_ostium_mappings_principal ON ostium_role_mappings (principal_type, principal_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ostium_role_mappings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_relations",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ostium_relations (
    id                TEXT PRIMARY KEY,
    object_type       TEXT NOT NULL,
    object_id         TEXT NOT NULL,
    relation          TEXT NOT NULL,
    subject_type      TEXT NOT NULL,
    subject_id        TEXT NOT NULL,
    subject_relation  TEXT NOT NULL DEFAULT '',
    created_at        TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(object_type, object_id, relation, subject_type, subject_id, subject_relation)
);

CREATE INDEX IF NOT EXISTS idx_ostium_rel_object ON ostium_relations (object_type, object_id);
CREATE INDEX IF NOT EXISTS idx_ostium_rel_check ON ostium_relations (object_type, object_id, relation, subject_type, subject_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ostium_relations`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tokens",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ostium_tokens (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL DEFAULT '',
    app_id          TEXT NOT NULL DEFAULT '',
    scopes          TEXT NOT NULL DEFAULT '[]',
    ttl_seconds     INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ostium_tokens`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_audit_entries",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ostium_audit_entries (
    id              TEXT PRIMARY KEY,
    principal_type  TEXT NOT NULL DEFAULT '',
    principal_id    TEXT NOT NULL DEFAULT '',
    resource_type   TEXT NOT NULL,
    resource_id     TEXT NOT NULL DEFAULT '',
    property        TEXT NOT NULL DEFAULT '',
    access_type     TEXT NOT NULL DEFAULT '',
    permission      TEXT NOT NULL,
    allowed         INTEGER NOT NULL DEFAULT 0,
    eval_time_ns    INTEGER NOT NULL DEFAULT 0,
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_ostium_audit_principal ON ostium_audit_entries (principal_type, principal_id);
CREATE INDEX IF NOT EXISTS idx_ostium_audit_resource ON ostium_audit_entries (resource_type, resource_id);
CREATE INDEX IF NOT EXISTS idx_ostium_audit_created ON ostium_audit_entries (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ostium_audit_entries`)
				return err
			},
		},
	)
}
