package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_blacklink_users",
		SQL: `CREATE TABLE IF NOT EXISTS blacklink_users (
  id                   BIGSERIAL   PRIMARY KEY,
  username             TEXT        NOT NULL UNIQUE,
  display_name         TEXT        NOT NULL DEFAULT '',
  bio                  TEXT        NOT NULL DEFAULT '',
  email                TEXT        NOT NULL DEFAULT '',
  avatar_url           TEXT        NOT NULL DEFAULT '',
  main_cta_url         TEXT        NOT NULL DEFAULT '',
  main_cta_label       TEXT        NOT NULL DEFAULT '',
  main_cta_subtitle    TEXT        NOT NULL DEFAULT '',
  instagram_url        TEXT        NOT NULL DEFAULT '',
  tiktok_url           TEXT        NOT NULL DEFAULT '',
  youtube_url          TEXT        NOT NULL DEFAULT '',
  telegram_url         TEXT        NOT NULL DEFAULT '',
  linkedin_url         TEXT        NOT NULL DEFAULT '',
  github_url           TEXT        NOT NULL DEFAULT '',
  facebook_url         TEXT        NOT NULL DEFAULT '',
  kwai_url             TEXT        NOT NULL DEFAULT '',
  mercadolivre_url     TEXT        NOT NULL DEFAULT '',
  plan                 TEXT        NOT NULL DEFAULT 'free',
  plan_status          TEXT        NOT NULL DEFAULT 'active',
  plan_started_at      TIMESTAMPTZ,
  plan_expires_at      TIMESTAMPTZ,
  last_paid_plan       TEXT        NOT NULL DEFAULT '',
  last_paid_expires_at TIMESTAMPTZ,
  mp_customer_id       TEXT        NOT NULL DEFAULT '',
  mp_subscription_id   TEXT        NOT NULL DEFAULT '',
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_blacklink_products",
		SQL: `CREATE TABLE IF NOT EXISTS blacklink_products (
  id               BIGSERIAL   PRIMARY KEY,
  owner_id         BIGINT      NOT NULL REFERENCES blacklink_users (id) ON DELETE CASCADE,
  title            TEXT        NOT NULL,
  description      TEXT        NOT NULL DEFAULT '',
  url              TEXT        NOT NULL DEFAULT '',
  image_url        TEXT        NOT NULL DEFAULT '',
  source_image_url TEXT        NOT NULL DEFAULT '',
  price            TEXT        NOT NULL DEFAULT '',
  tag              TEXT        NOT NULL DEFAULT '',
  badge            TEXT        NOT NULL DEFAULT '',
  cta_label        TEXT        NOT NULL DEFAULT 'Ver oferta',
  is_active        BOOLEAN     NOT NULL DEFAULT TRUE,
  is_featured      BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_users_email",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_blacklink_users_email ON blacklink_users (email) WHERE email <> '';`,
	},
	{
		Name: "create_index_products_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_blacklink_products_owner ON blacklink_products (owner_id);`,
	},
	{
		Name: "create_index_products_active",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_blacklink_products_active ON blacklink_products (is_active);`,
	},
}

// ensureSteps run on every start, after the create phase. They backfill
// columns added after early deployments so old databases upgrade in place
// without a migration tool.
var ensureSteps = []migrationStep{
	{
		Name: "ensure_users_plan_lifecycle",
		SQL: `ALTER TABLE blacklink_users
  ADD COLUMN IF NOT EXISTS plan_status          TEXT        NOT NULL DEFAULT 'active',
  ADD COLUMN IF NOT EXISTS plan_started_at      TIMESTAMPTZ,
  ADD COLUMN IF NOT EXISTS plan_expires_at      TIMESTAMPTZ,
  ADD COLUMN IF NOT EXISTS last_paid_plan       TEXT        NOT NULL DEFAULT '',
  ADD COLUMN IF NOT EXISTS last_paid_expires_at TIMESTAMPTZ;`,
	},
	{
		Name: "ensure_users_payment_ids",
		SQL: `ALTER TABLE blacklink_users
  ADD COLUMN IF NOT EXISTS mp_customer_id     TEXT NOT NULL DEFAULT '',
  ADD COLUMN IF NOT EXISTS mp_subscription_id TEXT NOT NULL DEFAULT '';`,
	},
	{
		Name: "ensure_products_presentation",
		SQL: `ALTER TABLE blacklink_products
  ADD COLUMN IF NOT EXISTS source_image_url TEXT NOT NULL DEFAULT '',
  ADD COLUMN IF NOT EXISTS tag              TEXT NOT NULL DEFAULT '',
  ADD COLUMN IF NOT EXISTS badge            TEXT NOT NULL DEFAULT '',
  ADD COLUMN IF NOT EXISTS cta_label        TEXT NOT NULL DEFAULT 'Ver oferta';`,
	},
}

// EnsureMigrated creates the schema when the sentinel table is missing and
// then applies the idempotent ensure steps unconditionally.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.blacklink_users') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, running ensure steps only",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return runSteps(ctx, db, loc, dbHost, ensureSteps, start)
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	if err := runSteps(ctx, db, loc, dbHost, steps, start); err != nil {
		return err
	}
	if err := runSteps(ctx, db, loc, dbHost, ensureSteps, start); err != nil {
		return err
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func runSteps(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string, list []migrationStep, start time.Time) error {
	for _, step := range list {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}
	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
