package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables used by the service.  Statements are idempotent
// so Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    CHAR(36)        NOT NULL,
		token_hash CHAR(64)        NOT NULL UNIQUE,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		full_name  VARCHAR(255) NULL,
		phone      VARCHAR(64)  NULL,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_profile_user FOREIGN KEY (id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS events (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		user_id     CHAR(36)     NOT NULL,
		title       VARCHAR(255) NOT NULL,
		client_name VARCHAR(255) NOT NULL,
		contact_no  VARCHAR(64)  NOT NULL,
		date        DATE         NOT NULL,
		time        VARCHAR(32)  NOT NULL,
		hall_type   ENUM('banquet','kitty','restaurant') NOT NULL,
		description TEXT         NULL,
		status      ENUM('confirmed','pending','cancelled') NOT NULL DEFAULT 'confirmed',
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_events_user_date (user_id, date),
		CONSTRAINT fk_events_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
