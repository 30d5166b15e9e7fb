package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/bienesraices/boutique/internal/validation"
)

func init() {
	goose.AddMigrationContext(upReplaceEmailWithGmailUsername, downReplaceEmailWithGmailUsername)
}

// Restructures the identity columns: every account gets a normalized
// gmail value (falling back to the legacy email column) and a generated,
// deduplicated username derived from the address's local part. The old
// email column is dropped afterwards.
func upReplaceEmailWithGmailUsername(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `ALTER TABLE users ADD COLUMN username TEXT`)
	if err != nil {
		return err
	}

	type row struct {
		id    string
		email sql.NullString
		gmail sql.NullString
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, email, gmail FROM users ORDER BY created_at, id`)
	if err != nil {
		return err
	}
	var accounts []row
	for rows.Next() {
		var r row
		err = rows.Scan(&r.id, &r.email, &r.gmail)
		if err != nil {
			rows.Close()
			return err
		}
		accounts = append(accounts, r)
	}
	err = rows.Err()
	if err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	taken := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		gmail := strings.ToLower(strings.TrimSpace(a.gmail.String))
		if gmail == "" {
			gmail = strings.ToLower(strings.TrimSpace(a.email.String))
		}
		if gmail == "" {
			gmail = fmt.Sprintf("user%s@gmail.com", shortID(a.id))
		}

		fallback := "user" + shortID(a.id)
		local, _, _ := strings.Cut(gmail, "@")
		username := validation.NextFreeUsername(validation.SanitizeUsername(local, fallback), taken)

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET gmail = $1, username = $2 WHERE id = $3`,
			gmail, username, a.id,
		)
		if err != nil {
			return err
		}
	}

	stmts := []string{
		`CREATE UNIQUE INDEX uq_users_username ON users (username)`,
		`DROP INDEX uq_users_email`,
		`ALTER TABLE users DROP COLUMN email`,
	}
	for _, stmt := range stmts {
		_, err = tx.ExecContext(ctx, stmt)
		if err != nil {
			return err
		}
	}
	return nil
}

func downReplaceEmailWithGmailUsername(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`ALTER TABLE users ADD COLUMN email TEXT`,
		`UPDATE users SET email = gmail`,
		`CREATE UNIQUE INDEX uq_users_email ON users (email)`,
		`DROP INDEX uq_users_username`,
		`ALTER TABLE users DROP COLUMN username`,
	}
	for _, stmt := range stmts {
		_, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			return err
		}
	}
	return nil
}

// shortID keeps fallback identifiers readable for UUID primary keys.
func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
