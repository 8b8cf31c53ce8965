package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

var ErrNotFound = errors.New("not found")

var userMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,

		subject TEXT NOT NULL,
		provider TEXT NOT NULL,

		email TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',

		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,

		UNIQUE (subject, provider)
	);`,
}

var repeatableUserMigrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_users_identity ON users(subject, provider);`,
}

type User struct {
	ID int64

	Subject  string
	Provider string

	Email    string
	FullName string
	Avatar   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserDefaults seeds the attributes of a user created on first sight.
type UserDefaults struct {
	Email    string
	FullName string
}

// ProfileChanges lists the profile attributes to update. Nil fields are left
// untouched.
type ProfileChanges struct {
	FullName *string
	Avatar   *string
}

func (s *Store) FindOrCreateUser(ctx context.Context, subject, provider string, defaults UserDefaults) (*User, error) {
	var user *User
	err := s.Tx(ctx, func(conn *sqlite.Conn) error {
		query := fmt.Sprintf(`SELECT %s FROM users WHERE subject = ? AND provider = ? LIMIT 1`, userAttributes)
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{subject, provider},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				user = &User{}
				return errors.WithStack(s.bindUser(stmt, user))
			},
		})
		if err != nil {
			return errors.WithStack(err)
		}

		if user != nil {
			return nil
		}

		query = fmt.Sprintf(`
			INSERT INTO users
				(subject, provider, email, full_name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING %s;`,
			userAttributes,
		)

		now := time.Now().UTC().Unix()

		err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{subject, provider, defaults.Email, defaults.FullName, now, now},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				user = &User{}
				return errors.WithStack(s.bindUser(stmt, user))
			},
		})
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID int64, changes ProfileChanges) (*User, error) {
	var updatedUser *User

	err := s.Tx(ctx, func(conn *sqlite.Conn) error {
		assignments := []string{"updated_at = ?"}
		args := []any{time.Now().UTC().Unix()}

		if changes.FullName != nil {
			assignments = append(assignments, "full_name = ?")
			args = append(args, strings.TrimSpace(*changes.FullName))
		}

		if changes.Avatar != nil {
			assignments = append(assignments, "avatar = ?")
			args = append(args, *changes.Avatar)
		}

		args = append(args, userID)

		query := fmt.Sprintf(
			`UPDATE users SET %s WHERE id = ? RETURNING %s`,
			strings.Join(assignments, ", "), userAttributes,
		)

		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				updatedUser = &User{}
				return errors.WithStack(s.bindUser(stmt, updatedUser))
			},
		})
		if err != nil {
			return errors.WithStack(err)
		}

		if updatedUser == nil {
			return errors.WithStack(ErrNotFound)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return updatedUser, nil
}

var userAttributes = `id, subject, provider, email, full_name, avatar, created_at, updated_at`

func (s *Store) bindUser(stmt *sqlite.Stmt, user *User) error {
	user.ID = stmt.ColumnInt64(0)
	user.Subject = stmt.ColumnText(1)
	user.Provider = stmt.ColumnText(2)
	user.Email = stmt.ColumnText(3)
	user.FullName = stmt.ColumnText(4)
	user.Avatar = stmt.ColumnText(5)
	user.CreatedAt = time.Unix(stmt.ColumnInt64(6), 0).UTC()
	user.UpdatedAt = time.Unix(stmt.ColumnInt64(7), 0).UTC()

	return nil
}
