package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"

	uuid "github.com/satori/go.uuid"
)

type User struct {
	tableName  struct{}  `pg:"user"`
	UserID     uuid.UUID `pg:"user_id,pk"`
	ExternalID string    `pg:"external_id"`
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetOrCreateUser resolves the identity provider's opaque subject to a
// local user row, creating it on first sight. The email is refreshed
// when the provider reports a different one.
func GetOrCreateUser(ctx context.Context, db *pg.DB, externalID string, email string) (*User, bool, error) {
	user := &User{}

	err := db.Model(user).
		Context(ctx).
		Where("external_id = ?", externalID).
		Limit(1).
		Select()
	if err == nil {
		if email != "" && user.Email != email {
			user.Email = email
			user.UpdatedAt = time.Now()
			if _, uerr := db.Model(user).
				Context(ctx).
				Column("email", "updated_at").
				WherePK().
				Update(); uerr != nil {
				return nil, false, uerr
			}
		}
		return user, false, nil
	}
	if !errors.Is(err, pg.ErrNoRows) {
		return nil, false, err
	}

	user.UserID = uuid.NewV4()
	user.ExternalID = externalID
	user.Email = email
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	_, err = db.Model(user).
		Context(ctx).
		Insert()
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
