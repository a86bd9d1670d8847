package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// ErrDuplicateEntry signals an add for a (user, content, type) key that
// is already bookmarked.
var ErrDuplicateEntry = errors.New("entry already in watchlist")

// WatchlistEntry is one bookmarked content reference. Title, poster,
// release date and rating are a display snapshot captured at add-time;
// they are not kept in sync with upstream.
type WatchlistEntry struct {
	tableName struct{} `pg:"watchlist"`

	WatchlistID uuid.UUID `pg:"watchlist_id,pk" json:"id"`
	UserID      uuid.UUID `pg:"user_id" json:"-"`
	ContentID   int64     `pg:"content_id,use_zero" json:"contentId"`
	ContentType string    `pg:"content_type" json:"contentType"`
	Title       string    `pg:"title" json:"title"`
	PosterPath  string    `pg:"poster_path" json:"posterPath,omitempty"`
	ReleaseDate string    `pg:"release_date" json:"releaseDate,omitempty"`
	VoteAverage float64   `pg:"vote_average,use_zero" json:"voteAverage"`
	CreatedAt   time.Time `pg:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `pg:"updated_at" json:"updatedAt"`
}

func IsInWatchlist(ctx context.Context, db *pg.DB, uID uuid.UUID, contentID int64, contentType string) (bool, error) {
	exists, err := db.Model((*WatchlistEntry)(nil)).
		Context(ctx).
		Where("user_id = ? AND content_id = ? AND content_type = ?", uID, contentID, contentType).
		Exists()
	if err != nil {
		return false, errors.Wrap(err, "failed to check watchlist membership")
	}
	return exists, nil
}

// AddToWatchlist inserts a new entry. The pre-insert existence check
// yields a friendly ErrDuplicateEntry; the unique index on
// (user_id, content_id, content_type) is the authoritative guard, so a
// constraint violation from a racing add maps to the same error.
func AddToWatchlist(ctx context.Context, db *pg.DB, entry *WatchlistEntry) (*WatchlistEntry, error) {
	exists, err := IsInWatchlist(ctx, db, entry.UserID, entry.ContentID, entry.ContentType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEntry
	}

	entry.WatchlistID = uuid.NewV4()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt

	_, err = db.Model(entry).
		Context(ctx).
		Insert()
	if err != nil {
		var pgErr pg.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return nil, ErrDuplicateEntry
		}
		return nil, errors.Wrap(err, "failed to insert watchlist entry")
	}
	return entry, nil
}

// RemoveFromWatchlist is idempotent: removing an absent entry succeeds.
func RemoveFromWatchlist(ctx context.Context, db *pg.DB, uID uuid.UUID, contentID int64, contentType string) error {
	_, err := db.Model((*WatchlistEntry)(nil)).
		Context(ctx).
		Where("user_id = ? AND content_id = ? AND content_type = ?", uID, contentID, contentType).
		Delete()
	if err != nil {
		return errors.Wrap(err, "failed to remove from watchlist")
	}
	return nil
}

func GetWatchlist(ctx context.Context, db *pg.DB, uID uuid.UUID) ([]*WatchlistEntry, error) {
	var list []*WatchlistEntry
	err := db.Model(&list).
		Context(ctx).
		Where("user_id = ?", uID).
		Order("created_at DESC").
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch watchlist")
	}
	return list, nil
}
