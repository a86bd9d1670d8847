package watchlist

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	cs "github.com/webtor-io/common-services"

	"github.com/flixplore-io/web-api/models"
)

// Accessor abstracts the watchlist store so the controller can be
// exercised without a live database.
type Accessor interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.WatchlistEntry, error)
	Add(ctx context.Context, entry *models.WatchlistEntry) (*models.WatchlistEntry, error)
	Remove(ctx context.Context, userID uuid.UUID, contentID int64, contentType string) error
}

// StoreAccessor runs watchlist operations against the Postgres handle
// it was constructed with.
type StoreAccessor struct {
	pg *cs.PG
}

func NewStoreAccessor(pg *cs.PG) *StoreAccessor {
	return &StoreAccessor{pg: pg}
}

func (s *StoreAccessor) List(ctx context.Context, userID uuid.UUID) ([]*models.WatchlistEntry, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database is not available")
	}
	return models.GetWatchlist(ctx, db, userID)
}

func (s *StoreAccessor) Add(ctx context.Context, entry *models.WatchlistEntry) (*models.WatchlistEntry, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database is not available")
	}
	return models.AddToWatchlist(ctx, db, entry)
}

func (s *StoreAccessor) Remove(ctx context.Context, userID uuid.UUID, contentID int64, contentType string) error {
	db := s.pg.Get()
	if db == nil {
		return errors.New("database is not available")
	}
	return models.RemoveFromWatchlist(ctx, db, userID, contentID, contentType)
}

// Controller keeps a per-user snapshot of the watchlist. Every store
// refetch is tagged with a sequence number taken before the read, and a
// snapshot only replaces the cached one if its sequence is newer than
// the last applied, so a slow refetch cannot roll back a later one.
type Controller struct {
	accessor Accessor
	userID   uuid.UUID

	mux     sync.Mutex
	seq     uint64
	applied uint64
	entries []*models.WatchlistEntry
	loaded  bool
}

func NewController(accessor Accessor, userID uuid.UUID) *Controller {
	return &Controller{
		accessor: accessor,
		userID:   userID,
	}
}

func (c *Controller) nextSeq() uint64 {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.seq++
	return c.seq
}

func (c *Controller) apply(seq uint64, entries []*models.WatchlistEntry) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if seq <= c.applied {
		return
	}
	c.applied = seq
	c.entries = entries
	c.loaded = true
}

// Refresh reloads the snapshot from the store.
func (c *Controller) Refresh(ctx context.Context) error {
	seq := c.nextSeq()
	entries, err := c.accessor.List(ctx, c.userID)
	if err != nil {
		return err
	}
	c.apply(seq, entries)
	return nil
}

// Entries returns the cached snapshot, loading it on first use.
func (c *Controller) Entries(ctx context.Context) ([]*models.WatchlistEntry, error) {
	c.mux.Lock()
	loaded := c.loaded
	entries := c.entries
	c.mux.Unlock()
	if loaded {
		return entries, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.entries, nil
}

// IsInWatchlist consults the cached snapshot only.
func (c *Controller) IsInWatchlist(contentID int64, contentType string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	for _, e := range c.entries {
		if e.ContentID == contentID && e.ContentType == contentType {
			return true
		}
	}
	return false
}

// Toggle adds the entry when absent and removes it when present, then
// refetches the snapshot. The refetch happens strictly after the store
// write succeeded.
func (c *Controller) Toggle(ctx context.Context, entry *models.WatchlistEntry) (added bool, err error) {
	if _, err = c.Entries(ctx); err != nil {
		return false, err
	}
	entry.UserID = c.userID
	if c.IsInWatchlist(entry.ContentID, entry.ContentType) {
		if err = c.accessor.Remove(ctx, c.userID, entry.ContentID, entry.ContentType); err != nil {
			return false, err
		}
	} else {
		_, err = c.accessor.Add(ctx, entry)
		if err != nil && err != models.ErrDuplicateEntry {
			return false, err
		}
		// a racing duplicate insert is fine, the refetch picks it up
		added = err == nil
	}
	if err = c.Refresh(ctx); err != nil {
		return added, err
	}
	return added, nil
}
