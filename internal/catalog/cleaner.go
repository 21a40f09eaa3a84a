package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SuccessMessage is printed once every catalog has been deleted.
const SuccessMessage = "Deleted all catalogs."

var (
	// ErrListCatalogs means the catalog list could not be fetched; nothing was deleted.
	ErrListCatalogs = errors.New("list catalogs")
	// ErrDeleteCatalog matches any *DeleteError.
	ErrDeleteCatalog = errors.New("delete catalog")
)

// DeleteError reports the first catalog whose deletion failed.
type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete catalog %s: %v", e.ID, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDeleteCatalog.
func (e *DeleteError) Is(target error) bool { return target == ErrDeleteCatalog }

// API is the subset of the service the cleaner needs. *Client implements it.
type API interface {
	ListCatalogs(ctx context.Context) ([]Catalog, error)
	DeleteCatalog(ctx context.Context, id string) error
}

// Result summarises a cleanup run.
type Result struct {
	Listed  int
	Deleted int
}

// Cleaner deletes every catalog owned by an API key.
type Cleaner struct {
	api         API
	concurrency int
	log         *zerolog.Logger
}

// NewCleaner builds a cleaner over api. A nil logger discards output.
func NewCleaner(api API, logger *zerolog.Logger) *Cleaner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Cleaner{api: api, log: logger}
}

// SetConcurrency caps in-flight deletes. Zero or less means unlimited.
func (c *Cleaner) SetConcurrency(n int) {
	c.concurrency = n
}

// List fetches the catalog ids, dropping duplicates while keeping order.
func (c *Cleaner) List(ctx context.Context) ([]string, error) {
	catalogs, err := c.api.ListCatalogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListCatalogs, err)
	}

	ids := make([]string, 0, len(catalogs))
	seen := make(map[string]struct{}, len(catalogs))
	for _, cat := range catalogs {
		if _, ok := seen[cat.ID]; ok {
			continue
		}
		seen[cat.ID] = struct{}{}
		ids = append(ids, cat.ID)
	}
	return ids, nil
}

// Cleanup lists all catalogs and deletes each one concurrently. A failed
// delete does not cancel the others; the first failure is returned once every
// delete has finished.
func (c *Cleaner) Cleanup(ctx context.Context) (Result, error) {
	ids, err := c.List(ctx)
	if err != nil {
		return Result{}, err
	}
	c.log.Info().Int("catalogs", len(ids)).Msg("deleting catalogs")

	var (
		g       errgroup.Group
		deleted atomic.Int64
	)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for _, id := range ids {
		g.Go(func() error {
			if err := c.api.DeleteCatalog(ctx, id); err != nil {
				c.log.Warn().Err(err).Str("catalog_id", id).Msg("delete failed")
				return &DeleteError{ID: id, Err: err}
			}
			deleted.Add(1)
			c.log.Debug().Str("catalog_id", id).Msg("catalog deleted")
			return nil
		})
	}

	err = g.Wait()
	return Result{Listed: len(ids), Deleted: int(deleted.Load())}, err
}

// Run performs a cleanup and writes the outcome to out: the error text on
// failure, SuccessMessage otherwise.
func Run(ctx context.Context, c *Cleaner, out io.Writer) error {
	res, err := c.Cleanup(ctx)
	if err != nil {
		fmt.Fprintln(out, err)
		return err
	}
	c.log.Info().Int("deleted", res.Deleted).Msg("cleanup finished")
	fmt.Fprintln(out, SuccessMessage)
	return nil
}
