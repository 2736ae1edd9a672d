// package services defines interface Catalog for storefront metadata lookups
//
// iTunes Search
package services

import (
	"context"

	"github.com/desertthunder/amjp/internal/models"
)

// Catalog looks up storefront-localized metadata for a track.
type Catalog interface {
	// Search returns the first match for title and artist, or an error describing why there is none.
	Search(ctx context.Context, title, artist string) (*models.LocalizedMetadata, error)

	// Lookup is Search with every failure reported as a nil match.
	Lookup(ctx context.Context, title, artist string) *models.LocalizedMetadata

	// Name returns the name of the catalog (e.g., "iTunes Search")
	Name() string
}
