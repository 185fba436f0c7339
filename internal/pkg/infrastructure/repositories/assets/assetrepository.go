package assets

import (
	"context"
	"errors"

	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/storage"
	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

const DocumentName string = "NWP_TOURISM_DATA.geojson"

// Repository owns the tourism asset FeatureCollection document. Every
// read goes back to storage; there is no cross-request caching.
type Repository struct {
	storage  *storage.Store
	document string
}

func NewRepository(s *storage.Store, document string) Repository {
	if document == "" {
		document = DocumentName
	}

	return Repository{
		storage:  s,
		document: document,
	}
}

// GetAll returns the stored collection unchanged. A document that has
// never been written yields an empty collection, not an error.
func (r Repository) GetAll(ctx context.Context) (types.FeatureCollection, error) {
	fc, err := storage.ReadDocument[types.FeatureCollection](ctx, r.storage, r.document)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return types.NewFeatureCollection(), nil
		}
		return types.FeatureCollection{}, err
	}

	if fc.Features == nil {
		fc.Features = []types.Feature{}
	}

	return fc, nil
}

// ReplaceAll discards the previous document contents entirely and
// persists fc in their place, returning the number of features written.
func (r Repository) ReplaceAll(ctx context.Context, fc types.FeatureCollection) (int, error) {
	err := storage.WriteDocument(ctx, r.storage, r.document, fc)
	if err != nil {
		return 0, err
	}

	return len(fc.Features), nil
}
