package boundary

import (
	"context"
	"errors"

	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/storage"
	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

const DocumentName string = "NWP_BOUNDARY.geojson"

// Repository reads the province boundary document. The boundary is
// reference data maintained out of band, so no write operation exists.
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

func (r Repository) Get(ctx context.Context) (types.FeatureCollection, error) {
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
