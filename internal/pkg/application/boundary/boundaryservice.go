package boundary

import (
	"context"

	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

type BoundaryService interface {
	Get(ctx context.Context) (types.FeatureCollection, error)
}

type BoundaryStorage interface {
	Get(ctx context.Context) (types.FeatureCollection, error)
}

type svc struct {
	storage BoundaryStorage
}

func New(storage BoundaryStorage) BoundaryService {
	return svc{
		storage: storage,
	}
}

func (s svc) Get(ctx context.Context) (types.FeatureCollection, error) {
	return s.storage.Get(ctx)
}
