package boundary

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/storage"
)

func TestGetOnEmptyStoreReturnsEmptyCollection(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	s, err := storage.New(ctx, storage.NewConfig(t.TempDir()))
	is.NoErr(err)

	fc, err := NewRepository(s, "").Get(ctx)
	is.NoErr(err)
	is.Equal(fc.Type, "FeatureCollection")
	is.Equal(len(fc.Features), 0)
}

func TestGetReturnsStoredPolygon(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	s, err := storage.New(ctx, storage.NewConfig(t.TempDir()))
	is.NoErr(err)

	err = s.Write(ctx, DocumentName, []byte(boundaryJSON))
	is.NoErr(err)

	fc, err := NewRepository(s, "").Get(ctx)
	is.NoErr(err)
	is.Equal(len(fc.Features), 1)
	is.Equal(fc.Features[0].Geometry.Type, "Polygon")
}

const boundaryJSON string = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[79.7, 7.1], [80.6, 7.1], [80.6, 8.1], [79.7, 8.1], [79.7, 7.1]]]
			},
			"properties": { "name": "North Western Province" }
		}
	]
}`
