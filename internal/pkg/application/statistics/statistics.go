package statistics

import (
	"context"
	"strconv"

	"github.com/samber/lo"

	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

type StatsService interface {
	CategoryDistribution(ctx context.Context) ([]types.CategoryCount, error)
}

type AssetProvider interface {
	GetAll(ctx context.Context) (types.FeatureCollection, error)
}

type svc struct {
	assets AssetProvider
}

func New(assets AssetProvider) StatsService {
	return svc{
		assets: assets,
	}
}

// CategoryDistribution counts the current assets per category. One
// entry is returned per distinct category; entry order is unspecified
// and sorting is left to the consumer.
func (s svc) CategoryDistribution(ctx context.Context) ([]types.CategoryCount, error) {
	fc, err := s.assets.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := lo.CountValuesBy(fc.Features, func(f types.Feature) string {
		return f.Category()
	})

	distribution := make([]types.CategoryCount, 0, len(counts))
	for category, count := range counts {
		distribution = append(distribution, types.CategoryCount{
			Category: category,
			Count:    strconv.Itoa(count),
		})
	}

	return distribution, nil
}
