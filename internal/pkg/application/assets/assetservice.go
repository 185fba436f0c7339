package assets

import (
	"context"
	"errors"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"

	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

var tracer = otel.Tracer("tourism-asset-mgmt/assets")

var ErrInvalidCollection = errors.New("feature collection contains no features sequence")

type AssetService interface {
	GetAll(ctx context.Context) (types.FeatureCollection, error)
	ReplaceAll(ctx context.Context, fc types.FeatureCollection) (int, error)
}

type AssetStorage interface {
	GetAll(ctx context.Context) (types.FeatureCollection, error)
	ReplaceAll(ctx context.Context, fc types.FeatureCollection) (int, error)
}

type svc struct {
	storage   AssetStorage
	messenger messaging.MsgContext
}

func New(storage AssetStorage, messenger messaging.MsgContext) AssetService {
	return svc{
		storage:   storage,
		messenger: messenger,
	}
}

func (s svc) GetAll(ctx context.Context) (types.FeatureCollection, error) {
	return s.storage.GetAll(ctx)
}

// ReplaceAll validates that a features sequence is present, replaces the
// stored dataset with fc and returns the number of persisted features.
func (s svc) ReplaceAll(ctx context.Context, fc types.FeatureCollection) (int, error) {
	var err error
	ctx, span := tracer.Start(ctx, "replace-assets")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if fc.Features == nil {
		err = ErrInvalidCollection
		return 0, err
	}

	count, err := s.storage.ReplaceAll(ctx, fc)
	if err != nil {
		return 0, err
	}

	log := logging.GetFromContext(ctx)
	log.Info("asset dataset replaced", "count", count)

	err = s.messenger.PublishOnTopic(ctx, &DatasetReplaced{
		FeatureCount: count,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		// the dataset is already durable at this point, so the request still succeeds
		log.Error("failed to publish dataset replaced message", "err", err.Error())
		err = nil
	}

	return count, nil
}
