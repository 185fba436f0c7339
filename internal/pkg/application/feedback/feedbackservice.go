package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"

	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

var tracer = otel.Tracer("tourism-asset-mgmt/feedback")

var ErrIncompleteFeedback = errors.New("feedback must include name, description, latitude and longitude")

// Submission is a caller supplied feedback record before validation.
// Pointer fields distinguish an absent value from a zero value, so a
// latitude or longitude of exactly 0 is still a valid submission.
type Submission struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type FeedbackService interface {
	Append(ctx context.Context, sub Submission) (types.Feedback, error)
}

type FeedbackStorage interface {
	GetAll(ctx context.Context) ([]types.Feedback, error)
	Add(ctx context.Context, record types.Feedback) error
}

type svc struct {
	storage   FeedbackStorage
	messenger messaging.MsgContext
}

func New(storage FeedbackStorage, messenger messaging.MsgContext) FeedbackService {
	return svc{
		storage:   storage,
		messenger: messenger,
	}
}

// Append validates sub, assigns id and submission time and appends the
// record to the stored sequence. Nothing is written when validation fails.
func (s svc) Append(ctx context.Context, sub Submission) (types.Feedback, error) {
	var err error
	ctx, span := tracer.Start(ctx, "append-feedback")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if !sub.complete() {
		err = ErrIncompleteFeedback
		return types.Feedback{}, err
	}

	now := time.Now().UTC()

	record := types.Feedback{
		ID:          now.UnixMilli(),
		Name:        strings.TrimSpace(*sub.Name),
		Description: strings.TrimSpace(*sub.Description),
		Latitude:    *sub.Latitude,
		Longitude:   *sub.Longitude,
		SubmittedAt: now,
	}

	err = s.storage.Add(ctx, record)
	if err != nil {
		return types.Feedback{}, err
	}

	log := logging.GetFromContext(ctx)
	log.Debug("feedback stored", "id", record.ID)

	err = s.messenger.PublishOnTopic(ctx, &FeedbackReceived{
		Feedback:  record,
		Timestamp: now,
	})
	if err != nil {
		log.Error("failed to publish feedback received message", "err", err.Error())
		err = nil
	}

	return record, nil
}

func (sub Submission) complete() bool {
	present := func(s *string) bool {
		return s != nil && strings.TrimSpace(*s) != ""
	}

	// coordinates only need to be present, 0 is a valid value
	return present(sub.Name) && present(sub.Description) && sub.Latitude != nil && sub.Longitude != nil
}
