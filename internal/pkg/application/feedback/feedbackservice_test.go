package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/matryer/is"

	repository "github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/repositories/feedback"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/storage"
)

func testSetup(t *testing.T) (context.Context, FeedbackService, repository.Repository, *messaging.MsgContextMock) {
	ctx := context.Background()

	s, err := storage.New(ctx, storage.NewConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	msgCtx := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			return nil
		},
	}

	repo := repository.NewRepository(s, "")

	return ctx, New(repo, msgCtx), repo, msgCtx
}

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

func TestAppendAssignsIDAndSubmissionTime(t *testing.T) {
	is := is.New(t)
	ctx, svc, _, msgCtx := testSetup(t)

	before := time.Now().UTC()

	record, err := svc.Append(ctx, Submission{
		Name:        str("Old lighthouse"),
		Description: str("Worth a detour at sunset"),
		Latitude:    num(7.9403),
		Longitude:   num(79.8283),
	})
	is.NoErr(err)

	is.True(record.ID >= before.UnixMilli())
	is.True(!record.SubmittedAt.Before(before))
	is.Equal(record.SubmittedAt.Location(), time.UTC)
	is.Equal(len(msgCtx.PublishOnTopicCalls()), 1)
}

func TestAppendAcceptsZeroCoordinates(t *testing.T) {
	is := is.New(t)
	ctx, svc, repo, _ := testSetup(t)

	_, err := svc.Append(ctx, Submission{
		Name:        str("A"),
		Description: str("B"),
		Latitude:    num(0),
		Longitude:   num(79.9),
	})
	is.NoErr(err)

	list, err := repo.GetAll(ctx)
	is.NoErr(err)
	is.Equal(len(list), 1)
	is.Equal(list[0].Latitude, 0.0)
}

func TestAppendRejectsMissingFields(t *testing.T) {
	is := is.New(t)
	ctx, svc, repo, msgCtx := testSetup(t)

	incomplete := []Submission{
		{Description: str("B"), Latitude: num(7.8), Longitude: num(79.9)},
		{Name: str("A"), Latitude: num(7.8), Longitude: num(79.9)},
		{Name: str("A"), Description: str("B"), Longitude: num(79.9)},
		{Name: str("A"), Description: str("B"), Latitude: num(7.8)},
		{Name: str("  "), Description: str("B"), Latitude: num(7.8), Longitude: num(79.9)},
	}

	for _, sub := range incomplete {
		_, err := svc.Append(ctx, sub)
		is.True(errors.Is(err, ErrIncompleteFeedback))
	}

	list, err := repo.GetAll(ctx)
	is.NoErr(err)
	is.Equal(len(list), 0)
	is.Equal(len(msgCtx.PublishOnTopicCalls()), 0)
}

func TestAppendedRecordsAccumulateInOrder(t *testing.T) {
	is := is.New(t)
	ctx, svc, repo, _ := testSetup(t)

	for _, name := range []string{"first", "second"} {
		_, err := svc.Append(ctx, Submission{
			Name:        str(name),
			Description: str("desc"),
			Latitude:    num(7.8),
			Longitude:   num(80.1),
		})
		is.NoErr(err)
	}

	list, err := repo.GetAll(ctx)
	is.NoErr(err)
	is.Equal(len(list), 2)
	is.Equal(list[0].Name, "first")
	is.Equal(list[1].Name, "second")
	is.True(list[1].ID >= list[0].ID)
}
