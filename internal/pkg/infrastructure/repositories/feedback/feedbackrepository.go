package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/storage"
	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

const DocumentName string = "feedback.json"

// Repository owns the append-only feedback document: an ordered JSON
// list where insertion order is submission order. Records are never
// mutated or deleted.
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

func (r Repository) GetAll(ctx context.Context) ([]types.Feedback, error) {
	list, err := storage.ReadDocument[[]types.Feedback](ctx, r.storage, r.document)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return []types.Feedback{}, nil
		}
		return nil, err
	}

	return list, nil
}

// Add appends record to the end of the stored sequence. The full
// sequence is rewritten under the document's write lock.
func (r Repository) Add(ctx context.Context, record types.Feedback) error {
	return r.storage.Update(ctx, r.document, func(current []byte, exists bool) ([]byte, error) {
		list := []types.Feedback{}

		if exists {
			err := json.Unmarshal(current, &list)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", storage.ErrReadFailed, err.Error())
			}
		}

		list = append(list, record)

		return json.MarshalIndent(list, "", "  ")
	})
}
