package feedback

import (
	"encoding/json"
	"time"

	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

type FeedbackReceived struct {
	Feedback  types.Feedback `json:"feedback"`
	Timestamp time.Time      `json:"timestamp"`
}

func (f *FeedbackReceived) ContentType() string {
	return "application/json"
}
func (f *FeedbackReceived) TopicName() string {
	return "feedback.feedbackReceived"
}
func (f *FeedbackReceived) Body() []byte {
	b, _ := json.Marshal(f)
	return b
}
