package assets

import (
	"encoding/json"
	"time"
)

type DatasetReplaced struct {
	FeatureCount int       `json:"featureCount"`
	Timestamp    time.Time `json:"timestamp"`
}

func (d *DatasetReplaced) ContentType() string {
	return "application/json"
}
func (d *DatasetReplaced) TopicName() string {
	return "assets.datasetReplaced"
}
func (d *DatasetReplaced) Body() []byte {
	b, _ := json.Marshal(d)
	return b
}
