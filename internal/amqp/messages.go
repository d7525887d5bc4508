package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// DatasetUploadedMessage announces a newly stored dataset. It carries only
// the identity; consumers load the records from storage.
type DatasetUploadedMessage struct {
	DatasetID string    `json:"dataset_id"`
	Name      string    `json:"name"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetUploadedMessage(datasetID, name string, rows int) *DatasetUploadedMessage {
	return &DatasetUploadedMessage{
		DatasetID: datasetID,
		Name:      name,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

func (m *DatasetUploadedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetUploadedMessageFromJSON decodes a message and rejects one without a dataset id.
func DatasetUploadedMessageFromJSON(data []byte) (*DatasetUploadedMessage, error) {
	var msg DatasetUploadedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.DatasetID == "" {
		return nil, errors.New("message has no dataset_id")
	}
	return &msg, nil
}
