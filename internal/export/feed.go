package export

import (
	"encoding/json"

	"feed-export-service/internal/models"
)

// FeedWriter serializes normalized export records into the provider's wire
// format. The format itself is owned by an external component; the pipeline
// only hands over records and paging information, and only when a run
// finished without errors.
type FeedWriter interface {
	Serialize(records []models.ExportRecord, start, count, total int) ([]byte, error)
	ContentType() string
}

// JSONFeedWriter is the default collaborator used when no provider-specific
// writer is plugged in. It wraps the records in a paging envelope.
type JSONFeedWriter struct{}

type jsonFeed struct {
	Start int                   `json:"start"`
	Count int                   `json:"count"`
	Total int                   `json:"total"`
	Items []models.ExportRecord `json:"items"`
}

// Serialize encodes the page as JSON.
func (JSONFeedWriter) Serialize(records []models.ExportRecord, start, count, total int) ([]byte, error) {
	return json.Marshal(jsonFeed{
		Start: start,
		Count: count,
		Total: total,
		Items: records,
	})
}

// ContentType returns the MIME type of the serialized feed.
func (JSONFeedWriter) ContentType() string {
	return "application/json"
}
