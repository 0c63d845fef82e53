package model

// IndexJob is the queue payload asking the background worker to index
// one uploaded document. Jobs are idempotent: re-running a job for the
// same document replaces its chunks.
type IndexJob struct {
	DocumentID string `json:"document_id"`
}
