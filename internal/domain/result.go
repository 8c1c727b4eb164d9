package domain

import "time"

// StoreResult captures the outcome of one store's write inside a dual write.
type StoreResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DualWriteResult is the ephemeral per-operation outcome of a dual write.
// Success is true only if the legacy write succeeded and either the target
// write succeeded or the coordinator runs in tolerant mode.
type DualWriteResult struct {
	Success   bool        `json:"success"`
	Legacy    StoreResult `json:"legacy"`
	Target    StoreResult `json:"target"`
	Timestamp time.Time   `json:"timestamp"`
}

// ItemError attributes one rejected reading to its original batch index.
type ItemError struct {
	Index    int    `json:"index"`
	EntityID string `json:"entity_id"`
	Error    string `json:"error"`
}

// BatchReport is the aggregate result of one ingestion call. Errors is capped
// for response size; Inserted, Rejected and TotalErrors are always exact.
type BatchReport struct {
	Inserted    int         `json:"inserted"`
	Rejected    int         `json:"rejected"`
	Errors      []ItemError `json:"errors"`
	TotalErrors int         `json:"total_errors"`
}
