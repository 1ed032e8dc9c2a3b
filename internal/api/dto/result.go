package dto

// OperationResult is the shape every mutating call returns to the
// surrounding CRUD layer. The core never formats user-facing text; the
// message is a machine-checkable summary and Skipped makes idempotent
// no-ops visible so operators can trust re-runs.
type OperationResult struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	ID      *string `json:"id,omitempty"`
	Skipped bool    `json:"skipped,omitempty"`
}

func NewOperationResult(message string, id string) *OperationResult {
	return &OperationResult{
		Success: true,
		Message: message,
		ID:      &id,
	}
}

func NewSkippedResult(message string) *OperationResult {
	return &OperationResult{
		Success: true,
		Message: message,
		Skipped: true,
	}
}
