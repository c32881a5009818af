package dto

import "time"

// APIResponse wraps every successful payload
type APIResponse struct {
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse stamps data with the current time
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{Data: data, Timestamp: time.Now()}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// PaginationInfo describes one page of a listing
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"9"`
	PageSize    int   `json:"pageSize" example:"10"`
	TotalItems  int64 `json:"totalItems" example:"83"`
}

// PaginatedResponse represents a paginated list with metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// JobAccepted is returned when a workflow was started in the background
type JobAccepted struct {
	JobID       string `json:"jobId" example:"3b8a2a0c-9a0f-4c59-9f39-4d8f2f0d8f11"`
	UploadLogID string `json:"uploadLogId,omitempty"`
	EventID     string `json:"eventId,omitempty" example:"EVT2024ALUMNI042"`
}
