package dto

// IngestionState is a step of the spreadsheet ingestion workflow
type IngestionState string

const (
	StateIdle              IngestionState = "Idle"
	StateFileLoaded        IngestionState = "FileLoaded"
	StateHeaderRowSelected IngestionState = "HeaderRowSelected"
	StateColumnsMapped     IngestionState = "ColumnsMapped"
	StateValidated         IngestionState = "Validated"
	StateCommitted         IngestionState = "Committed"
)

// IngestionSessionResponse summarises a session
type IngestionSessionResponse struct {
	SessionID      string            `json:"sessionId"`
	State          IngestionState    `json:"state" example:"FileLoaded"`
	FileName       string            `json:"fileName" example:"homecoming_2024.xlsx"`
	SheetName      string            `json:"sheetName" example:"Sheet1"`
	RowCount       int               `json:"rowCount" example:"42"`
	Preview        [][]string        `json:"preview,omitempty"`
	HeaderRow      *int              `json:"headerRow,omitempty"`
	Headers        []string          `json:"headers,omitempty"`
	Mapping        map[string]string `json:"mapping,omitempty"`
	UnmappedFields []string          `json:"unmappedFields,omitempty"`
	Validation     *ValidationResult `json:"validation,omitempty"`
	RequiredFields []string          `json:"requiredFields"`
}

// SelectHeaderRequest picks the header row (0-based)
type SelectHeaderRequest struct {
	RowIndex *int `json:"rowIndex" binding:"required,min=0" example:"1"`
}

// MapColumnsRequest maps logical fields to detected headers
type MapColumnsRequest struct {
	Mapping map[string]string `json:"mapping" binding:"required"`
}

// ValidationResult splits allow-listed rows into inserts and updates
type ValidationResult struct {
	TotalRows int                 `json:"totalRows" example:"10"`
	Rejected  int                 `json:"rejected" example:"2"`
	ToAdd     []map[string]string `json:"toAdd"`
	ToUpdate  []map[string]string `json:"toUpdate"`
}

// CommitRequest carries the event metadata for a commit
type CommitRequest struct {
	EventTitle string `json:"eventTitle" binding:"required" example:"Alumni Homecoming"`
	Year       int    `json:"year" binding:"required,gradyear" example:"2024"`
	Location   string `json:"location" binding:"required" example:"Ankara"`
	EventDate  string `json:"eventDate" example:"2024-05-18"`
}

// CommitResult is the outcome of a finished commit
type CommitResult struct {
	UploadLogID   string `json:"uploadLogId"`
	EventID       string `json:"eventId"`
	RowsProcessed int    `json:"rowsProcessed"`
	Inserted      int    `json:"inserted"`
	Updated       int    `json:"updated"`
}

// CommitProgress is broadcast after each committed row
type CommitProgress struct {
	SessionID string `json:"sessionId"`
	EventID   string `json:"eventId"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}
