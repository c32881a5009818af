package dto

// SubmitUpdateRequest is what the external alumni form posts
type SubmitUpdateRequest struct {
	StudentID       string `json:"Student ID" binding:"required" example:"20190451"`
	FirstName       string `json:"First Name" example:"Ayse"`
	LastName        string `json:"Last Name" example:"Demir"`
	GraduationYear  string `json:"Graduation Year" example:"2021"`
	Major           string `json:"Major" example:"Computer Science"`
	CompanyName     string `json:"Company Name" example:"DataWorks"`
	CompanyLocation string `json:"Company Location" example:"Istanbul"`
	Role            string `json:"Role" example:"Data Engineer"`
	StillWorking    string `json:"Still Working" example:"Yes"`
	RequestType     string `json:"Request Type" example:"Update"`
}

// BackfillResult reports one backfill run
type BackfillResult struct {
	Scanned   int  `json:"scanned" example:"540"`
	Updated   int  `json:"updated" example:"37"`
	Skipped   int  `json:"skipped" example:"503"`
	Cancelled bool `json:"cancelled"`
}

// RosterImportResult reports one roster import
type RosterImportResult struct {
	Inserted int `json:"inserted" example:"1200"`
	Skipped  int `json:"skipped" example:"4"`
}
