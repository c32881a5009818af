package models

// Spreadsheet and document field names for alumni data. These keys are shared
// by the alumni, roster and update-request collections.
const (
	FieldFirstName       = "First Name"
	FieldLastName        = "Last Name"
	FieldStudentID       = "Student ID"
	FieldGraduationYear  = "Graduation Year"
	FieldMajor           = "Major"
	FieldCompanyName     = "Company Name"
	FieldCompanyLocation = "Company Location"
	FieldRole            = "Role"
	FieldStillWorking    = "Still Working"
)

// RequiredFields lists the logical fields a spreadsheet column can map onto,
// in the order rows are assembled.
var RequiredFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldStudentID,
	FieldGraduationYear,
	FieldMajor,
	FieldCompanyName,
	FieldCompanyLocation,
	FieldRole,
	FieldStillWorking,
}

// IsRequiredField reports whether name is one of RequiredFields
func IsRequiredField(name string) bool {
	for _, f := range RequiredFields {
		if f == name {
			return true
		}
	}
	return false
}

// AdminRole is the staff role chosen at registration
type AdminRole string

const (
	RoleUniversityAdmin        AdminRole = "University Admin"
	RoleAdmissionsOfficer      AdminRole = "Admissions Officer"
	RoleEventCoordinator       AdminRole = "Event Coordinator"
	RoleDepartmentHead         AdminRole = "Department Head"
	RoleAlumniRelationsManager AdminRole = "Alumni Relations Manager"

	// RoleGuest is carried by anonymous sessions only, never stored
	RoleGuest AdminRole = "guest"
)

// AdminRoles lists the roles accepted at registration
var AdminRoles = []AdminRole{
	RoleUniversityAdmin,
	RoleAdmissionsOfficer,
	RoleEventCoordinator,
	RoleDepartmentHead,
	RoleAlumniRelationsManager,
}

// AdminStatus tracks email verification
type AdminStatus string

const (
	AdminStatusPending AdminStatus = "pending"
	AdminStatusActive  AdminStatus = "active"
)

// RequestStatus is the review state of an update request
type RequestStatus string

const (
	RequestPending   RequestStatus = "Pending"
	RequestApproved  RequestStatus = "Approved"
	RequestCancelled RequestStatus = "Cancelled"
)

// UploadStatus is the lifecycle of an upload log
type UploadStatus string

const (
	UploadProcessing UploadStatus = "Processing"
	UploadCompleted  UploadStatus = "Completed"
)
