package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

// AlumniFilter narrows the alumni dashboard. Empty fields match everything.
type AlumniFilter struct {
	Major   string `form:"major"`
	Year    string `form:"year"`
	Company string `form:"company"`
}

// AlumniKPIs are the headline numbers of the alumni dashboard
type AlumniKPIs struct {
	TotalAlumni int `json:"totalAlumni" example:"812"`
	Majors      int `json:"majors" example:"14"`
	Companies   int `json:"companies" example:"230"`
	Roles       int `json:"roles" example:"97"`
}

// AlumniOptions lists the values the filters accept, computed over the
// unfiltered set
type AlumniOptions struct {
	Majors    []string `json:"majors"`
	Years     []string `json:"years"`
	Companies []string `json:"companies"`
}

// AlumniDashboard is the full alumni dashboard payload
type AlumniDashboard struct {
	KPIs             AlumniKPIs                `json:"kpis"`
	ByGraduationYear []Count                   `json:"byGraduationYear"`
	ByMajor          []Count                   `json:"byMajor"`
	ByCompany        []Count                   `json:"byCompany"`
	ByRole           []Count                   `json:"byRole"`
	TopMajors        []Count                   `json:"topMajors"`
	TopCompanies     []Count                   `json:"topCompanies"`
	RolesByMajor     map[string]map[string]int `json:"rolesByMajor"`
	Options          AlumniOptions             `json:"options"`
}

// AlumniFieldValue returns the text of one logical alumni field
func AlumniFieldValue(rec models.AlumniRecord, field string) (string, error) {
	switch field {
	case models.FieldFirstName:
		return rec.FirstName, nil
	case models.FieldLastName:
		return rec.LastName, nil
	case models.FieldStudentID:
		return rec.StudentID, nil
	case models.FieldGraduationYear:
		if rec.GraduationYear == 0 {
			return "", nil
		}
		return strconv.Itoa(rec.GraduationYear), nil
	case models.FieldMajor:
		return rec.Major, nil
	case models.FieldCompanyName:
		return rec.CompanyName, nil
	case models.FieldCompanyLocation:
		return rec.CompanyLocation, nil
	case models.FieldRole:
		return rec.Role, nil
	case models.FieldStillWorking:
		if rec.StillWorking {
			return "Yes", nil
		}
		return "No", nil
	}
	return "", fmt.Errorf("%w: unknown alumni field %q", apperrors.ErrValidationFailed, field)
}

func fieldOf(field string) func(models.AlumniRecord) string {
	return func(rec models.AlumniRecord) string {
		v, _ := AlumniFieldValue(rec, field)
		return v
	}
}

// CountAlumniBy is CountBy over one logical field
func CountAlumniBy(records []models.AlumniRecord, field string) (map[string]int, error) {
	if !models.IsRequiredField(field) {
		return nil, fmt.Errorf("%w: unknown alumni field %q", apperrors.ErrValidationFailed, field)
	}
	return CountBy(records, fieldOf(field)), nil
}

// FilterAlumni applies f
func FilterAlumni(records []models.AlumniRecord, f AlumniFilter) []models.AlumniRecord {
	out := make([]models.AlumniRecord, 0, len(records))
	for _, rec := range records {
		if f.Major != "" && rec.Major != f.Major {
			continue
		}
		if f.Year != "" && strconv.Itoa(rec.GraduationYear) != f.Year {
			continue
		}
		if f.Company != "" && rec.CompanyName != f.Company {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// BuildAlumniDashboard filters records and aggregates the result. topN caps
// the top-majors and top-companies lists; zero means no cap.
func BuildAlumniDashboard(records []models.AlumniRecord, f AlumniFilter, topN int) AlumniDashboard {
	filtered := FilterAlumni(records, f)

	majors := CountBy(filtered, fieldOf(models.FieldMajor))
	companies := CountBy(filtered, fieldOf(models.FieldCompanyName))
	roles := CountBy(filtered, fieldOf(models.FieldRole))
	years := CountBy(filtered, fieldOf(models.FieldGraduationYear))

	rolesByMajor := make(map[string]map[string]int, len(majors))
	for _, rec := range filtered {
		major, role := keyOrUnknown(rec.Major), keyOrUnknown(rec.Role)
		if rolesByMajor[major] == nil {
			rolesByMajor[major] = make(map[string]int)
		}
		rolesByMajor[major][role]++
	}

	var yearOpts, majorOpts, companyOpts []string
	for _, rec := range records {
		majorOpts = append(majorOpts, rec.Major)
		companyOpts = append(companyOpts, rec.CompanyName)
		if rec.GraduationYear != 0 {
			yearOpts = append(yearOpts, strconv.Itoa(rec.GraduationYear))
		}
	}

	return AlumniDashboard{
		KPIs: AlumniKPIs{
			TotalAlumni: len(filtered),
			Majors:      len(majors),
			Companies:   len(companies),
			Roles:       len(roles),
		},
		ByGraduationYear: ByKey(years),
		ByMajor:          ByCount(majors),
		ByCompany:        ByCount(companies),
		ByRole:           ByCount(roles),
		TopMajors:        TopN(majors, topN),
		TopCompanies:     TopN(companies, topN),
		RolesByMajor:     rolesByMajor,
		Options: AlumniOptions{
			Majors:    distinct(majorOpts),
			Years:     distinct(yearOpts),
			Companies: distinct(companyOpts),
		},
	}
}

func keyOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return UnknownKey
	}
	return s
}
