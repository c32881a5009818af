package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/yigit/alumnidesk/internal/app/models"
)

// EventFilter narrows the events dashboard. Zero values match everything.
type EventFilter struct {
	Year           int    `form:"year"`
	Location       string `form:"location"`
	GraduationYear int    `form:"graduationYear"`
}

// EventKPIs are the headline numbers of the events dashboard
type EventKPIs struct {
	TotalEvents    int    `json:"totalEvents" example:"12"`
	TotalAttendees int    `json:"totalAttendees" example:"940"`
	UniqueAlumni   int    `json:"uniqueAlumni" example:"611"`
	TopEvent       string `json:"topEvent" example:"Alumni Homecoming (180)"`
}

// EventUniqueAlumni is the distinct attendee count of one event
type EventUniqueAlumni struct {
	EventID      string `json:"eventId"`
	Title        string `json:"eventTitle"`
	UniqueAlumni int    `json:"uniqueAlumni"`
}

// Participation totals attendees, speakers and volunteers
type Participation struct {
	Attendees  int `json:"attendees"`
	Speakers   int `json:"speakers"`
	Volunteers int `json:"volunteers"`
}

// YearStats aggregates all events of one year
type YearStats struct {
	Year       int `json:"year"`
	Events     int `json:"events"`
	Attendees  int `json:"attendees"`
	Speakers   int `json:"speakers"`
	Volunteers int `json:"volunteers"`
}

// EventOptions lists the values the filters accept
type EventOptions struct {
	Years           []int    `json:"years"`
	Locations       []string `json:"locations"`
	GraduationYears []int    `json:"graduationYears"`
}

// EventsDashboard is the full events dashboard payload. ByYear is computed
// over every event regardless of the filter.
type EventsDashboard struct {
	KPIs                 EventKPIs           `json:"kpis"`
	UniqueAlumniPerEvent []EventUniqueAlumni `json:"uniqueAlumniPerEvent"`
	EventsByLocation     []Count             `json:"eventsByLocation"`
	Participation        Participation       `json:"participation"`
	ByYear               []YearStats         `json:"byYear"`
	Options              EventOptions        `json:"options"`
}

// FilterEvents applies f. The graduation-year filter keeps events with at
// least one link of that year.
func FilterEvents(events []models.EventSummary, links []models.EventAlumniLink, f EventFilter) []models.EventSummary {
	var withGradYear map[string]bool
	if f.GraduationYear != 0 {
		withGradYear = make(map[string]bool)
		for _, l := range links {
			if l.GraduationYear == f.GraduationYear {
				withGradYear[l.EventID] = true
			}
		}
	}

	out := make([]models.EventSummary, 0, len(events))
	for _, e := range events {
		if f.Year != 0 && e.Year != f.Year {
			continue
		}
		if f.Location != "" && e.Location != f.Location {
			continue
		}
		if withGradYear != nil && !withGradYear[e.EventID] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BuildEventsDashboard aggregates events and their attendance links
func BuildEventsDashboard(events []models.EventSummary, links []models.EventAlumniLink, f EventFilter) EventsDashboard {
	filtered := FilterEvents(events, links, f)

	studentsByEvent := make(map[string]map[string]struct{})
	for _, l := range links {
		if studentsByEvent[l.EventID] == nil {
			studentsByEvent[l.EventID] = make(map[string]struct{})
		}
		studentsByEvent[l.EventID][l.StudentID] = struct{}{}
	}

	dash := EventsDashboard{
		UniqueAlumniPerEvent: make([]EventUniqueAlumni, 0, len(filtered)),
	}
	unique := make(map[string]struct{})
	var top *models.EventSummary
	for i := range filtered {
		e := &filtered[i]
		dash.Participation.Attendees += e.TotalAttendees
		dash.Participation.Speakers += e.TotalSpeakers
		dash.Participation.Volunteers += e.TotalVolunteers

		students := studentsByEvent[e.EventID]
		for id := range students {
			unique[id] = struct{}{}
		}
		dash.UniqueAlumniPerEvent = append(dash.UniqueAlumniPerEvent, EventUniqueAlumni{
			EventID:      e.EventID,
			Title:        e.Title,
			UniqueAlumni: len(students),
		})

		if top == nil || e.TotalAttendees > top.TotalAttendees {
			top = e
		}
	}

	dash.KPIs = EventKPIs{
		TotalEvents:    len(filtered),
		TotalAttendees: dash.Participation.Attendees,
		UniqueAlumni:   len(unique),
		TopEvent:       "-",
	}
	if top != nil {
		dash.KPIs.TopEvent = fmt.Sprintf("%s (%d)", top.Title, top.TotalAttendees)
	}

	dash.EventsByLocation = ByCount(CountBy(filtered, func(e models.EventSummary) string { return e.Location }))
	dash.ByYear = yearStats(events)

	var locations []string
	var years, gradYears []int
	for _, e := range events {
		locations = append(locations, e.Location)
		years = append(years, e.Year)
	}
	for _, l := range links {
		gradYears = append(gradYears, l.GraduationYear)
	}
	dash.Options = EventOptions{
		Years:           distinctInts(years),
		Locations:       distinct(locations),
		GraduationYears: distinctInts(gradYears),
	}
	return dash
}

func yearStats(events []models.EventSummary) []YearStats {
	byYear := make(map[int]*YearStats)
	for _, e := range events {
		s, ok := byYear[e.Year]
		if !ok {
			s = &YearStats{Year: e.Year}
			byYear[e.Year] = s
		}
		s.Events++
		s.Attendees += e.TotalAttendees
		s.Speakers += e.TotalSpeakers
		s.Volunteers += e.TotalVolunteers
	}
	out := make([]YearStats, 0, len(byYear))
	for _, s := range byYear {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func round(v float64) int {
	return int(math.Round(v))
}
