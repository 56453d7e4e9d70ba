package domain

import "time"

// NoVolunteer is the selector value meaning "no volunteer filter".
const NoVolunteer = "none"

// SelectorOption is one entry of the volunteer drop-down.
type SelectorOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Day groups the events of one festival day.
// Date is midnight of the calendar date the day is named after; a festival
// day runs from the configured start hour to the same hour the next morning.
type Day struct {
	Date   time.Time
	Events []Event
}

// Conflict is a pair of overlapping events assigned to the same volunteer.
// First always starts no later than Second.
type Conflict struct {
	First  Event
	Second Event
}

// Schedule is the personal view of one volunteer.
type Schedule struct {
	Volunteer Volunteer
	Events    []Event
	Workload  time.Duration
	Conflicts []Conflict
}
