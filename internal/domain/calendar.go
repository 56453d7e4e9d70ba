package domain

import "time"

// Volunteer is a person that can be assigned to quests.
type Volunteer struct {
	ID    ResourceID `json:"id"`
	Title string     `json:"title"`
}

// Place is where a quest happens.
type Place struct {
	ID    ResourceID `json:"id"`
	Title string     `json:"title"`
}

// QuestType is a category of quest (bar, setup, ticketing...).
type QuestType struct {
	ID    ResourceID `json:"id"`
	Title string     `json:"title"`
}

// Event is a quest as the calendar widget sees it.
//
// ResourceIDs lists the quest types, then the assigned volunteers, then the
// single place. Ids that match no known resource are kept: the widget simply
// never draws them.
type Event struct {
	ID          ResourceID   `json:"id"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	Title       string       `json:"title"`
	ResourceIDs []ResourceID `json:"resourceIds"`
	AllDay      bool         `json:"allDay"`
	Editable    bool         `json:"editable"`
}

// HasResource reports whether id is one of the event's resources.
func (e Event) HasResource(id ResourceID) bool {
	for _, r := range e.ResourceIDs {
		if r == id {
			return true
		}
	}
	return false
}

// Duration returns End minus Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Resource is one row or lane of the calendar.
// A resource group is a Resource whose Children are set; in flat mode the
// children are spliced into the top-level list and no group is emitted.
type Resource struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Children []Resource `json:"children,omitzero"`
}

// UIState is the page state that drives the visible view.
// ActiveVolunteer is nil when no volunteer filter is applied.
type UIState struct {
	ActiveVolunteer  *Volunteer
	FlattenResources bool
}

// View is the visible slice of the calendar for one UIState.
type View struct {
	Resources []Resource `json:"resources"`
	Events    []Event    `json:"events"`
}

// DateRange is the window the widget shows: a start instant and a whole
// number of days. The widget takes a day count rather than an end date.
type DateRange struct {
	Start time.Time
	Days  int
}

// Duration is the widget's duration option.
type Duration struct {
	Days int `json:"days"`
}

// CalendarOptions is the option record handed to the calendar widget.
type CalendarOptions struct {
	View                      string     `json:"view"`
	Date                      time.Time  `json:"date"`
	Duration                  Duration   `json:"duration"`
	Resources                 []Resource `json:"resources"`
	Events                    []Event    `json:"events"`
	FilterEventsWithResources bool       `json:"filterEventsWithResources"`
}
