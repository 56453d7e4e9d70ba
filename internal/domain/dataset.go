// Package domain contains the core data types for the quest calendar.
// This package has no external dependencies and is imported by every other
// internal package (repo, viewmodel, service, handler).
package domain

// Dataset is a decoded scheduler export, exactly as it appears on disk.
// Nothing in it is namespaced or validated yet; the viewmodel package turns
// it into calendar entities.
type Dataset struct {
	Volunteers []RawVolunteer `json:"volunteers"`
	Places     []RawPlace     `json:"places"`
	QuestTypes []RawQuestType `json:"quest_types"`
	Quests     []RawQuest     `json:"quests"`
}

// RawVolunteer is one entry of the export's "volunteers" array.
type RawVolunteer struct {
	ID     RawID  `json:"id"`
	Pseudo string `json:"pseudo"`
}

// RawPlace is one entry of the export's "places" array.
type RawPlace struct {
	ID   RawID  `json:"id"`
	Name string `json:"name"`
}

// RawQuestType is one entry of the export's "quest_types" array.
type RawQuestType struct {
	ID   RawID  `json:"id"`
	Name string `json:"name"`
}

// RawQuest is one scheduled quest. Start and End are ISO 8601 date-times,
// with or without a zone offset.
type RawQuest struct {
	ID         RawID   `json:"id"`
	Name       string  `json:"name"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Place      RawID   `json:"place"`
	Types      []RawID `json:"types"`
	Volunteers []RawID `json:"volunteers"`
}
