package viewmodel

import "github.com/lbc24/quest-calendar/internal/domain"

// Fixed resource group ids and titles, as the page labels them.
const (
	GroupVolunteers = "volunteers"
	GroupPlaces     = "places"
	GroupQuestTypes = "types"

	titleVolunteers = "Bénévoles"
	titlePlaces     = "Lieux"
	titleQuestTypes = "Types de quêtes"
)

// ComputeView returns the resources and events visible for state.
//
// With an active volunteer, only events listing that volunteer are kept and
// the volunteers category shrinks to that one volunteer. Places and quest
// types are never filtered. With FlattenResources the three categories are
// concatenated without group wrappers.
//
// ComputeView does not modify base and allocates fresh slices on every call,
// so two calls with equal inputs yield equal, independent outputs.
func ComputeView(state domain.UIState, base *Base) domain.View {
	return domain.View{
		Resources: computeResources(state, base),
		Events:    filterEvents(state.ActiveVolunteer, base.Events),
	}
}

func filterEvents(active *domain.Volunteer, events []domain.Event) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if active != nil && !e.HasResource(active.ID) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	return out
}

func cloneEvent(e domain.Event) domain.Event {
	e.ResourceIDs = append([]domain.ResourceID(nil), e.ResourceIDs...)
	return e
}

func computeResources(state domain.UIState, base *Base) []domain.Resource {
	volunteers := volunteerResources(state.ActiveVolunteer, base.Volunteers)
	places := make([]domain.Resource, 0, len(base.Places))
	for _, p := range base.Places {
		places = append(places, domain.Resource{ID: p.ID.String(), Title: p.Title})
	}
	types := make([]domain.Resource, 0, len(base.QuestTypes))
	for _, qt := range base.QuestTypes {
		types = append(types, domain.Resource{ID: qt.ID.String(), Title: qt.Title})
	}

	if state.FlattenResources {
		flat := make([]domain.Resource, 0, len(volunteers)+len(places)+len(types))
		flat = append(flat, volunteers...)
		flat = append(flat, places...)
		return append(flat, types...)
	}
	return []domain.Resource{
		{ID: GroupVolunteers, Title: titleVolunteers, Children: volunteers},
		{ID: GroupPlaces, Title: titlePlaces, Children: places},
		{ID: GroupQuestTypes, Title: titleQuestTypes, Children: types},
	}
}

func volunteerResources(active *domain.Volunteer, index *VolunteerIndex) []domain.Resource {
	if active != nil {
		return []domain.Resource{{ID: active.ID.String(), Title: active.Title}}
	}
	all := index.All()
	out := make([]domain.Resource, 0, len(all))
	for _, v := range all {
		out = append(out, domain.Resource{ID: v.ID.String(), Title: v.Title})
	}
	return out
}
