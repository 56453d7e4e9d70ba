package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RawID is an identifier as it appears in the source export.
// Exports produced by the scheduler use UUID strings; hand-written fixtures
// often use plain integers. Both decode to the same string form.
type RawID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *RawID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RawID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("raw id must be a string or a number: %w", err)
	}
	*id = RawID(n.String())
	return nil
}

// Kind tags which entity a ResourceID refers to.
type Kind uint8

const (
	KindVolunteer Kind = iota + 1
	KindPlace
	KindQuestType
	KindQuest
)

// kindPrefixes holds the wire prefix of every kind. The calendar widget keeps
// resources and events in one flat string id space, so the prefix is what
// keeps a volunteer "1" apart from a place "1" once rendered.
var kindPrefixes = map[Kind]string{
	KindVolunteer: "v_",
	KindPlace:     "p_",
	KindQuestType: "qt_",
	KindQuest:     "q_",
}

// String returns a lowercase name for the kind, used in logs and errors.
func (k Kind) String() string {
	switch k {
	case KindVolunteer:
		return "volunteer"
	case KindPlace:
		return "place"
	case KindQuestType:
		return "quest_type"
	case KindQuest:
		return "quest"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ResourceID identifies one volunteer, place, quest type or quest.
// Two ids are equal only when both Kind and Raw match.
type ResourceID struct {
	Kind Kind
	Raw  RawID
}

// VolunteerID returns the id of the volunteer with the given raw id.
func VolunteerID(raw RawID) ResourceID { return ResourceID{Kind: KindVolunteer, Raw: raw} }

// PlaceID returns the id of the place with the given raw id.
func PlaceID(raw RawID) ResourceID { return ResourceID{Kind: KindPlace, Raw: raw} }

// QuestTypeID returns the id of the quest type with the given raw id.
func QuestTypeID(raw RawID) ResourceID { return ResourceID{Kind: KindQuestType, Raw: raw} }

// QuestID returns the id of the quest with the given raw id.
func QuestID(raw RawID) ResourceID { return ResourceID{Kind: KindQuest, Raw: raw} }

// String renders the id in the widget's namespaced form, e.g. "v_42".
func (id ResourceID) String() string {
	return kindPrefixes[id.Kind] + string(id.Raw)
}

// IsZero reports whether id is the zero ResourceID.
func (id ResourceID) IsZero() bool {
	return id.Kind == 0 && id.Raw == ""
}

// MarshalText implements encoding.TextMarshaler so ids serialise as
// namespaced strings in JSON bodies and map keys.
func (id ResourceID) MarshalText() ([]byte, error) {
	if _, ok := kindPrefixes[id.Kind]; !ok {
		return nil, fmt.Errorf("domain.ResourceID.MarshalText: unknown %s", id.Kind)
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ResourceID) UnmarshalText(b []byte) error {
	parsed, err := ParseResourceID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseResourceID parses a namespaced id such as "qt_3".
// Returns an error wrapping ErrValidation for an unknown prefix or an empty raw part.
func ParseResourceID(s string) (ResourceID, error) {
	for _, k := range []Kind{KindVolunteer, KindPlace, KindQuestType, KindQuest} {
		prefix := kindPrefixes[k]
		if raw, ok := strings.CutPrefix(s, prefix); ok {
			if raw == "" {
				break
			}
			return ResourceID{Kind: k, Raw: RawID(raw)}, nil
		}
	}
	return ResourceID{}, fmt.Errorf("%w: malformed resource id %q", ErrValidation, s)
}
