// Package views turns a catalog snapshot into the view tree the page templates render.
// Everything here is a pure function of its inputs.
package views

import (
	"school-activities/models"
)

const (
	// EmptyRosterText is shown in place of an empty participant list.
	EmptyRosterText = "No participants yet"

	// FailedListText replaces the activity list when the catalog cannot be loaded.
	FailedListText = "Failed to load activities. Please try again later."

	// PlaceholderOption is the disabled first entry of the activity dropdown.
	PlaceholderOption = "-- Select an activity --"
)

// Routes supplies the action URLs attached to interactive elements.
type Routes interface {
	UnregisterAction(activity string) string
}

// ListView is the content of #activities-list.
type ListView struct {
	Failed      bool
	FailureText string
	Cards       []Card
}

// Card is one activity block.
type Card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []ParticipantView
	EmptyText    string
}

// ParticipantView is one roster entry with its remove control.
type ParticipantView struct {
	Email        string
	Initials     string
	RemoveAction string
}

// Option is one entry of the #activity dropdown.
type Option struct {
	Value string
	Label string
}

// BuildList renders every activity of catalog, in catalog order.
func BuildList(catalog *models.Catalog, routes Routes) ListView {
	cards := make([]Card, 0, catalog.Len())
	if catalog == nil {
		return ListView{Cards: cards}
	}

	for _, a := range catalog.Activities {
		card := Card{
			Name:        a.Name,
			Description: a.Description,
			Schedule:    a.Schedule,
			SpotsLeft:   a.SpotsLeft(),
		}
		if len(a.Participants) == 0 {
			card.EmptyText = EmptyRosterText
		} else {
			action := routes.UnregisterAction(a.Name)
			card.Participants = make([]ParticipantView, 0, len(a.Participants))
			for _, email := range a.Participants {
				card.Participants = append(card.Participants, ParticipantView{
					Email:        email,
					Initials:     models.Initials(email),
					RemoveAction: action,
				})
			}
		}
		cards = append(cards, card)
	}
	return ListView{Cards: cards}
}

// FailedList is the list shown when the catalog fetch failed.
func FailedList() ListView {
	return ListView{Failed: true, FailureText: FailedListText}
}

// BuildOptions returns one dropdown option per activity. The placeholder is not part
// of the result; templates always render it first.
func BuildOptions(catalog *models.Catalog) []Option {
	options := make([]Option, 0, catalog.Len())
	for _, name := range catalog.Names() {
		options = append(options, Option{Value: name, Label: name})
	}
	return options
}
