package views

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"school-activities/models"
)

type testRoutes struct{}

func (testRoutes) UnregisterAction(activity string) string {
	return "/activities/" + url.PathEscape(activity) + "/unregister"
}

func decodeCatalog(t *testing.T, body string) *models.Catalog {
	t.Helper()
	var c models.Catalog
	require.NoError(t, json.Unmarshal([]byte(body), &c))
	return &c
}

func TestBuildList_ChessExample(t *testing.T) {
	catalog := decodeCatalog(t, `{"Chess": {"description": "d", "schedule": "s", "max_participants": 2, "participants": ["a@x.com"]}}`)

	list := BuildList(catalog, testRoutes{})
	require.False(t, list.Failed)
	require.Len(t, list.Cards, 1)

	card := list.Cards[0]
	assert.Equal(t, "Chess", card.Name)
	assert.Equal(t, "d", card.Description)
	assert.Equal(t, "s", card.Schedule)
	assert.Equal(t, 1, card.SpotsLeft)
	assert.Empty(t, card.EmptyText)
	assert.Equal(t, []ParticipantView{
		{Email: "a@x.com", Initials: "AX", RemoveAction: "/activities/Chess/unregister"},
	}, card.Participants)
}

func TestBuildList_SpotsLeftForEveryActivity(t *testing.T) {
	catalog := decodeCatalog(t, `{
	  "A": {"max_participants": 3, "participants": []},
	  "B": {"max_participants": 2, "participants": ["x@y.z", "x@y.z"]},
	  "C": {"max_participants": 1, "participants": ["p@q.r", "s@t.u"]}
	}`)

	list := BuildList(catalog, testRoutes{})
	require.Len(t, list.Cards, catalog.Len())
	for i, a := range catalog.Activities {
		assert.Equal(t, a.Name, list.Cards[i].Name)
		assert.Equal(t, a.MaxParticipants-len(a.Participants), list.Cards[i].SpotsLeft)
	}
	assert.Len(t, list.Cards[1].Participants, 2, "duplicates are kept")
}

func TestBuildList_EmptyRoster(t *testing.T) {
	catalog := decodeCatalog(t, `{"Art": {"max_participants": 5, "participants": []}}`)

	card := BuildList(catalog, testRoutes{}).Cards[0]
	assert.Nil(t, card.Participants)
	assert.Equal(t, EmptyRosterText, card.EmptyText)
}

func TestBuildList_NilCatalog(t *testing.T) {
	list := BuildList(nil, testRoutes{})
	assert.False(t, list.Failed)
	assert.Empty(t, list.Cards)
}

func TestBuildList_EscapesActionPath(t *testing.T) {
	catalog := decodeCatalog(t, `{"Chess Club/Adv": {"max_participants": 2, "participants": ["a@x.com"]}}`)

	card := BuildList(catalog, testRoutes{}).Cards[0]
	assert.Equal(t, "/activities/Chess%20Club%2FAdv/unregister", card.Participants[0].RemoveAction)
}

func TestFailedList(t *testing.T) {
	list := FailedList()
	assert.True(t, list.Failed)
	assert.Equal(t, FailedListText, list.FailureText)
	assert.Empty(t, list.Cards)
}

func TestBuildOptions(t *testing.T) {
	catalog := decodeCatalog(t, `{
	  "Soccer": {"max_participants": 3, "participants": []},
	  "Chess Club": {"max_participants": 2, "participants": []},
	  "Art": {"max_participants": 1, "participants": []}
	}`)

	options := BuildOptions(catalog)
	require.Len(t, options, catalog.Len())
	for i, name := range catalog.Names() {
		assert.Equal(t, name, options[i].Value)
		assert.Equal(t, name, options[i].Label)
	}
	assert.Empty(t, BuildOptions(nil))
}

func TestNewNotice_HidesAfterFiveSeconds(t *testing.T) {
	for _, kind := range []string{NoticeSuccess, NoticeError} {
		n := NewNotice(kind, "text")
		assert.Equal(t, int64(5000), n.HideAfterMs)
		assert.Equal(t, kind, n.Kind)
	}
}
