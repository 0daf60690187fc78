// Package models defines data structures used across the application.
// File: models/activity.go
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ----------------------- activity model -----------------------

// Activity is one entry of the catalog. Name is the catalog key and doubles as the
// API identifier.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns how many places remain. It is negative when the backend
// has over-subscribed the activity.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// ----------------------- catalog model -----------------------

// ErrMalformedCatalog marks a catalog body that does not match the expected schema.
var ErrMalformedCatalog = errors.New("malformed activity catalog")

// Catalog is the whole activity list as returned by GET /activities, in the order
// the keys appear in the response body.
type Catalog struct {
	Activities []Activity
}

// Len returns the number of activities.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Activities)
}

// Names returns activity names in catalog order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Activities))
	for _, a := range c.Activities {
		names = append(names, a.Name)
	}
	return names
}

// Find looks an activity up by name.
func (c *Catalog) Find(name string) (Activity, bool) {
	if c == nil {
		return Activity{}, false
	}
	for _, a := range c.Activities {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// wireActivity mirrors the JSON shape with pointers so missing fields can be told apart
// from zero values.
type wireActivity struct {
	Description     *string   `json:"description"`
	Schedule        *string   `json:"schedule"`
	MaxParticipants *int      `json:"max_participants"`
	Participants    *[]string `json:"participants"`
}

// UnmarshalJSON decodes the name -> activity object while keeping key order and
// validating every entry. Any schema violation wraps ErrMalformedCatalog.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrMalformedCatalog)
	}

	activities := make([]Activity, 0)
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected an activity name", ErrMalformedCatalog)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: activity %q: %v", ErrMalformedCatalog, name, err)
		}
		activity, err := decodeActivity(name, raw)
		if err != nil {
			return err
		}

		// duplicate keys: last value wins, first position is kept
		if i, seen := index[name]; seen {
			activities[i] = activity
			continue
		}
		index[name] = len(activities)
		activities = append(activities, activity)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after catalog", ErrMalformedCatalog)
	}

	c.Activities = activities
	return nil
}

func decodeActivity(name string, raw json.RawMessage) (Activity, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Activity{}, fmt.Errorf("%w: activity %q is not an object", ErrMalformedCatalog, name)
	}

	var w wireActivity
	if err := json.Unmarshal(raw, &w); err != nil {
		return Activity{}, fmt.Errorf("%w: activity %q: %v", ErrMalformedCatalog, name, err)
	}
	if w.MaxParticipants == nil {
		return Activity{}, fmt.Errorf("%w: activity %q has no max_participants", ErrMalformedCatalog, name)
	}
	if *w.MaxParticipants < 0 {
		return Activity{}, fmt.Errorf("%w: activity %q has negative max_participants", ErrMalformedCatalog, name)
	}
	if w.Participants == nil {
		return Activity{}, fmt.Errorf("%w: activity %q has no participants list", ErrMalformedCatalog, name)
	}

	a := Activity{
		Name:            name,
		MaxParticipants: *w.MaxParticipants,
		Participants:    *w.Participants,
	}
	if w.Description != nil {
		a.Description = *w.Description
	}
	if w.Schedule != nil {
		a.Schedule = *w.Schedule
	}
	return a, nil
}

// MarshalJSON writes the catalog back as a name -> activity object in catalog order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c.Activities {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		val, err := json.Marshal(Activity{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
