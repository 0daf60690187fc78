// file: models/participant_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"a@x.com", "AX"},
		{"john.doe@school.edu", "JD"},
		{"michael@mergington.edu", "MM"},
		{"emma_smith@x.io", "EX"},
		{"olivia", "O"},
		{"12345@678.90", "12"}, // no letters at a word start: first two characters
		{"99@88.77", "99"},
		{"9", "9"},
		{"", ""},
		{"élodie.ünal@ecole.fr", "ÉÜ"},
		{"x2y@z", "XY"},
		{"2john@x.com", "JX"},
		{"1st.grader@school.edu", "SG"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.email))
		})
	}
}
