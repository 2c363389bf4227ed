package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryNormalization(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Category
	}{
		{"string", `"Sports"`, "Sports"},
		{"trimmed string", `"  Arts "`, "Arts"},
		{"list keeps first", `["Sports","Outdoors"]`, "Sports"},
		{"list skips blanks", `["", " ", "Music"]`, "Music"},
		{"empty list", `[]`, ""},
		{"null", `null`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Category
			require.NoError(t, json.Unmarshal([]byte(tc.in), &c))
			assert.Equal(t, tc.want, c)
		})
	}
}

func TestCategoryRejectsObjects(t *testing.T) {
	var c Category
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &c))
	assert.Error(t, json.Unmarshal([]byte(`12`), &c))
}

func TestCategoryInsideRequestBody(t *testing.T) {
	var req struct {
		Name     string   `json:"name"`
		Category Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Hoops","category":["Basketball","Sports"]}`), &req))
	assert.Equal(t, "Basketball", req.Category.String())
}

func TestIsRealClub(t *testing.T) {
	assert.False(t, IsRealClub(""))
	assert.False(t, IsRealClub(ClubNone))
	assert.False(t, IsRealClub(ClubPending))
	assert.True(t, IsRealClub("Chess Club"))
}
