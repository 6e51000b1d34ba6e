package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONUnmarshal(t *testing.T) {
	var u User
	require.NoError(t, JSONUnmarshal([]byte(`{"id":"u1","email":"ada@example.com"}`), &u))
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "ada@example.com", u.Email)

	require.Error(t, JSONUnmarshal([]byte("{not json"), &u))
}

func TestJobInput_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(JobInput{Title: "x"})
	require.NoError(t, err)
	require.Contains(t, string(b), `"required_skills":[]`)

	b, err = json.Marshal(&JobInput{Title: "x", RequiredSkills: []string{"go"}})
	require.NoError(t, err)
	require.Contains(t, string(b), `"required_skills":["go"]`)
	require.NotContains(t, string(b), "salary_min")
}
