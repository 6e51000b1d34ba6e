package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guarzo/talentiq/common/model"
)

func TestParseJobInput(t *testing.T) {
	in, err := parseJobInput("jobs create", []string{
		"-title", "Go Engineer", "-skills", "go, sql,,", "-salary-max", "0", "-remote",
	})
	require.NoError(t, err)
	require.Equal(t, "Go Engineer", in.Title)
	require.Equal(t, []string{"go", "sql"}, in.RequiredSkills)
	require.True(t, in.Remote)
	require.Nil(t, in.SalaryMin)
	require.NotNil(t, in.SalaryMax)
	require.Equal(t, 0, *in.SalaryMax)

	_, err = parseJobInput("jobs create", []string{"-bogus"})
	require.Error(t, err)
}

func TestHelpers(t *testing.T) {
	_, err := firstArg("jobs get", nil)
	require.ErrorContains(t, err, "jobs get: missing argument")

	require.Equal(t, "unknown user", userLabel(nil))
	require.Equal(t, "Ada <ada@example.com> (recruiter)", userLabel(&model.User{Name: "Ada", Email: "ada@example.com", Role: "recruiter"}))
	require.Equal(t, "unknown", formatExpiry(time.Time{}))

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}))
	require.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestEmbeddingsSubcommands(t *testing.T) {
	a := &app{}
	require.ErrorContains(t, a.embeddings(context.Background(), nil), "missing subcommand")
	require.ErrorContains(t, a.embeddings(context.Background(), []string{"bogus"}), `unknown subcommand "bogus"`)
}
