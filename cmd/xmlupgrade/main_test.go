package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CognitoIQ/xmlupgrade/internal/testutil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	color.NoColor = true
	var out, diag bytes.Buffer
	err = run(args, strings.NewReader(stdin), &out, &diag)
	return out.String(), diag.String(), err
}

func TestUpgrade(t *testing.T) {
	model := writeFile(t, "model.yaml", testutil.ModelYAML)
	stdout, stderr, err := runCommand(t, testutil.ProfileV1,
		"-model", model, "-entity", "Profile", "-clear", "Profile/Email[2]", "-report")
	require.NoError(t, err, stderr)

	assert.True(t, strings.HasPrefix(stdout,
		`<Profile created="2020-02-02" xmlns="http://example.com/ns/travel/v2">`), stdout)
	assert.Equal(t, 1, strings.Count(stdout, "<Email>"), stdout)
	assert.Contains(t, stdout, "<Nickname>Bobby</Nickname>")

	assert.Contains(t, stderr, "Profile/Name(Profile/Summary.Name) Exact")
	assert.Contains(t, stderr, "Profile/MiddleName(Profile/Summary.MiddleName) Missing")
	assert.Contains(t, stderr, "unused element Legacy")
	assert.Contains(t, stderr, "nodes matched")
}

func TestGenerateNew(t *testing.T) {
	model := writeFile(t, "model.yaml", testutil.ModelYAML)
	out := filepath.Join(t.TempDir(), "payment.xml")
	stdout, stderr, err := runCommand(t, "",
		"-model", model, "-entity", "Payment", "-new", "-prefer", "Payment=Cash", "-o", out)
	require.NoError(t, err, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Payment_Cash")
	assert.Contains(t, string(data), "<Amount>")
}

func TestConfigFile(t *testing.T) {
	model := writeFile(t, "model.yaml", testutil.ModelYAML)
	config := writeFile(t, "config.yaml", "maxRepeat: 1\npreferredFacets:\n  Profile: Detail\n")

	stdout, stderr, err := runCommand(t, "", "-model", model, "-config", config, "-entity", "Profile", "-new")
	require.NoError(t, err, stderr)
	assert.True(t, strings.HasPrefix(stdout, "<ProfileDetail"), stdout)
	assert.Equal(t, 1, strings.Count(stdout, "<Phone>"))

	// flags take precedence over the file
	stdout, stderr, err = runCommand(t, "",
		"-model", model, "-config", config, "-max-repeat", "2", "-prefer", "Profile=Summary", "-entity", "Profile", "-new")
	require.NoError(t, err, stderr)
	assert.True(t, strings.HasPrefix(stdout, "<Profile "), stdout)
	assert.Equal(t, 2, strings.Count(stdout, "<Email>"))
}

func TestDiff(t *testing.T) {
	model := writeFile(t, "model.yaml", testutil.ModelYAML)
	original := writeFile(t, "profile.xml", testutil.ProfileV1)
	_, stderr, err := runCommand(t, "", "-model", model, "-entity", "Profile/Summary", "-diff", original)
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "+++ upgraded")
	assert.Contains(t, stderr, "<Legacy>dropped</Legacy>")
}

func TestVerbose(t *testing.T) {
	model := writeFile(t, "model.yaml", testutil.ModelYAML)
	_, stderr, err := runCommand(t, testutil.ProfileV1, "-model", model, "-entity", "Profile", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "built Profile/Summary")
}

func TestErrors(t *testing.T) {
	model := writeFile(t, "model.yaml", testutil.ModelYAML)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-entity", "Profile"}, "Usage"},
		{[]string{"-model", model}, "Usage"},
		{[]string{"-model", model, "-entity", "Profile", "-new", "file.xml"}, "Usage"},
		{[]string{"-model", model, "-entity", "Nobody", "-new"}, `no entity "Nobody"`},
		{[]string{"-model", model, "-entity", "Profile", "-new", "-clear", "Profile/Nothing"}, "no node at Profile/Nothing"},
		{[]string{"-model", model, "-entity", "Profile", "-new", "-regen", "Profile/Nothing"}, "no node at Profile/Nothing"},
		{[]string{"-model", model, "-entity", "Profile", "-config", "/nonexistent/config.yaml", "-new"}, "open config"},
		{[]string{"-model", model, "-entity", "Profile", "-prefer", "Profile"}, "invalid pair"},
		{[]string{"-model", model, "-entity", "Profile"}, "parse original document"},
	}
	for _, tt := range tests {
		_, _, err := runCommand(t, "<unclosed>", tt.args...)
		if assert.Error(t, err, tt.args) {
			assert.Contains(t, err.Error(), tt.want, tt.args)
		}
	}
}
