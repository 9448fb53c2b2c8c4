package commandline

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	var (
		prefer KeyValue
		paths  Strings
	)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&prefer, "prefer", "")
	fs.Var(&paths, "clear", "")

	err := fs.Parse([]string{
		"-prefer", "Profile=Detail",
		"-clear", "Profile/Name",
		"-prefer", " Payment = Cash ",
		"-clear", "Profile/@status",
		"-prefer", "Profile=Summary",
	})
	require.NoError(t, err)
	assert.Equal(t, KeyValue{"Profile": "Summary", "Payment": "Cash"}, prefer)
	assert.Equal(t, "Payment=Cash,Profile=Summary", prefer.String())
	assert.Equal(t, Strings{"Profile/Name", "Profile/@status"}, paths)
	assert.Equal(t, "Profile/Name,Profile/@status", paths.String())

	for _, bad := range []string{"Profile", "=Detail", "Profile="} {
		assert.Error(t, fs.Parse([]string{"-prefer", bad}), bad)
	}
}

func TestCount(t *testing.T) {
	var verbose Count
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&verbose, "v", "")

	require.NoError(t, fs.Parse([]string{"-v", "-v", "-v", "file.xml"}))
	assert.Equal(t, Count(3), verbose)
	assert.Equal(t, []string{"file.xml"}, fs.Args())

	require.NoError(t, fs.Parse([]string{"-v=false"}))
	assert.Equal(t, Count(0), verbose)
	assert.Error(t, fs.Parse([]string{"-v=often"}))
}
