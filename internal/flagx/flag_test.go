package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs_SeparateAndCombinedForms(t *testing.T) {
	args := []string{"-a", "http://localhost:8080", "-x", "junk", "--config=conf.json", "-t", "15"}

	got := FilterArgs(args, []string{"-a", "--config"})
	assert.Equal(t, []string{"-a", "http://localhost:8080", "--config=conf.json"}, got)
}

func TestFilterArgs_FlagWithoutValue(t *testing.T) {
	args := []string{"-v", "-a", "addr"}

	got := FilterArgs(args, []string{"-v"})
	assert.Equal(t, []string{"-v"}, got)
}

func TestFilterArgs_EmptyInput(t *testing.T) {
	got := FilterArgs(nil, []string{"-a"})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestJsonConfigFlags_ShortAndLong(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cli", "-c", "short.json"}
	assert.Equal(t, "short.json", JsonConfigFlags())

	os.Args = []string{"cli", "--config=long.json"}
	assert.Equal(t, "long.json", JsonConfigFlags())

	os.Args = []string{"cli", "-a", "addr"}
	assert.Equal(t, "", JsonConfigFlags())
}
