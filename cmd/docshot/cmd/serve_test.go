package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_Flags(t *testing.T) {
	cmd := GetServeCommand()
	require.NotNil(t, cmd)
	for _, name := range []string{
		"host", "port", "cors-origin", "max-upload-size",
		"timeout", "shutdown-timeout", "overlay-enable",
		"working-width", "budget-ms",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestServeCommand_InvalidPort(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"serve", "--port", "70000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port number")
}
