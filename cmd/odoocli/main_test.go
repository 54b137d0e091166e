package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsConfig(t *testing.T) {
	root := &cobra.Command{Use: "odoocli"}
	bulk := bulkCmd()
	help := &cobra.Command{Use: "help"}
	completion := &cobra.Command{Use: "completion"}
	bash := &cobra.Command{Use: "bash"}
	completion.AddCommand(bash)
	root.AddCommand(bulk, help, completion)

	tests := []struct {
		cmd  *cobra.Command
		want bool
	}{
		{root, true},
		{bulk, true},
		{help, false},
		{completion, false},
		{bash, false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.CommandPath(), func(t *testing.T) {
			if got := needsConfig(tt.cmd); got != tt.want {
				t.Errorf("needsConfig(%s) = %v, want %v", tt.cmd.CommandPath(), got, tt.want)
			}
		})
	}
}

func TestInitFileLogger(t *testing.T) {
	dir := t.TempDir()

	logger, err := initFileLogger(filepath.Join(dir, "odoocli.log"), "info")
	require.NoError(t, err)
	logger.Info("started")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(filepath.Join(dir, "odoocli.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"started"`)
}

func TestInitFileLogger_MissingDirectory(t *testing.T) {
	_, err := initFileLogger(filepath.Join(t.TempDir(), "missing", "odoocli.log"), "info")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
