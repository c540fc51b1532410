package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeCommand(t *testing.T) {
	root := &cobra.Command{Use: "govwatchd", Short: "daemon"}
	AddHelpJSONFlag(root)

	sub := &cobra.Command{Use: "serve", Short: "start the server"}
	sub.Flags().StringP("port", "p", "8080", "Port to listen on")
	sub.Flags().Bool("no-migrate", false, "Skip migrations")
	root.AddCommand(sub)
	root.AddCommand(&cobra.Command{Use: "secret", Hidden: true})

	doc := DescribeCommand(root)

	assert.Equal(t, "govwatchd", doc.Name)
	require.Len(t, doc.Subcommands, 1)

	serve := doc.Subcommands[0]
	assert.Equal(t, "serve", serve.Name)
	require.Len(t, serve.Flags, 2)
	assert.Equal(t, "port", serve.Flags[0].Name)
	assert.Equal(t, "p", serve.Flags[0].Shorthand)
	assert.Equal(t, "8080", serve.Flags[0].Default)
}

func TestDescribeCommand_OmitsHelpFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "govwatch"}
	AddHelpJSONFlag(cmd)
	cmd.InitDefaultHelpFlag()

	doc := DescribeCommand(cmd)
	for _, f := range doc.Flags {
		assert.NotEqual(t, "help", f.Name)
		assert.NotEqual(t, "help-json", f.Name)
	}
}

func TestResolveCommand(t *testing.T) {
	root := &cobra.Command{Use: "govwatch"}
	check := &cobra.Command{Use: "check <url>"}
	root.AddCommand(check)

	assert.Equal(t, check, resolveCommand(root, []string{"check"}))
	assert.Equal(t, root, resolveCommand(root, []string{"unknown"}))
	assert.Equal(t, root, resolveCommand(root, nil))
}
