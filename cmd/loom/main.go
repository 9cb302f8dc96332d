package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Loom - control-plane bridge for collaborative workspaces",
	Long: `Loom is the control-plane bridge of a collaborative workspace:
a JSON-RPC method dispatcher, a room-scoped realtime event gateway,
and an API-key credential service, delivered as a single binary.

External agents (human clients and AI assistants) invoke operations
through the RPC endpoint and receive push notifications over the
realtime channel.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Loom version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(apikeyCmd)
	rootCmd.AddCommand(memberCmd)
}
