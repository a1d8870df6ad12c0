package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

func init() {
	// never expose debug output because of a misconfiguration
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "rental-orchestrator",
		Short:   "Schedules and runs the deferred payment work of rental bookings",
		Version: fmt.Sprintf("%s (%s)", Version, CommitSHA),
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
