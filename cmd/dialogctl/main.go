package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

func main() {
	logger := bootstrapLogger()
	defer logger.Sync()

	root := &cobra.Command{
		Use:   "dialogctl",
		Short: "Operate a content-addressed, versioned triple store",
	}
	root.AddCommand(branchCmd())
	root.AddCommand(cellCmd())
	root.AddCommand(siteCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		zap.L().Sugar().Errorw("command failed", "error", err)
		os.Exit(dialogerr.ExitCode(err))
	}
}
