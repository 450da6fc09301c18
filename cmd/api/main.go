package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasklight/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tasklight",
		Short: "Tasklight API Server",
		Long:  `Tasklight is a single-user task tracking service: an in-memory task store with sub-tasks, due dates, sorting and transient notifications, served over HTTP for a browser front end.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
