package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fras",
	Short: "Face recognition access system",
	Long: `fras enrolls faces under a name and recognizes enrolled people in
camera frames. Descriptors are computed by a face model server and kept in a
local SQLite file (or PostgreSQL/MariaDB when configured).

Recognition results are reported in the log, over HTTP and optionally on
three status LEDs.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
