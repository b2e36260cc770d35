package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/surprise/cmd/cli/reasons"
	"github.com/myrjola/surprise/cmd/cli/walk"
	"github.com/myrjola/surprise/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(walk.Group)
	rootCmd.AddCommand(walk.Command)
	rootCmd.AddGroup(reasons.Group)
	rootCmd.AddCommand(reasons.List)
}

var rootCmd = &cobra.Command{
	Use:  "surprise-cli",
	Long: `Command line companion for the surprise reveal wizard`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
