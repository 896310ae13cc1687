package main

import (
	"fmt"
	"strings"

	"github.com/rvielma/cultivar"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cultivar",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cultivar version %s\n", strings.TrimSpace(cultivar.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
