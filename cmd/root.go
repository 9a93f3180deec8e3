// Package cmd wires the cobra CLI: a convert subcommand running the
// pipeline once against a file pair, and a serve subcommand exposing it
// over HTTP.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rstabber",
	Short: "Rocksmith PSARC to Guitar Pro GPX converter",
	Long:  `rstabber converts a Rocksmith 2014 .psarc song archive into a Guitar Pro 6 .gpx tablature file.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
