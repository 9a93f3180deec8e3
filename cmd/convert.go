package cmd

import (
	"fmt"

	"github.com/jsphweid/rstabber/convert"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <in.psarc> <out.gpx>",
	Short: "Converts a PSARC song archive to a GPX tablature file",
	Long:  `Converts a PSARC song archive to a GPX tablature file`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runConvert(args[0], args[1])
	},
}

func runConvert(inputPath, outputPath string) {
	result, err := convert.Convert(inputPath, outputPath, func(stage string, percent int) {
		fmt.Printf("[%3d%%] %s\n", percent, stage)
	})
	cobra.CheckErr(err)

	fmt.Printf("Wrote %s (%d track(s))\n", result.OutputPath, result.TrackCount)
	for _, w := range result.Warnings {
		fmt.Printf("Skipping %v because: %v\n", w.Name, w.Err)
	}
}
