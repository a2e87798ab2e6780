package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "emotionctl",
	Short:         "MetaMind Emotion API command line client",
	Long:          `Scores emotion distributions locally and sends images to a running MetaMind server`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.Version = "1.0.0"

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newAnalyzeCmd())

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		mode, _ := cmd.Flags().GetString("color")
		return applyColorMode(mode)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColorMode(mode string) error {
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return errInvalidColorMode(mode)
	}
	return nil
}
