package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "worksheet",
	Short: "Printable practice worksheets for elementary school",
	Long: `worksheet generates printable practice sheets: arithmetic drills built
locally or by an LLM, and AI-generated Hanja and English exercises.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides db.path and WORKSHEET_DB)")
	pf.String("config", "", "Config file (default ./worksheet.yaml or ~/.worksheet/config.yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.String("log-format", "", "Log format: text or json (overrides log.format)")

	rootCmd.AddCommand(mathCmd)
	rootCmd.AddCommand(hanjaCmd)
	rootCmd.AddCommand(englishCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}
