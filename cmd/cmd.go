// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenforge/envconfig"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// envVars gibt die dokumentierten Umgebungsvariablen in fester Reihenfolge zurueck
func envVars(names ...string) []envconfig.EnvVar {
	all := envconfig.AsMap()
	envs := make([]envconfig.EnvVar, 0, len(names))
	for _, n := range names {
		envs = append(envs, all[n])
	}

	return envs
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "tokenforge",
		Short:         "Train and run byte pair encoding tokenizers",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetLogLoggerLevel(envconfig.LogLevel())
		},
	}

	trainCmd := &cobra.Command{
		Use:   "train [CORPUS...]",
		Short: "Train a tokenizer on text files (one document per line, stdin if no files)",
		RunE:  TrainHandler,
	}
	trainCmd.Flags().Int("vocab-size", 4096, "Target vocabulary size")
	trainCmd.Flags().StringArray("special", []string{"[PAD]", "[UNK]"}, "Special tokens in reserved id order")
	trainCmd.Flags().String("unknown", "[UNK]", "Surface form of the unknown token")
	trainCmd.Flags().Int("min-frequency", 2, "Minimum pair frequency for a merge")
	trainCmd.Flags().String("pretokenizer", "default", "Pretokenizer rule set version")
	trainCmd.Flags().StringP("output", "o", "tokenizer.json", "Output artifact path")
	trainCmd.Flags().Int("checkpoint-every", 0, "Write the artifact after every N merges (0 disables)")

	encodeCmd := &cobra.Command{
		Use:   "encode TEXT...",
		Short: "Encode text to token ids (stdin if no text)",
		RunE:  EncodeHandler,
	}
	encodeCmd.Flags().StringP("model", "m", "tokenizer.json", "Tokenizer artifact path")

	decodeCmd := &cobra.Command{
		Use:   "decode ID...",
		Short: "Decode token ids back to text",
		Args:  cobra.MinimumNArgs(1),
		RunE:  DecodeHandler,
	}
	decodeCmd.Flags().StringP("model", "m", "tokenizer.json", "Tokenizer artifact path")

	showCmd := &cobra.Command{
		Use:   "show [ARTIFACT]",
		Short: "Show information about a tokenizer artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ShowHandler,
	}
	showCmd.Flags().Int("merges", 0, "List the first N merge rules")

	for _, cmd := range []*cobra.Command{trainCmd, encodeCmd, decodeCmd, showCmd} {
		appendEnvDocs(cmd, envVars("TOKENFORGE_DEBUG", "TOKENFORGE_NUM_PARALLEL"))
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}
