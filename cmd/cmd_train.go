// cmd_train.go - Train Command
// Hauptfunktionen: TrainHandler, readCorpus
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenforge/format"
	"github.com/tokenforge/tokenforge/tokenizer"
	"github.com/tokenforge/tokenforge/trainer"
)

// TrainHandler - Trainiert einen Tokenizer und schreibt das Artefakt
func TrainHandler(cmd *cobra.Command, args []string) error {
	vocabSize, _ := cmd.Flags().GetInt("vocab-size")
	specials, _ := cmd.Flags().GetStringArray("special")
	unknown, _ := cmd.Flags().GetString("unknown")
	minFrequency, _ := cmd.Flags().GetInt("min-frequency")
	pretokenizer, _ := cmd.Flags().GetString("pretokenizer")
	output, _ := cmd.Flags().GetString("output")
	checkpointEvery, _ := cmd.Flags().GetInt("checkpoint-every")

	corpus, err := readCorpus(args)
	if err != nil {
		return err
	}

	cfg := trainer.Config{
		VocabSize:        vocabSize,
		SpecialTokens:    specials,
		UnknownToken:     unknown,
		MinPairFrequency: minFrequency,
		Pretokenizer:     pretokenizer,
	}

	if checkpointEvery > 0 {
		var merges int
		cfg.Checkpoint = func(t *tokenizer.Tokenizer) error {
			merges++
			if merges%checkpointEvery != 0 {
				return nil
			}
			return t.SaveFile(output)
		}
	}

	result, err := trainer.Train(cmd.Context(), trainer.Strings(corpus), cfg)
	if err != nil {
		return err
	}

	if err := result.Tokenizer.SaveFile(output); err != nil {
		return err
	}

	data := [][]string{
		{"vocab size", format.HumanNumber(uint64(result.VocabSize))},
		{"base symbols", format.HumanNumber(uint64(result.BaseSymbols))},
		{"merge rules", format.HumanNumber(uint64(result.MergeCount))},
		{"special tokens", fmt.Sprint(len(result.Tokenizer.Vocabulary().Specials))},
		{"target reached", fmt.Sprint(result.TargetReached)},
		{"stop reason", string(result.StopReason)},
		{"artifact", output},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// readCorpus liest Dokumente zeilenweise aus Dateien oder von stdin
func readCorpus(paths []string) ([]string, error) {
	var docs []string

	readFrom := func(r io.Reader) error {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				docs = append(docs, line)
			}
		}
		return scanner.Err()
	}

	if len(paths) == 0 {
		if err := readFrom(os.Stdin); err != nil {
			return nil, fmt.Errorf("failed to read corpus from stdin: %w", err)
		}
		return docs, nil
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}

		err = readFrom(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
		}
	}

	return docs, nil
}
