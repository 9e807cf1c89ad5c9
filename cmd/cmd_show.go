// cmd_show.go - Show Command
// Hauptfunktionen: ShowHandler
package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenforge/format"
	"github.com/tokenforge/tokenforge/tokenizer"
)

// ShowHandler - Zeigt Eckdaten eines Tokenizer-Artefakts an
func ShowHandler(cmd *cobra.Command, args []string) error {
	path := "tokenizer.json"
	if len(args) > 0 {
		path = args[0]
	}

	t, err := tokenizer.LoadFile(path)
	if err != nil {
		return err
	}

	vocab := t.Vocabulary()

	data := [][]string{
		{"vocab size", format.HumanNumber(uint64(vocab.Size()))},
		{"merge rules", format.HumanNumber(uint64(len(vocab.Merges)))},
		{"pretokenizer", t.Pretokenizer().Version()},
	}
	for i, special := range vocab.Specials {
		label := fmt.Sprintf("special %d", i)
		if int32(i) == vocab.Unknown {
			label += " (unknown)"
		}
		data = append(data, []string{label, special})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	if n, _ := cmd.Flags().GetInt("merges"); n > 0 {
		fmt.Println()

		var rows [][]string
		for rank, m := range vocab.Merges {
			if rank == n {
				break
			}
			rows = append(rows, []string{fmt.Sprint(rank), fmt.Sprintf("%q", m.Left), fmt.Sprintf("%q", m.Right), fmt.Sprintf("%q", m.Left+m.Right)})
		}

		merges := tablewriter.NewWriter(os.Stdout)
		merges.SetHeader([]string{"RANK", "LEFT", "RIGHT", "RESULT"})
		merges.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		merges.SetAlignment(tablewriter.ALIGN_LEFT)
		merges.SetHeaderLine(false)
		merges.SetBorder(false)
		merges.SetNoWhiteSpace(true)
		merges.SetTablePadding("    ")
		merges.AppendBulk(rows)
		merges.Render()
	}

	return nil
}
