// cmd_encode.go - Encode und Decode Commands
// Hauptfunktionen: EncodeHandler, DecodeHandler
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenforge/tokenizer"
)

// EncodeHandler - Encodiert Text zu Token-IDs
func EncodeHandler(cmd *cobra.Command, args []string) error {
	model, _ := cmd.Flags().GetString("model")
	t, err := tokenizer.LoadFile(model)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read text from stdin: %w", err)
		}
		text = string(data)
	}

	ids, err := t.Encode(text)
	if err != nil {
		return err
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(int(id))
	}

	fmt.Println(strings.Join(out, " "))
	return nil
}

// DecodeHandler - Dekodiert Token-IDs zu Text
func DecodeHandler(cmd *cobra.Command, args []string) error {
	model, _ := cmd.Flags().GetString("model")
	t, err := tokenizer.LoadFile(model)
	if err != nil {
		return err
	}

	ids := make([]int32, 0, len(args))
	for _, arg := range args {
		// Auch durch Leerzeichen getrennte Listen in einem Argument erlauben
		for _, field := range strings.Fields(arg) {
			id, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid token id %q: %w", field, err)
			}
			ids = append(ids, int32(id))
		}
	}

	text, err := t.Decode(ids)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}
