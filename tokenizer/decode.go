// decode.go - Token-IDs zu Text dekodieren
//
// Dekodieren ist Konkatenation der Oberflaechenformen: Segmente behalten
// beim Encodieren ihr fuehrendes Leerzeichen, dadurch entsteht der
// Wortabstand beim Zusammensetzen von selbst. Die Unknown-ID dekodiert zu
// ihrer Platzhalter-Oberflaeche (z.B. "[UNK]").
package tokenizer

import (
	"fmt"
	"strings"
)

// Decode konvertiert Token-IDs zurueck zu Text. Eine ID ausserhalb von
// [0, Vokabulargroesse) ergibt ErrInvalidTokenID; der Aufruf laesst das
// Modell unveraendert. Leere Eingabe ergibt den leeren String.
func (t *Tokenizer) Decode(ids []int32) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		if id < 0 || int(id) >= len(t.vocab.Values) {
			return "", fmt.Errorf("%w: %d (vocabulary size %d)", ErrInvalidTokenID, id, len(t.vocab.Values))
		}

		sb.WriteString(t.vocab.Values[id])
	}

	return sb.String(), nil
}
