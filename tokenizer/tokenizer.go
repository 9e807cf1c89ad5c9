// tokenizer.go - Tokenizer-Modell und Fehler-Definitionen
//
// Dieses Paket implementiert einen Byte-Pair-Encoding Tokenizer:
// - Tokenizer: unveraenderliches Modell aus Vokabular und Pretokenizer
// - Encode/Decode: Text zu Token-IDs und zurueck (encode.go, decode.go)
// - Save/Load: JSON-Artefakt-Persistenz (artifact.go)
//
// Ein Tokenizer ist nach Konstruktion unveraenderlich und damit sicher
// fuer nebenlaeufige Nutzung.
package tokenizer

import (
	"errors"
	"fmt"
)

// Fehler-Definitionen
var (
	// ErrCorruptArtifact wird beim Laden eines inkonsistenten Artefakts zurueckgegeben
	ErrCorruptArtifact = errors.New("corrupt tokenizer artifact")
	// ErrInvalidTokenID wird beim Dekodieren einer ID ausserhalb des Vokabulars zurueckgegeben
	ErrInvalidTokenID = errors.New("invalid token id")
)

// Tokenizer buendelt Vokabular, Merge-Tabelle und Pretokenizer.
// Invarianten:
//   - vocab.Values[id] ist die Oberflaechenform fuer Token-ID id
//   - Special-Tokens belegen die IDs 0..len(vocab.Specials)-1
//   - pre segmentiert beim Encodieren exakt so wie beim Training
//     (die Version wandert mit ins Artefakt)
type Tokenizer struct {
	vocab *Vocabulary
	pre   *Pretokenizer
}

// New erstellt einen Tokenizer aus Vokabular und Pretokenizer-Version
func New(vocab *Vocabulary, pretokenizer string) (*Tokenizer, error) {
	if vocab == nil || len(vocab.Values) == 0 {
		return nil, fmt.Errorf("tokenizer requires a non-empty vocabulary")
	}

	pre, err := NewPretokenizer(pretokenizer)
	if err != nil {
		return nil, err
	}

	return &Tokenizer{vocab: vocab, pre: pre}, nil
}

// Vocabulary gibt das Vokabular zurueck (nur lesen)
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Pretokenizer gibt den Pretokenizer zurueck
func (t *Tokenizer) Pretokenizer() *Pretokenizer {
	return t.pre
}
