// artifact.go - Artefakt-Persistenz (Speichern und Laden)
//
// Enthaelt:
// - Save/SaveFile: schreibt das Modell als JSON-Artefakt
// - Load/LoadFile: laedt und validiert ein Artefakt
//
// Das Artefakt traegt die Pretokenizer-Version, damit ein geladener
// Tokenizer garantiert identisch segmentiert wie beim Training. Ein
// inkonsistentes Artefakt ergibt ErrCorruptArtifact.
package tokenizer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// artifact ist das persistierte JSON-Format. vocab, merges, special_tokens
// und pretokenizer_version sind Pflichtfelder; unknown_token benennt die
// Oberflaeche des reservierten Unknown-Tokens innerhalb der Specials.
// unknown_token ist optional: fehlt es, verwirft Encode Symbole ausserhalb
// des Vokabulars, statt sie durch eine Unknown-ID zu ersetzen.
type artifact struct {
	Vocab               map[string]int32 `json:"vocab"`
	Merges              [][]string       `json:"merges"`
	SpecialTokens       []string         `json:"special_tokens"`
	UnknownToken        string           `json:"unknown_token,omitempty"`
	PretokenizerVersion string           `json:"pretokenizer_version"`
}

// Save schreibt das Modell als JSON-Artefakt nach w
func (t *Tokenizer) Save(w io.Writer) error {
	a := artifact{
		Vocab:               make(map[string]int32, len(t.vocab.Values)),
		Merges:              make([][]string, len(t.vocab.Merges)),
		SpecialTokens:       t.vocab.Specials,
		PretokenizerVersion: t.pre.Version(),
	}

	for id, value := range t.vocab.Values {
		a.Vocab[value] = int32(id)
	}

	for i, m := range t.vocab.Merges {
		a.Merges[i] = []string{m.Left, m.Right}
	}

	if t.vocab.Unknown >= 0 {
		a.UnknownToken = t.vocab.Values[t.vocab.Unknown]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to write tokenizer artifact: %w", err)
	}

	return nil
}

// SaveFile schreibt das Artefakt in eine Datei
func (t *Tokenizer) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tokenizer artifact: %w", err)
	}
	defer f.Close()

	return t.Save(f)
}

// Load liest und validiert ein JSON-Artefakt. Validiert werden:
// eindeutige, lueckenlose IDs ab 0, nicht-leere Specials exakt auf den IDs
// 0..len(specials)-1 in Artefakt-Reihenfolge, Unknown-Token unter den
// Specials sowie Merge-Regeln, die nur bekannte Symbole referenzieren und
// deren Ergebnis im Vokabular existiert.
func Load(r io.Reader) (*Tokenizer, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}

	if len(a.Vocab) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrCorruptArtifact)
	}

	// IDs muessen eindeutig und lueckenlos von 0 an vergeben sein
	values := make([]string, len(a.Vocab))
	seen := make([]bool, len(a.Vocab))
	for symbol, id := range a.Vocab {
		if id < 0 || int(id) >= len(values) {
			return nil, fmt.Errorf("%w: token id %d out of range [0, %d)", ErrCorruptArtifact, id, len(values))
		}

		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate token id %d", ErrCorruptArtifact, id)
		}

		seen[id] = true
		values[id] = symbol
	}

	// Specials belegen den reservierten Bereich 0..k-1 in fester Reihenfolge
	for i, special := range a.SpecialTokens {
		if special == "" {
			return nil, fmt.Errorf("%w: special token at reserved id %d is empty", ErrCorruptArtifact, i)
		}

		if i >= len(values) || values[i] != special {
			return nil, fmt.Errorf("%w: special token %q not at reserved id %d", ErrCorruptArtifact, special, i)
		}
	}

	unknown := int32(-1)
	if a.UnknownToken != "" {
		for i, special := range a.SpecialTokens {
			if special == a.UnknownToken {
				unknown = int32(i)
				break
			}
		}
		if unknown < 0 {
			return nil, fmt.Errorf("%w: unknown token %q is not a special token", ErrCorruptArtifact, a.UnknownToken)
		}
	}

	vocab := &Vocabulary{
		Values:   values,
		Merges:   make([]MergePair, len(a.Merges)),
		Specials: a.SpecialTokens,
		Unknown:  unknown,
	}

	for i, m := range a.Merges {
		if len(m) != 2 {
			return nil, fmt.Errorf("%w: merge rule %d has %d symbols, expected 2", ErrCorruptArtifact, i, len(m))
		}

		for _, symbol := range m {
			if _, ok := a.Vocab[symbol]; !ok {
				return nil, fmt.Errorf("%w: merge rule %d references unknown symbol %q", ErrCorruptArtifact, i, symbol)
			}
		}

		if _, ok := a.Vocab[m[0]+m[1]]; !ok {
			return nil, fmt.Errorf("%w: merge rule %d result %q missing from vocabulary", ErrCorruptArtifact, i, m[0]+m[1])
		}

		vocab.Merges[i] = MergePair{Left: m[0], Right: m[1]}
	}

	t, err := New(vocab, a.PretokenizerVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}

	return t, nil
}

// LoadFile laedt ein Artefakt aus einer Datei
func LoadFile(path string) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer artifact: %w", err)
	}
	defer f.Close()

	return Load(f)
}
