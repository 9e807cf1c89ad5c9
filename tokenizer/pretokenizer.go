// pretokenizer.go - Versionierte Wort-Segmentierung
//
// Enthaelt:
// - Pretokenizer: kompilierte, versionierte Regex-Regelsaetze
// - Split/Segments: Zerlegung in Segmente, deren Konkatenation den
//   Eingabetext byte-genau ergibt
//
// Die Segmentierung muss beim Training und beim Encodieren identisch sein,
// deshalb wird die Versionskennung im Artefakt gespeichert.
package tokenizer

import (
	"fmt"
	"iter"
	"slices"

	"github.com/dlclark/regexp2"
)

// DefaultPretokenizer ist die Versionskennung des GPT-2 Byte-Level-Regelsatzes
const DefaultPretokenizer = "default"

// pretokenizers bildet Versionskennungen auf Regex-Regelsaetze ab.
// Die Muster nutzen Lookahead (\s+(?!\S)), damit ein Leerzeichen vor einem
// Wort am Wort haengen bleibt; deshalb regexp2 statt stdlib regexp.
var pretokenizers = map[string][]string{
	DefaultPretokenizer: {
		`'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`,
	},
	"llama-bpe": {
		`(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`,
	},
}

// Pretokenizer segmentiert Rohtext deterministisch in Woerter.
// Zustandslos nach Konstruktion, sicher fuer nebenlaeufige Nutzung.
type Pretokenizer struct {
	version string
	regexps []*regexp2.Regexp
}

// NewPretokenizer kompiliert den Regelsatz der angegebenen Version
func NewPretokenizer(version string) (*Pretokenizer, error) {
	patterns, ok := pretokenizers[version]
	if !ok {
		return nil, fmt.Errorf("unknown pretokenizer version %q (known: %v)", version, PretokenizerVersions())
	}

	regexps := make([]*regexp2.Regexp, len(patterns))
	for i, p := range patterns {
		regexps[i] = regexp2.MustCompile(p, regexp2.RE2)
	}

	return &Pretokenizer{version: version, regexps: regexps}, nil
}

// PretokenizerVersions gibt alle registrierten Versionskennungen sortiert zurueck
func PretokenizerVersions() []string {
	versions := make([]string, 0, len(pretokenizers))
	for v := range pretokenizers {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions
}

// Version gibt die Versionskennung zurueck
func (p *Pretokenizer) Version() string {
	return p.version
}

// Split zerlegt s in Segmente. Nicht gematchte Bereiche werden ebenfalls
// ausgegeben, die Konkatenation aller Segmente ergibt s. Leere Eingabe
// liefert keine Segmente.
func (p *Pretokenizer) Split(s string) iter.Seq[string] {
	parts := []string{s}
	if s == "" {
		parts = nil
	}

	for _, re := range p.regexps {
		parts = slices.Collect(func(yield func(string) bool) {
			for _, part := range parts {
				r := []rune(part)
				var offset int
				for m, _ := re.FindRunesMatch(r); m != nil; m, _ = re.FindNextMatch(m) {
					if m.Index > offset {
						if !yield(string(r[offset:m.Index])) {
							return
						}
					}

					if !yield(m.String()) {
						return
					}

					offset = m.Index + m.Length
				}

				if offset < len(r) {
					if !yield(string(r[offset:])) {
						return
					}
				}
			}
		})
	}

	return slices.Values(parts)
}

// Segments liefert zu jedem Segment zusaetzlich seinen Byte-Offset in s
func (p *Pretokenizer) Segments(s string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		var offset int
		for part := range p.Split(s) {
			if !yield(offset, part) {
				return
			}
			offset += len(part)
		}
	}
}
