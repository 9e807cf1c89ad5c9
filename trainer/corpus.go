// corpus.go - Wort-Aggregation und Symbol-Sequenzierung
//
// Enthaelt:
// - countWords: parallele Wort-Zaehlung ueber den pretokenisierten Korpus
//   mit deterministischer Erst-Auftritts-Reihenfolge
// - arena: Symbol-Arena des entstehenden Vokabulars (Index = Token-ID)
// - buildWords: Woerter als Symbol-ID-Sequenzen mit aggregierten Zaehlern
//
// Special-Oberflaechen werden vor der Zaehlung aus dem Text geschnitten,
// damit sie nie am Merge-Lernen teilnehmen.
package trainer

import (
	"context"
	"iter"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tokenforge/tokenforge/tokenizer"
)

// countChunkSize ist die Dokumentanzahl pro Zaehl-Arbeitspaket
const countChunkSize = 256

// wordCount ist ein dedupliziertes Wort mit aggregiertem Vorkommenszaehler
type wordCount struct {
	surface string
	count   int64
}

// word ist ein Wort als Symbol-ID-Sequenz in die Arena
type word struct {
	syms  []int32
	count int64
}

// splitOutSpecials schneidet Special-Oberflaechen aus dem Text und gibt die
// verbleibenden Abschnitte zurueck
func splitOutSpecials(s string, specials []string) []string {
	parts := []string{s}
	for _, special := range specials {
		var next []string
		for _, part := range parts {
			for piece := range strings.SplitSeq(part, special) {
				if piece != "" {
					next = append(next, piece)
				}
			}
		}
		parts = next
	}

	return parts
}

// countWords pretokenisiert den Korpus und aggregiert identische Woerter zu
// einem gemeinsamen Zaehler. Dokument-Chunks werden parallel gezaehlt; die
// Reduktion laeuft in Dokumentreihenfolge, damit die Erst-Auftritts-Ordnung
// der Woerter (und damit die spaetere ID-Vergabe) deterministisch bleibt.
func countWords(ctx context.Context, corpus iter.Seq[string], pre *tokenizer.Pretokenizer, specials []string, workers int) ([]wordCount, error) {
	var chunks [][]string
	chunk := make([]string, 0, countChunkSize)
	for doc := range corpus {
		chunk = append(chunk, doc)
		if len(chunk) == countChunkSize {
			chunks = append(chunks, chunk)
			chunk = make([]string, 0, countChunkSize)
		}
	}
	if len(chunk) > 0 {
		chunks = append(chunks, chunk)
	}

	partials := make([][]wordCount, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, docs := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			counts := make(map[string]int)
			var ordered []wordCount
			for _, doc := range docs {
				for _, part := range splitOutSpecials(doc, specials) {
					for segment := range pre.Split(part) {
						if at, ok := counts[segment]; ok {
							ordered[at].count++
							continue
						}

						counts[segment] = len(ordered)
						ordered = append(ordered, wordCount{surface: segment, count: 1})
					}
				}
			}

			partials[i] = ordered
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Reduktion in Chunk-Reihenfolge: Summen sind assoziativ und kommutativ,
	// die Reihenfolge bestimmt nur die Erst-Auftritts-Ordnung
	total := make(map[string]int)
	var ordered []wordCount
	for _, partial := range partials {
		for _, wc := range partial {
			if at, ok := total[wc.surface]; ok {
				ordered[at].count += wc.count
				continue
			}

			total[wc.surface] = len(ordered)
			ordered = append(ordered, wc)
		}
	}

	return ordered, nil
}

// arena ist die Symbol-Arena des entstehenden Vokabulars. Der Slice-Index
// ist die Token-ID; Specials belegen die IDs 0..len(specials)-1.
type arena struct {
	values []string
	index  map[string]int32
}

func newArena(specials []string) *arena {
	a := &arena{
		values: make([]string, 0, len(specials)),
		index:  make(map[string]int32, len(specials)),
	}
	for _, special := range specials {
		a.intern(special)
	}

	return a
}

// intern gibt die ID eines Symboltexts zurueck und legt ihn bei Bedarf an
func (a *arena) intern(s string) int32 {
	if id, ok := a.index[s]; ok {
		return id
	}

	id := int32(len(a.values))
	a.values = append(a.values, s)
	a.index[s] = id
	return id
}

func (a *arena) size() int {
	return len(a.values)
}

// buildWords wandelt die gezaehlten Woerter in Symbol-ID-Sequenzen um und
// interniert Basis-Symbole (ein Symbol pro Rune) in Erst-Auftritts-Reihenfolge
func buildWords(a *arena, counts []wordCount) []word {
	words := make([]word, len(counts))
	for i, wc := range counts {
		syms := make([]int32, 0, len(wc.surface))
		for _, r := range wc.surface {
			syms = append(syms, a.intern(string(r)))
		}

		words[i] = word{syms: syms, count: wc.count}
	}

	return words
}
