// encode.go - Text zu Token-IDs encodieren
//
// Enthaelt:
// - Encode: Special-Token-Aufteilung, Segmentierung, Merge-Anwendung
// - encodeSegment: Heap-gesteuerter Merge-Loop ueber eine verkettete
//   Symbolliste (niedrigster Merge-Rang zuerst)
//
// Encodieren schlaegt nie fehl: Symbole ausserhalb des Vokabulars fallen
// auf die reservierte Unknown-ID zurueck. Traegt das Modell keine
// Unknown-ID (Artefakt ohne unknown_token), werden solche Symbole
// verworfen und die Ausgabe kann fuer nicht-leere Eingabe leer sein.
package tokenizer

import (
	"cmp"
	"log/slog"
	"strings"

	heap "github.com/emirpasic/gods/v2/trees/binaryheap"
)

// fragment ist ein Textabschnitt mit ggf. bereits festen Token-IDs
type fragment struct {
	value string
	ids   []int32
}

// rankedPair ist ein Merge-Kandidat zweier benachbarter Symbolknoten
type rankedPair struct {
	a, b  int
	rank  int32
	value string
}

// symbolNode ist ein Knoten der doppelt verketteten Symbolliste eines Segments
type symbolNode struct {
	prev, next int
	text       string
}

// Encode konvertiert Text in Token-IDs. Special-Oberflaechen werden als
// exakte Teilstrings erkannt und direkt auf ihre reservierten IDs
// abgebildet, ohne die Merge-Regeln zu durchlaufen. Leere Eingabe ergibt
// eine leere Sequenz.
func (t *Tokenizer) Encode(s string) ([]int32, error) {
	fragments := []fragment{{value: s}}
	for _, special := range t.vocab.Specials {
		// Eine leere Oberflaeche matcht an jeder Position und wuerde das
		// Splitting nie beenden
		if special == "" {
			continue
		}

		id := t.vocab.SpecialID(special)
		for i := 0; i < len(fragments); i++ {
			frag := fragments[i]
			if len(frag.ids) > 0 {
				continue
			}

			var middle []fragment
			switch idx := strings.Index(frag.value, special); {
			case idx < 0:
				middle = append(middle, frag)
			case idx > 0:
				middle = append(middle, fragment{value: frag.value[:idx]})
				fallthrough
			default:
				middle = append(middle, fragment{value: special, ids: []int32{id}})
				if rest := frag.value[idx+len(special):]; rest != "" {
					middle = append(middle, fragment{value: rest})
				}
			}

			fragments = append(fragments[:i], append(middle, fragments[i+1:]...)...)
		}
	}

	ids := []int32{}
	for _, frag := range fragments {
		if len(frag.ids) > 0 {
			ids = append(ids, frag.ids...)
			continue
		}

		for segment := range t.pre.Split(frag.value) {
			ids = t.encodeSegment(segment, ids)
		}
	}

	slog.Debug("encoded", "text", s, "ids", ids)
	return ids, nil
}

// encodeSegment haengt die Token-IDs eines Segments an ids an.
// Strategie: wiederholt das im Segment vorhandene Paar mit dem niedrigsten
// Merge-Rang zusammenfassen, bis kein bekanntes Paar mehr existiert.
// Das entspricht der Wiedergabe der Regeln in Lernreihenfolge.
func (t *Tokenizer) encodeSegment(segment string, ids []int32) []int32 {
	// Schneller Pfad: das ganze Segment ist ein Token
	if id := t.vocab.Encode(segment); id >= 0 {
		return append(ids, id)
	}

	runes := []rune(segment)
	nodes := make([]symbolNode, len(runes))
	for i, r := range runes {
		nodes[i] = symbolNode{prev: i - 1, next: i + 1, text: string(r)}
	}

	pairAt := func(a, b int) *rankedPair {
		if a < 0 || b >= len(nodes) {
			return nil
		}

		rank := t.vocab.Merge(nodes[a].text, nodes[b].text)
		if rank < 0 {
			return nil
		}

		return &rankedPair{a: a, b: b, rank: rank, value: nodes[a].text + nodes[b].text}
	}

	pairs := heap.NewWith(func(i, j *rankedPair) int {
		return cmp.Compare(i.rank, j.rank)
	})

	for i := 0; i < len(nodes)-1; i++ {
		if p := pairAt(i, i+1); p != nil {
			pairs.Push(p)
		}
	}

	for !pairs.Empty() {
		p, _ := pairs.Pop()

		// Veraltete Eintraege verwerfen: einer der Knoten wurde inzwischen
		// gemergt oder geleert
		left, right := nodes[p.a], nodes[p.b]
		if left.text == "" || right.text == "" || left.text+right.text != p.value {
			continue
		}

		if id := t.vocab.Encode(p.value); id < 0 {
			continue
		}

		nodes[p.a].text = p.value
		nodes[p.b].text = ""

		nodes[p.a].next = right.next
		if right.next < len(nodes) {
			nodes[right.next].prev = p.a
		}

		if q := pairAt(nodes[p.a].prev, p.a); q != nil {
			pairs.Push(q)
		}

		if q := pairAt(p.a, nodes[p.a].next); q != nil {
			pairs.Push(q)
		}
	}

	for _, node := range nodes {
		if node.text == "" {
			continue
		}

		if id := t.vocab.Encode(node.text); id >= 0 {
			ids = append(ids, id)
		} else if t.vocab.Unknown >= 0 {
			ids = append(ids, t.vocab.Unknown)
		} else {
			slog.Debug("symbol not in vocabulary and no unknown token reserved, dropping", "symbol", node.text)
		}
	}

	return ids
}
