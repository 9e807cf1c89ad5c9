// pairs.go - Paar-Statistik des Merge-Lerners
//
// Enthaelt:
// - pairTable: Zaehler pro benachbartem Symbolpaar plus Postings
//   (Indizes der Woerter, die das Paar enthalten)
// - newPairTable: parallele Erstzaehlung mit assoziativer Reduktion
// - best: deterministische Maximum-Auswahl mit festem Tie-Break
// - update: inkrementelle Delta-Fortschreibung nach einem Merge
package trainer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// pairKey identifiziert ein geordnetes benachbartes Symbolpaar ueber IDs
type pairKey struct {
	left, right int32
}

// pairStat haelt den aggregierten Zaehler eines Paars und die Menge der
// Woerter, in denen es vorkommt
type pairStat struct {
	count int64
	words map[int]struct{}
}

// pairTable ist der explizite, vom Merge-Lerner besessene Zustand aller
// Paar-Zaehler. Paare, die eine Special-ID beruehren, werden nie gezaehlt.
type pairTable struct {
	stats    map[pairKey]*pairStat
	nspecial int32
}

// pairsOf zaehlt die positionsweisen benachbarten Paare einer Symbolsequenz
func pairsOf(syms []int32, nspecial int32) map[pairKey]int64 {
	pairs := make(map[pairKey]int64, len(syms))
	for i := 0; i+1 < len(syms); i++ {
		if syms[i] < nspecial || syms[i+1] < nspecial {
			continue
		}

		pairs[pairKey{syms[i], syms[i+1]}]++
	}

	return pairs
}

// newPairTable zaehlt alle Paare ueber den Wortbestand. Worte werden in
// Scheiben parallel gezaehlt; die Reduktion summiert Zaehler und vereinigt
// Postings, beides kommutativ, der Tie-Break passiert erst bei der Auswahl.
func newPairTable(ctx context.Context, words []word, nspecial int32, workers int) (*pairTable, error) {
	workers = max(workers, 1)
	type partial struct {
		stats map[pairKey]*pairStat
	}

	partials := make([]partial, workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := range workers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			stats := make(map[pairKey]*pairStat)
			for wi := w; wi < len(words); wi += workers {
				for p, n := range pairsOf(words[wi].syms, nspecial) {
					st, ok := stats[p]
					if !ok {
						st = &pairStat{words: make(map[int]struct{})}
						stats[p] = st
					}

					st.count += n * words[wi].count
					st.words[wi] = struct{}{}
				}
			}

			partials[w] = partial{stats: stats}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pt := &pairTable{stats: make(map[pairKey]*pairStat), nspecial: nspecial}
	for _, partial := range partials {
		for p, st := range partial.stats {
			have, ok := pt.stats[p]
			if !ok {
				pt.stats[p] = st
				continue
			}

			have.count += st.count
			for wi := range st.words {
				have.words[wi] = struct{}{}
			}
		}
	}

	return pt, nil
}

// best waehlt das Paar mit maximalem Zaehler. Bei Gleichstand gewinnt das
// lexikographisch kleinere Paar, verglichen auf dem Symbolinhalt, erst links
// dann rechts. Dieser Tie-Break ist fest: er bestimmt die Reproduzierbarkeit
// der gelernten Regeln ueber Laeufe und Prozessneustarts hinweg.
func (pt *pairTable) best(a *arena) (pairKey, int64, bool) {
	var bestPair pairKey
	var bestCount int64
	found := false

	for p, st := range pt.stats {
		if st.count <= 0 {
			continue
		}

		switch {
		case !found, st.count > bestCount:
		case st.count < bestCount:
			continue
		default:
			left, bestLeft := a.values[p.left], a.values[bestPair.left]
			if left > bestLeft {
				continue
			}
			if left == bestLeft && a.values[p.right] >= a.values[bestPair.right] {
				continue
			}
		}

		bestPair, bestCount, found = p, st.count, true
	}

	return bestPair, bestCount, found
}

// postings gibt die Indizes der Woerter zurueck, die das Paar enthalten
func (pt *pairTable) postings(p pairKey) []int {
	st, ok := pt.stats[p]
	if !ok {
		return nil
	}

	wis := make([]int, 0, len(st.words))
	for wi := range st.words {
		wis = append(wis, wi)
	}

	return wis
}

// update schreibt die Zaehler nach dem Umschreiben eines Worts fort:
// zerstoerte Paare werden dekrementiert, an Merge-Grenzen neu entstandene
// inkrementiert. Nur das Delta des betroffenen Worts wird angefasst, nie
// der gesamte Bestand.
func (pt *pairTable) update(wi int, oldSyms, newSyms []int32, count int64) {
	oldPairs := pairsOf(oldSyms, pt.nspecial)
	newPairs := pairsOf(newSyms, pt.nspecial)

	for p, n := range oldPairs {
		st, ok := pt.stats[p]
		if !ok {
			continue
		}

		st.count -= (n - newPairs[p]) * count
		if newPairs[p] == 0 {
			delete(st.words, wi)
		}
		if st.count <= 0 {
			delete(pt.stats, p)
		}
	}

	for p, n := range newPairs {
		if oldPairs[p] != 0 {
			continue // Delta oben bereits verrechnet
		}

		st, ok := pt.stats[p]
		if !ok {
			st = &pairStat{words: make(map[int]struct{})}
			pt.stats[p] = st
		}

		st.count += n * count
		st.words[wi] = struct{}{}
	}
}
