// trainer.go - BPE Merge-Lernen
//
// Enthaelt:
// - Train: der sequentielle Merge-Loop (Maximum-Paar waehlen, Regel
//   aufzeichnen, Woerter umschreiben, Zaehler fortschreiben)
// - Config/Result: Trainingskonfiguration und -ergebnis inkl. Stop-Grund
//
// Der Loop ist ueber Merges hinweg inhaerent sequentiell; parallelisiert
// wird nur innerhalb eines Schritts (corpus.go, pairs.go). Abbruch per
// Context greift zwischen zwei Merges, nie mittendrin; nach jedem
// abgeschlossenen Merge kann ein Checkpoint geschrieben werden.
package trainer

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/tokenforge/tokenforge/envconfig"
	"github.com/tokenforge/tokenforge/tokenizer"
)

// Defaults fuer die Trainingskonfiguration
const (
	DefaultUnknownToken     = "[UNK]"
	DefaultMinPairFrequency = 2
)

// StopReason benennt, warum das Training geendet hat
type StopReason string

const (
	// StopTargetReached: die Ziel-Vokabulargroesse wurde erreicht
	StopTargetReached StopReason = "target vocabulary size reached"
	// StopFrequencyFloor: kein Paar erreicht die Mindesthaeufigkeit mehr
	StopFrequencyFloor StopReason = "no pair meets the minimum frequency"
	// StopNoPairs: es existieren keine benachbarten Paare mehr
	StopNoPairs StopReason = "no pairs left"
	// StopEmptyCorpus: der Korpus enthielt keine Woerter
	StopEmptyCorpus StopReason = "empty corpus"
	// StopCancelled: Abbruch per Context zwischen zwei Merges
	StopCancelled StopReason = "cancelled"
)

// Config steuert einen Trainingslauf
type Config struct {
	// VocabSize ist die Ziel-Vokabulargroesse (Specials + Basis + Merges)
	VocabSize int
	// SpecialTokens belegen die IDs 0..len-1 in dieser Reihenfolge
	SpecialTokens []string
	// UnknownToken ist die Oberflaeche des reservierten Unknown-Tokens;
	// wird den Specials angehaengt, falls nicht enthalten (Default "[UNK]")
	UnknownToken string
	// MinPairFrequency ist die Mindesthaeufigkeit fuer einen Merge (Default 2)
	MinPairFrequency int
	// Pretokenizer ist die Versionskennung des Segmentierungs-Regelsatzes
	Pretokenizer string
	// NumWorkers begrenzt die parallelen Zaehl-Worker (Default: envconfig.NumParallel)
	NumWorkers int
	// Checkpoint wird nach jedem abgeschlossenen Merge mit einem
	// konsistenten Modell-Schnappschuss aufgerufen; ein Fehler bricht ab
	Checkpoint func(*tokenizer.Tokenizer) error
}

// Result ist das Trainingsergebnis. Eine kleinere Vokabulargroesse als das
// Ziel ist kein Fehler, sondern wird hier berichtet.
type Result struct {
	Tokenizer *tokenizer.Tokenizer

	VocabSize     int
	BaseSymbols   int
	MergeCount    int
	TargetReached bool
	StopReason    StopReason

	// MergeFrequencies[i] ist die Paar-Haeufigkeit von Regel i zum
	// Lernzeitpunkt; die Folge ist monoton fallend unter festem Tie-Break
	MergeFrequencies []int64
}

// Strings macht einen String-Slice als Korpus-Sequenz verfuegbar
func Strings(docs []string) iter.Seq[string] {
	return slices.Values(docs)
}

// Train lernt Merge-Regeln ueber dem Korpus, bis die Ziel-Vokabulargroesse
// erreicht ist oder kein Paar die Mindesthaeufigkeit mehr erfuellt. Ein
// leerer Korpus ergibt ein Vokabular nur aus Special-Tokens (Warnung, kein
// Fehler).
func Train(ctx context.Context, corpus iter.Seq[string], cfg Config) (*Result, error) {
	// Doppelte Specials wuerden die reservierten IDs gegen das Vokabular
	// verschieben, leere Oberflaechen terminieren das Fragment-Splitting
	// beim Encodieren nicht
	specials := make([]string, 0, len(cfg.SpecialTokens))
	for _, special := range cfg.SpecialTokens {
		if special == "" {
			return nil, fmt.Errorf("special tokens must not be empty")
		}
		if !slices.Contains(specials, special) {
			specials = append(specials, special)
		}
	}
	cfg.SpecialTokens = specials

	if cfg.UnknownToken == "" {
		cfg.UnknownToken = DefaultUnknownToken
	}
	if !slices.Contains(cfg.SpecialTokens, cfg.UnknownToken) {
		cfg.SpecialTokens = append(slices.Clone(cfg.SpecialTokens), cfg.UnknownToken)
	}
	if cfg.MinPairFrequency <= 0 {
		cfg.MinPairFrequency = DefaultMinPairFrequency
	}
	if cfg.Pretokenizer == "" {
		cfg.Pretokenizer = tokenizer.DefaultPretokenizer
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = int(envconfig.NumParallel())
	}
	if cfg.VocabSize < len(cfg.SpecialTokens) {
		return nil, fmt.Errorf("target vocab size %d is smaller than the %d special tokens", cfg.VocabSize, len(cfg.SpecialTokens))
	}

	pre, err := tokenizer.NewPretokenizer(cfg.Pretokenizer)
	if err != nil {
		return nil, err
	}

	counts, err := countWords(ctx, corpus, pre, cfg.SpecialTokens, cfg.NumWorkers)
	if err != nil {
		return nil, err
	}

	a := newArena(cfg.SpecialTokens)
	words := buildWords(a, counts)
	nbase := a.size() - len(cfg.SpecialTokens)

	if len(words) == 0 {
		slog.Warn("training corpus is empty, vocabulary contains only special tokens", "specials", len(cfg.SpecialTokens))
		return finish(a, nil, nil, cfg, pre, StopEmptyCorpus)
	}

	if a.size() > cfg.VocabSize {
		slog.Warn("base symbols and special tokens already exceed the target vocab size, no merges will be learned",
			"base", nbase, "specials", len(cfg.SpecialTokens), "target", cfg.VocabSize)
	}

	pt, err := newPairTable(ctx, words, int32(len(cfg.SpecialTokens)), cfg.NumWorkers)
	if err != nil {
		return nil, err
	}

	var merges []tokenizer.MergePair
	var freqs []int64
	reason := StopTargetReached

	for a.size() < cfg.VocabSize {
		if ctx.Err() != nil {
			reason = StopCancelled
			break
		}

		p, count, ok := pt.best(a)
		if !ok {
			reason = StopNoPairs
			break
		}
		if count < int64(cfg.MinPairFrequency) {
			reason = StopFrequencyFloor
			break
		}

		left, right := a.values[p.left], a.values[p.right]
		merged := a.intern(left + right)

		for _, wi := range pt.postings(p) {
			newSyms := replacePair(words[wi].syms, p, merged)
			pt.update(wi, words[wi].syms, newSyms, words[wi].count)
			words[wi].syms = newSyms
		}

		merges = append(merges, tokenizer.MergePair{Left: left, Right: right})
		freqs = append(freqs, count)

		if len(merges)%500 == 0 {
			slog.Info("training progress", "merges", len(merges), "vocab", a.size(), "target", cfg.VocabSize, "last_frequency", count)
		}

		if cfg.Checkpoint != nil {
			snap, err := snapshot(a, merges, cfg, pre)
			if err != nil {
				return nil, err
			}
			if err := cfg.Checkpoint(snap); err != nil {
				return nil, fmt.Errorf("checkpoint after merge %d: %w", len(merges), err)
			}
		}
	}

	return finish(a, merges, freqs, cfg, pre, reason)
}

// replacePair ersetzt alle nicht ueberlappenden Vorkommen des Paars von
// links nach rechts durch das gemergte Symbol
func replacePair(syms []int32, p pairKey, merged int32) []int32 {
	out := make([]int32, 0, len(syms))
	for i := 0; i < len(syms); i++ {
		if i+1 < len(syms) && syms[i] == p.left && syms[i+1] == p.right {
			out = append(out, merged)
			i++
			continue
		}

		out = append(out, syms[i])
	}

	return out
}

// snapshot baut ein eigenstaendiges, unveraenderliches Modell aus dem
// aktuellen Trainingszustand
func snapshot(a *arena, merges []tokenizer.MergePair, cfg Config, pre *tokenizer.Pretokenizer) (*tokenizer.Tokenizer, error) {
	vocab := &tokenizer.Vocabulary{
		Values:   slices.Clone(a.values),
		Merges:   slices.Clone(merges),
		Specials: slices.Clone(cfg.SpecialTokens),
		Unknown:  int32(slices.Index(cfg.SpecialTokens, cfg.UnknownToken)),
	}

	return tokenizer.New(vocab, pre.Version())
}

// finish baut das Endergebnis und meldet eine verfehlte Zielgroesse
func finish(a *arena, merges []tokenizer.MergePair, freqs []int64, cfg Config, pre *tokenizer.Pretokenizer, reason StopReason) (*Result, error) {
	t, err := snapshot(a, merges, cfg, pre)
	if err != nil {
		return nil, err
	}

	targetReached := a.size() >= cfg.VocabSize
	if !targetReached && reason != StopCancelled && reason != StopEmptyCorpus {
		slog.Warn("target vocabulary size not reached", "vocab", a.size(), "target", cfg.VocabSize, "reason", string(reason))
	}

	return &Result{
		Tokenizer:        t,
		VocabSize:        a.size(),
		BaseSymbols:      a.size() - len(cfg.SpecialTokens) - distinctMergeResults(a, merges),
		MergeCount:       len(merges),
		TargetReached:    targetReached,
		StopReason:       reason,
		MergeFrequencies: freqs,
	}, nil
}

// distinctMergeResults zaehlt die Vokabular-Eintraege, die durch Merges
// entstanden sind. Faellt das Ergebnis zweier Regeln zusammen (selten,
// z.B. a+bc und ab+c), zaehlt der Eintrag nur einmal.
func distinctMergeResults(a *arena, merges []tokenizer.MergePair) int {
	results := make(map[string]struct{}, len(merges))
	for _, m := range merges {
		results[m.Left+m.Right] = struct{}{}
	}

	// Nur Eintraege zaehlen, die nicht schon Basis-Symbole waren
	n := 0
	for r := range results {
		if len([]rune(r)) > 1 {
			n++
		}
	}

	return n
}
