// trainer_test.go - Unit Tests fuer den Merge-Loop
package trainer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenforge/tokenizer"
)

// TestTrainMergeReihenfolge testet die exakte Lernreihenfolge auf einem
// handgerechneten Korpus. Die Paare (l,o) und (o,w) haben beide Haeufigkeit 5;
// der Tie-Break waehlt das lexikographisch kleinere (l,o).
func TestTrainMergeReihenfolge(t *testing.T) {
	corpus := []string{"low lower lowest", "low low"}

	result, err := Train(context.Background(), Strings(corpus), Config{
		VocabSize:     32,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
	})
	require.NoError(t, err)

	wantMerges := []tokenizer.MergePair{
		{Left: "l", Right: "o"},
		{Left: "lo", Right: "w"},
		{Left: " ", Right: "low"},
		{Left: " low", Right: "e"},
	}
	wantFreqs := []int64{5, 5, 3, 2}

	vocab := result.Tokenizer.Vocabulary()
	assert.Equal(t, wantMerges, vocab.Merges)
	assert.Equal(t, wantFreqs, result.MergeFrequencies)
	assert.Equal(t, 8, result.BaseSymbols)
	assert.Equal(t, 4, result.MergeCount)
	assert.Equal(t, 14, result.VocabSize)
	assert.False(t, result.TargetReached)
	assert.Equal(t, StopFrequencyFloor, result.StopReason)
}

// TestTrainZielGroesse testet den Stop bei erreichter Ziel-Vokabulargroesse
func TestTrainZielGroesse(t *testing.T) {
	corpus := []string{"low lower lowest", "low low"}

	// 2 Specials + 8 Basis-Symbole + 2 Merges
	result, err := Train(context.Background(), Strings(corpus), Config{
		VocabSize:     12,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, result.VocabSize)
	assert.Equal(t, 2, result.MergeCount)
	assert.True(t, result.TargetReached)
	assert.Equal(t, StopTargetReached, result.StopReason)

	// Ein haeufiges Wort kollabiert auf wenige IDs
	ids, err := result.Tokenizer.Encode("low")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(ids), 3)
	assert.Equal(t, []int32{11}, ids)
}

// TestTrainMonotoneFrequenzen testet, dass die Merge-Haeufigkeiten unter
// festem Tie-Break monoton fallen
func TestTrainMonotoneFrequenzen(t *testing.T) {
	var corpus []string
	for i := range 50 {
		corpus = append(corpus, strings.Repeat(fmt.Sprintf("word%d ", i%7), i%5+1))
	}

	result, err := Train(context.Background(), Strings(corpus), Config{
		VocabSize:     256,
		SpecialTokens: []string{"[UNK]"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.MergeFrequencies)

	for i := 1; i < len(result.MergeFrequencies); i++ {
		assert.LessOrEqual(t, result.MergeFrequencies[i], result.MergeFrequencies[i-1],
			"Haeufigkeit von Regel %d steigt gegenueber Regel %d", i, i-1)
	}
}

// TestTrainDeterminismus testet, dass zwei Laeufe mit unterschiedlicher
// Parallelitaet identische Modelle lernen
func TestTrainDeterminismus(t *testing.T) {
	var corpus []string
	for i := range 800 {
		corpus = append(corpus, fmt.Sprintf("the quick brown fox %d jumps over the lazy dog %d", i%13, i%7))
	}

	train := func(workers int) *tokenizer.Vocabulary {
		result, err := Train(context.Background(), Strings(corpus), Config{
			VocabSize:     300,
			SpecialTokens: []string{"[PAD]", "[UNK]"},
			NumWorkers:    workers,
		})
		require.NoError(t, err)
		return result.Tokenizer.Vocabulary()
	}

	sequential := train(1)
	parallel := train(8)

	if diff := cmp.Diff(sequential.Values, parallel.Values); diff != "" {
		t.Errorf("Vokabular haengt von der Worker-Anzahl ab:\n%s", diff)
	}
	if diff := cmp.Diff(sequential.Merges, parallel.Merges); diff != "" {
		t.Errorf("Merge-Regeln haengen von der Worker-Anzahl ab:\n%s", diff)
	}
}

// TestTrainTieBreak testet den lexikographischen Tie-Break auf Symbolinhalt.
// (a,b), (c,d) und (" ",c) haben alle Haeufigkeit 2; " " < "a" < "c".
func TestTrainTieBreak(t *testing.T) {
	result, err := Train(context.Background(), Strings([]string{"ab cd ab cd"}), Config{
		VocabSize:     32,
		SpecialTokens: []string{"[UNK]"},
	})
	require.NoError(t, err)

	merges := result.Tokenizer.Vocabulary().Merges
	require.NotEmpty(t, merges)
	assert.Equal(t, tokenizer.MergePair{Left: " ", Right: "c"}, merges[0])
	assert.Equal(t, int64(2), result.MergeFrequencies[0])
}

// TestTrainLeererKorpus testet, dass ein leerer Korpus ein reines
// Special-Vokabular ergibt und kein Fehler ist
func TestTrainLeererKorpus(t *testing.T) {
	result, err := Train(context.Background(), Strings(nil), Config{
		VocabSize:     100,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.VocabSize)
	assert.Equal(t, 0, result.BaseSymbols)
	assert.Equal(t, 0, result.MergeCount)
	assert.False(t, result.TargetReached)
	assert.Equal(t, StopEmptyCorpus, result.StopReason)

	// Encodieren faellt vollstaendig auf Unknown zurueck
	ids, err := result.Tokenizer.Encode("hi")
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 1}, ids)
}

// TestTrainFrequenzBoden testet den Stop, wenn kein Paar die
// Mindesthaeufigkeit erreicht (alle Paare kommen genau einmal vor)
func TestTrainFrequenzBoden(t *testing.T) {
	result, err := Train(context.Background(), Strings([]string{"abc xyz"}), Config{
		VocabSize:     100,
		SpecialTokens: []string{"[UNK]"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.MergeCount)
	assert.False(t, result.TargetReached)
	assert.Equal(t, StopFrequencyFloor, result.StopReason)
	assert.Equal(t, result.VocabSize, 1+result.BaseSymbols)
}

// TestTrainUnknownWirdAngehaengt testet, dass das Unknown-Token den Specials
// angehaengt wird, wenn es dort fehlt
func TestTrainUnknownWirdAngehaengt(t *testing.T) {
	result, err := Train(context.Background(), Strings([]string{"low low"}), Config{
		VocabSize:     20,
		SpecialTokens: []string{"[PAD]"},
	})
	require.NoError(t, err)

	vocab := result.Tokenizer.Vocabulary()
	assert.Equal(t, []string{"[PAD]", DefaultUnknownToken}, vocab.Specials)
	assert.Equal(t, int32(1), vocab.Unknown)
}

// TestTrainSpecialsDedupliziert testet, dass doppelte Special-Tokens die
// reservierten IDs nicht verschieben und das Artefakt wieder ladbar bleibt
func TestTrainSpecialsDedupliziert(t *testing.T) {
	result, err := Train(context.Background(), Strings([]string{"low low"}), Config{
		VocabSize:     20,
		SpecialTokens: []string{"[PAD]", "[PAD]", "[UNK]", "[PAD]"},
	})
	require.NoError(t, err)

	vocab := result.Tokenizer.Vocabulary()
	assert.Equal(t, []string{"[PAD]", "[UNK]"}, vocab.Specials)
	assert.Equal(t, "[PAD]", vocab.Values[0])
	assert.Equal(t, "[UNK]", vocab.Values[1])

	var buf strings.Builder
	require.NoError(t, result.Tokenizer.Save(&buf))
	_, err = tokenizer.Load(strings.NewReader(buf.String()))
	require.NoError(t, err)
}

// TestTrainLeereSpecialOberflaeche testet, dass ein leeres Special-Token
// als Konfigurationsfehler abgewiesen wird
func TestTrainLeereSpecialOberflaeche(t *testing.T) {
	_, err := Train(context.Background(), Strings([]string{"low low"}), Config{
		VocabSize:     20,
		SpecialTokens: []string{"[PAD]", "", "[UNK]"},
	})
	require.Error(t, err)
}

// TestTrainZielKleinerAlsSpecials testet den Konfigurationsfehler
func TestTrainZielKleinerAlsSpecials(t *testing.T) {
	_, err := Train(context.Background(), Strings(nil), Config{
		VocabSize:     1,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
	})
	require.Error(t, err)
}

// TestTrainSpecialsImKorpus testet, dass Special-Oberflaechen im Korpus nie
// am Merge-Lernen teilnehmen
func TestTrainSpecialsImKorpus(t *testing.T) {
	result, err := Train(context.Background(), Strings([]string{"low[PAD]low low[PAD]low"}), Config{
		VocabSize:     64,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
	})
	require.NoError(t, err)

	vocab := result.Tokenizer.Vocabulary()
	for id := len(vocab.Specials); id < len(vocab.Values); id++ {
		assert.NotContains(t, vocab.Values[id], "[PAD]", "Symbol %q ueberbrueckt ein Special", vocab.Values[id])
	}
}

// TestTrainCheckpoint testet, dass der Checkpoint-Hook nach jedem Merge mit
// einem benutzbaren Schnappschuss aufgerufen wird
func TestTrainCheckpoint(t *testing.T) {
	var calls int
	var lastVocab int

	result, err := Train(context.Background(), Strings([]string{"low lower lowest", "low low"}), Config{
		VocabSize:     32,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
		Checkpoint: func(snap *tokenizer.Tokenizer) error {
			calls++
			lastVocab = snap.Vocabulary().Size()

			_, err := snap.Encode("low")
			return err
		},
	})
	require.NoError(t, err)

	assert.Equal(t, result.MergeCount, calls)
	assert.Equal(t, result.VocabSize, lastVocab)
}

// TestTrainCheckpointFehler testet, dass ein Checkpoint-Fehler das Training abbricht
func TestTrainCheckpointFehler(t *testing.T) {
	boom := errors.New("boom")

	_, err := Train(context.Background(), Strings([]string{"low lower lowest", "low low"}), Config{
		VocabSize:     32,
		SpecialTokens: []string{"[UNK]"},
		Checkpoint: func(*tokenizer.Tokenizer) error {
			return boom
		},
	})
	require.ErrorIs(t, err, boom)
}

// TestTrainAbbruch testet den Abbruch per Context zwischen zwei Merges:
// das partielle Modell bleibt konsistent und benutzbar
func TestTrainAbbruch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := Train(ctx, Strings([]string{"low lower lowest", "low low"}), Config{
		VocabSize:     32,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
		Checkpoint: func(*tokenizer.Tokenizer) error {
			cancel()
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.MergeCount)
	assert.False(t, result.TargetReached)
	assert.Equal(t, StopCancelled, result.StopReason)

	ids, err := result.Tokenizer.Encode("low low")
	require.NoError(t, err)

	text, err := result.Tokenizer.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "low low", text)
}

// TestTrainAbbruchVorStart testet, dass ein bereits abgebrochener Context
// die Zaehlphase mit Fehler beendet
func TestTrainAbbruchVorStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Train(ctx, Strings([]string{"low low"}), Config{
		VocabSize:     32,
		SpecialTokens: []string{"[UNK]"},
	})
	require.ErrorIs(t, err, context.Canceled)
}

// TestTrainArtefaktRoundTrip testet Training, Speichern, Laden und identisches Encodieren
func TestTrainArtefaktRoundTrip(t *testing.T) {
	result, err := Train(context.Background(), Strings([]string{"low lower lowest", "low low"}), Config{
		VocabSize:     32,
		SpecialTokens: []string{"[PAD]", "[UNK]"},
	})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, result.Tokenizer.Save(&buf))

	loaded, err := tokenizer.Load(strings.NewReader(buf.String()))
	require.NoError(t, err)

	for _, text := range []string{"low lower lowest", "lowly", "[PAD]low"} {
		want, err := result.Tokenizer.Encode(text)
		require.NoError(t, err)

		got, err := loaded.Encode(text)
		require.NoError(t, err)
		assert.Equal(t, want, got, "Encode(%q) weicht nach dem Laden ab", text)
	}
}
