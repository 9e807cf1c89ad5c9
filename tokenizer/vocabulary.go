// vocabulary.go - Vokabular und Merge-Tabelle
//
// Enthaelt:
// - Vocabulary: Symbol-Arena (Index = Token-ID), Specials, Merge-Regeln
// - Encode/Decode auf Symbolebene, Merge-Rang-Lookup
//
// Die Arena vermeidet Zeiger-Zyklen zwischen Symbolen: ein gemergtes
// Symbol referenziert seine Bestandteile nur ueber deren Inhalt, Gleichheit
// ist ein ID-Vergleich.
package tokenizer

import "sync"

// MergePair ist eine gelernte Merge-Regel: Left gefolgt von Right wird zu
// Left+Right zusammengefasst. Der Index in Vocabulary.Merges ist der Rang;
// kleinerer Rang = frueher gelernt = hoehere Prioritaet beim Encodieren.
type MergePair struct {
	Left  string
	Right string
}

// Vocabulary haelt die Symbol-Arena eines trainierten Modells.
// Invarianten:
//   - Values[id] ist der Symboltext fuer Token-ID id, eindeutig ueber alle IDs
//   - Specials belegen die IDs 0..len(Specials)-1 in fester Reihenfolge
//   - Basis-Symbole folgen in Erst-Auftritts-Reihenfolge, danach die
//     Merge-Ergebnisse in Lernreihenfolge
//   - Unknown ist die ID des reservierten Unknown-Tokens oder -1
type Vocabulary struct {
	Values   []string
	Merges   []MergePair
	Specials []string
	Unknown  int32

	valuesOnce sync.Once
	values     map[string]int32

	mergeOnce sync.Once
	merge     map[MergePair]int32

	specialOnce sync.Once
	special     map[string]int32
}

// Size gibt die Groesse des Vokabulars zurueck
func (v *Vocabulary) Size() int {
	return len(v.Values)
}

// Encode gibt die Token-ID fuer einen Symboltext zurueck, -1 wenn unbekannt
func (v *Vocabulary) Encode(s string) int32 {
	v.valuesOnce.Do(func() {
		v.values = make(map[string]int32, len(v.Values))
		for id, value := range v.Values {
			v.values[value] = int32(id)
		}
	})

	if id, ok := v.values[s]; ok {
		return id
	}

	return -1
}

// Decode gibt den Symboltext fuer eine Token-ID zurueck, "" wenn ausserhalb
func (v *Vocabulary) Decode(id int32) string {
	if id < 0 || int(id) >= len(v.Values) {
		return ""
	}

	return v.Values[id]
}

// Merge gibt den Rang der Merge-Regel (left, right) zurueck, -1 wenn keine
// solche Regel gelernt wurde. Existieren zwei Regeln fuer dasselbe Paar
// (kommt nicht vor, da Paare nach dem Merge verschwinden), gewinnt die
// zuerst gelernte.
func (v *Vocabulary) Merge(left, right string) int32 {
	v.mergeOnce.Do(func() {
		v.merge = make(map[MergePair]int32, len(v.Merges))
		for rank, m := range v.Merges {
			if _, ok := v.merge[m]; !ok {
				v.merge[m] = int32(rank)
			}
		}
	})

	if rank, ok := v.merge[MergePair{left, right}]; ok {
		return rank
	}

	return -1
}

// SpecialID gibt die reservierte ID fuer eine Special-Oberflaeche zurueck, -1 wenn keine
func (v *Vocabulary) SpecialID(s string) int32 {
	v.specialOnce.Do(func() {
		v.special = make(map[string]int32, len(v.Specials))
		for id, value := range v.Specials {
			v.special[value] = int32(id)
		}
	})

	if id, ok := v.special[s]; ok {
		return id
	}

	return -1
}

// IsSpecial meldet, ob id eine reservierte Special-Token-ID ist
func (v *Vocabulary) IsSpecial(id int32) bool {
	return id >= 0 && int(id) < len(v.Specials)
}
