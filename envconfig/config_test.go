// config_test.go - Unit Tests fuer die Environment-Konfiguration
package envconfig

import (
	"log/slog"
	"testing"
)

// TestVar testet das Trimmen von Quotes und Leerzeichen
func TestVar(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"Einfacher Wert", "value", "value"},
		{"Doppelte Quotes", `"value"`, "value"},
		{"Einfache Quotes", "'value'", "value"},
		{"Leerzeichen", "  value  ", "value"},
		{"Quotes und Leerzeichen", ` "value" `, "value"},
		{"Leer", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOKENFORGE_TEST_VAR", tt.value)
			if got := Var("TOKENFORGE_TEST_VAR"); got != tt.want {
				t.Errorf("Var() = %q, erwartet %q", got, tt.want)
			}
		})
	}
}

// TestLogLevel testet die Log-Level-Ableitung aus TOKENFORGE_DEBUG
func TestLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"Nicht gesetzt", "", slog.LevelInfo},
		{"Bool aktiviert Debug", "true", slog.LevelDebug},
		{"Eins aktiviert Debug", "1", slog.LevelDebug},
		{"Null bleibt Info", "0", slog.LevelInfo},
		{"Numerisch setzt das Level direkt", "2", slog.Level(-8)},
		{"Unsinn bleibt Info", "abc", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOKENFORGE_DEBUG", tt.value)
			if got := LogLevel(); got != tt.want {
				t.Errorf("LogLevel() = %v, erwartet %v", got, tt.want)
			}
		})
	}
}

// TestDebug testet den Debug-Schalter
func TestDebug(t *testing.T) {
	t.Setenv("TOKENFORGE_DEBUG", "")
	if Debug() {
		t.Error("Debug() sollte ohne TOKENFORGE_DEBUG false sein")
	}

	t.Setenv("TOKENFORGE_DEBUG", "1")
	if !Debug() {
		t.Error("Debug() sollte mit TOKENFORGE_DEBUG=1 true sein")
	}
}

// TestNumParallel testet die Worker-Anzahl mit Default und ungueltigen Werten
func TestNumParallel(t *testing.T) {
	t.Setenv("TOKENFORGE_NUM_PARALLEL", "")
	if got := NumParallel(); got == 0 {
		t.Error("NumParallel() sollte ohne Variable einen Default > 0 liefern")
	}

	t.Setenv("TOKENFORGE_NUM_PARALLEL", "4")
	if got := NumParallel(); got != 4 {
		t.Errorf("NumParallel() = %d, erwartet 4", got)
	}

	t.Setenv("TOKENFORGE_NUM_PARALLEL", "not-a-number")
	if got := NumParallel(); got == 0 {
		t.Error("NumParallel() sollte bei ungueltigem Wert auf den Default fallen")
	}
}

// TestUint testet den Uint-Getter
func TestUint(t *testing.T) {
	t.Setenv("TOKENFORGE_TEST_UINT", "")
	if got := Uint("TOKENFORGE_TEST_UINT", 7)(); got != 7 {
		t.Errorf("Uint() = %d, erwartet Default 7", got)
	}

	t.Setenv("TOKENFORGE_TEST_UINT", "42")
	if got := Uint("TOKENFORGE_TEST_UINT", 7)(); got != 42 {
		t.Errorf("Uint() = %d, erwartet 42", got)
	}

	t.Setenv("TOKENFORGE_TEST_UINT", "-1")
	if got := Uint("TOKENFORGE_TEST_UINT", 7)(); got != 7 {
		t.Errorf("Uint() = %d, erwartet Default 7 bei negativem Wert", got)
	}
}

// TestAsMap testet, dass alle dokumentierten Variablen enthalten sind
func TestAsMap(t *testing.T) {
	m := AsMap()
	for _, key := range []string{"TOKENFORGE_DEBUG", "TOKENFORGE_NUM_PARALLEL"} {
		e, ok := m[key]
		if !ok {
			t.Errorf("AsMap() sollte %q enthalten", key)
			continue
		}
		if e.Name != key {
			t.Errorf("AsMap()[%q].Name = %q", key, e.Name)
		}
		if e.Description == "" {
			t.Errorf("AsMap()[%q] hat keine Beschreibung", key)
		}
	}
}
