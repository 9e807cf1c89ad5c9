// config.go - Konfiguration ueber Environment-Variablen
//
// Dieses Modul enthaelt:
// - LogLevel: Log-Level (TOKENFORGE_DEBUG)
// - NumParallel: Worker-Anzahl fuer das Training (TOKENFORGE_NUM_PARALLEL)
// - Var/Bool/Uint/String: Getter-Hilfsfunktionen
// - AsMap: alle Variablen mit Beschreibung fuer die CLI-Hilfe
package envconfig

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LogLevel gibt das konfigurierte Log-Level zurueck (TOKENFORGE_DEBUG)
// "1"/"true" aktiviert Debug, numerische Werte setzen das Level direkt
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TOKENFORGE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Debug meldet, ob Debug-Logging aktiv ist
func Debug() bool {
	return LogLevel() <= slog.LevelDebug
}

// NumParallel gibt die Worker-Anzahl fuer parallele Trainingsschritte zurueck
// (TOKENFORGE_NUM_PARALLEL, Default: GOMAXPROCS)
func NumParallel() uint {
	return Uint("TOKENFORGE_NUM_PARALLEL", uint(runtime.GOMAXPROCS(0)))()
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	return func() bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"TOKENFORGE_DEBUG":        {"TOKENFORGE_DEBUG", LogLevel(), "Show additional debug information (e.g. TOKENFORGE_DEBUG=1)"},
		"TOKENFORGE_NUM_PARALLEL": {"TOKENFORGE_NUM_PARALLEL", NumParallel(), "Number of parallel workers for training (default: number of CPUs)"},
	}
}
