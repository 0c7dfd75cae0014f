package biobox

import (
	"fmt"
	"strings"

	"github.com/tsawler/biobox/pdb"
)

// WarningCode classifies non-fatal problems encountered while loading.
type WarningCode string

const (
	// WarningMalformedRecord marks an input record that was skipped.
	WarningMalformedRecord WarningCode = "malformed-record"
	// WarningUnknownElement marks atoms whose element had to be guessed
	// from the atom name.
	WarningUnknownElement WarningCode = "unknown-element"
	// WarningEmptySelection marks a chain filter that matched nothing.
	WarningEmptySelection WarningCode = "empty-selection"
)

// Warning describes a non-fatal issue: loading succeeded but the result
// may be incomplete.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// FormatWarnings renders warnings as a single human-readable string,
// one per line.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// parseWarnings lifts parser warnings into facade warnings.
func parseWarnings(ws []pdb.Warning) []Warning {
	if len(ws) == 0 {
		return nil
	}
	out := make([]Warning, len(ws))
	for i, w := range ws {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		out[i] = Warning{Code: WarningMalformedRecord, Message: msg}
	}
	return out
}
