package faq

import (
	"regexp"
	"strings"
)

// Entry is one pre-computed answer for a common question. Entries match by
// regex first, then by keyword count, so short colloquial phrasings still hit.
type Entry struct {
	Pattern  *regexp.Regexp
	Keywords []string
	Response string
}

// Table is an injected, read-only lookup consulted before the Directory
// Service. An empty table simply never matches.
type Table struct {
	entries []Entry
}

// NewTable builds a table from the given entries.
func NewTable(entries []Entry) *Table {
	return &Table{entries: entries}
}

// Match returns the canned response for a message, if any. Matching is
// case-insensitive; a regex hit wins, otherwise two or more keyword hits do.
func (t *Table) Match(message string) (string, bool) {
	if t == nil {
		return "", false
	}
	message = strings.ToLower(strings.TrimSpace(message))
	if message == "" {
		return "", false
	}

	for _, e := range t.entries {
		if e.Pattern != nil && e.Pattern.MatchString(message) {
			return e.Response, true
		}
	}
	for _, e := range t.entries {
		hits := 0
		for _, kw := range e.Keywords {
			if strings.Contains(message, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits >= 2 {
			return e.Response, true
		}
	}
	return "", false
}

// DefaultEntries answers the questions citizens ask most, without a
// round-trip to the Directory Service.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Pattern:  regexp.MustCompile(`(?i)(horario|hora).*(atienden|atencion|atención|abren|cierran)|(abren|cierran).*(hora|horario)`),
			Keywords: []string{"horario", "atencion", "abren"},
			Response: "Las oficinas atienden de lunes a viernes de 8:00 a 14:00. Podés sacar turno por este chat escribiendo \"turno\".",
		},
		{
			Pattern:  regexp.MustCompile(`(?i)(que|qué|cuales|cuáles).*(documentos|papeles|requisitos).*(llevar|necesito|traer)`),
			Keywords: []string{"documentos", "requisitos", "llevar"},
			Response: "Para la mayoría de los trámites necesitás tu DNI vigente. Algunos trámites piden documentación extra; te la detallamos al confirmar el turno.",
		},
		{
			Pattern:  regexp.MustCompile(`(?i)(cancelar|anular).*(turno|cita)|(turno|cita).*(cancelar|anular)`),
			Keywords: []string{"cancelar", "turno"},
			Response: "Podés cancelar tu turno respondiendo a este chat o desde el portal con tu número de turno. El turno cancelado libera el horario para otra persona.",
		},
		{
			Pattern:  regexp.MustCompile(`(?i)(cuanto|cuánto).*(cuesta|sale|vale)|costo|arancel`),
			Keywords: []string{"costo", "precio", "arancel"},
			Response: "Los aranceles dependen del trámite. La mayoría de las consultas son gratuitas; los trámites con costo se abonan en la oficina al momento de la atención.",
		},
	}
}
