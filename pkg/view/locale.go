package view

import (
	"fmt"
	"strings"
)

// InvalidDate is shown in place of a date that cannot be parsed.
const InvalidDate = "Invalid Date"

// Locale holds the strings a projection renders.
type Locale struct {
	Tag    string
	Months [12]string

	UntitledNote string
	UntitledList string
	UntitledCard string
	EmptyContent string
	NoMessage    string

	overflow func(n int) string
}

// Overflow renders the count of reminders left out of the home strip.
func (l Locale) Overflow(n int) string {
	if n <= 0 {
		return ""
	}
	return l.overflow(n)
}

var PtBR = Locale{
	Tag:          "pt-BR",
	Months:       [12]string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"},
	UntitledNote: "Título da nota",
	UntitledList: "Lista de compras",
	UntitledCard: "Sem título",
	EmptyContent: "Conteúdo da nota...",
	NoMessage:    "Lembrete sem descrição",
	overflow: func(n int) string {
		if n == 1 {
			return "+1 lembrete pendente"
		}
		return fmt.Sprintf("+%d lembretes pendentes", n)
	},
}

var EnUS = Locale{
	Tag:          "en-US",
	Months:       [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"},
	UntitledNote: "Note title",
	UntitledList: "Shopping list",
	UntitledCard: "Untitled",
	EmptyContent: "Note content...",
	NoMessage:    "Reminder without description",
	overflow: func(n int) string {
		if n == 1 {
			return "+1 more reminder"
		}
		return fmt.Sprintf("+%d more reminders", n)
	},
}

// DefaultLocale is used when none is configured.
var DefaultLocale = PtBR

// LookupLocale finds a locale by tag, ignoring case and accepting '_' for '-'.
func LookupLocale(tag string) (Locale, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	switch norm {
	case "", "pt-br", "pt":
		return PtBR, nil
	case "en-us", "en":
		return EnUS, nil
	}
	return Locale{}, fmt.Errorf("unsupported locale %q", tag)
}
