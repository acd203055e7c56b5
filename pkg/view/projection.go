// Package view derives what each screen shows from the raw collections:
// filtering, ordering, fallback colors and formatted dates.
//
// Projections never touch storage. They take the records a screen loaded and
// return display-ready cards, so the same input always renders the same way.
package view

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/notebook/pkg/core"
)

// HomeReminderLimit is how many reminders the home strip renders.
const HomeReminderLimit = 2

// Layout is the width a card takes on the home screen.
type Layout int

const (
	// LayoutHalf is a two-column card, used for plain notes.
	LayoutHalf Layout = iota
	// LayoutFull spans the whole row, used for lists.
	LayoutFull
)

func (l Layout) String() string {
	if l == LayoutFull {
		return "full"
	}
	return "half"
}

// Card is a note or list ready for display.
type Card struct {
	ID         core.ID   `json:"id"`
	Mode       core.Mode `json:"mode"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	Background string    `json:"background"`
	Foreground string    `json:"foreground"`
	Layout     Layout    `json:"layout"`
}

func (c Card) RecordID() core.ID { return c.ID }

// DateLabel is a reminder date split the way cards show it.
type DateLabel struct {
	Month string `json:"month"`
	Day   string `json:"day"`
	Time  string `json:"time"`
	Valid bool   `json:"valid"`
}

// String renders the label on one line, e.g. "FEV 15 09:30".
func (d DateLabel) String() string {
	if !d.Valid {
		return InvalidDate
	}
	return d.Month + " " + d.Day + " " + d.Time
}

// ReminderCard is a reminder ready for display.
type ReminderCard struct {
	ID         core.ID   `json:"id"`
	Message    string    `json:"message"`
	Date       DateLabel `json:"date"`
	When       time.Time `json:"when,omitzero"`
	Background string    `json:"background"`
	Foreground string    `json:"foreground"`
}

func (c ReminderCard) RecordID() core.ID { return c.ID }

// FolderRow is a folder ready for display.
type FolderRow struct {
	ID      core.ID `json:"id"`
	Name    string  `json:"name"`
	Created string  `json:"created"`
}

func (f FolderRow) RecordID() core.ID { return f.ID }

// HomeView is the dashboard: a short reminder strip and every note block.
type HomeView struct {
	Reminders    []ReminderCard `json:"reminders"`
	Overflow     int            `json:"overflow"`
	OverflowText string         `json:"overflow_text,omitempty"`
	Blocks       []Card         `json:"blocks"`
}

// Engine renders projections for one locale and time zone.
type Engine struct {
	Locale   Locale
	Location *time.Location
	Palettes Palettes
}

// NewEngine returns an Engine with the default palettes. A nil location
// renders times in time.Local.
func NewEngine(locale Locale, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if locale.Tag == "" {
		locale = DefaultLocale
	}
	return &Engine{Locale: locale, Location: loc, Palettes: DefaultPalettes}
}

// NotesGrid shows plain notes, most recently appended first.
func (e *Engine) NotesGrid(notes []core.Note) []Card {
	picked := reversed(filter(notes, func(n core.Note) bool { return n.Mode == core.ModeNote }))
	cards := make([]Card, len(picked))
	for i, n := range picked {
		cards[i] = e.card(n, e.Palettes.NotesGrid, i)
		cards[i].Title = fallback(n.Title, e.Locale.UntitledCard)
	}
	return cards
}

// Lists shows lists, most recently appended first.
func (e *Engine) Lists(notes []core.Note) []Card {
	picked := reversed(filter(notes, func(n core.Note) bool { return n.Mode == core.ModeList }))
	cards := make([]Card, len(picked))
	for i, n := range picked {
		cards[i] = e.card(n, e.Palettes.Lists, i)
		cards[i].Title = fallback(n.Title, e.Locale.UntitledCard)
	}
	return cards
}

// HomeBlocks shows every note and list in storage order. Notes take half a
// row, lists a full row.
func (e *Engine) HomeBlocks(notes []core.Note) []Card {
	cards := make([]Card, len(notes))
	for i, n := range notes {
		cards[i] = e.card(n, e.Palettes.HomeBlocks, i)
	}
	return cards
}

// Dates shows dated reminders, latest first.
func (e *Engine) Dates(reminders []core.Reminder) []ReminderCard {
	return e.reminderCards(e.byDate(reminders, true), e.Palettes.Dates)
}

// HomeReminders shows the soonest HomeReminderLimit dated reminders and how
// many more there are.
func (e *Engine) HomeReminders(reminders []core.Reminder) ([]ReminderCard, int) {
	sorted := e.byDate(reminders, false)
	overflow := 0
	if len(sorted) > HomeReminderLimit {
		overflow = len(sorted) - HomeReminderLimit
		sorted = sorted[:HomeReminderLimit]
	}
	return e.reminderCards(sorted, e.Palettes.HomeReminders), overflow
}

// Home renders the dashboard.
func (e *Engine) Home(notes []core.Note, reminders []core.Reminder) HomeView {
	strip, overflow := e.HomeReminders(reminders)
	return HomeView{
		Reminders:    strip,
		Overflow:     overflow,
		OverflowText: e.Locale.Overflow(overflow),
		Blocks:       e.HomeBlocks(notes),
	}
}

// Folders lists folders in storage order.
func (e *Engine) Folders(folders []core.Folder) []FolderRow {
	rows := make([]FolderRow, len(folders))
	for i, f := range folders {
		rows[i] = FolderRow{ID: f.ID, Name: f.Name, Created: f.CreatedAt}
		if t, err := core.ParseDate(f.CreatedAt, e.Location); err == nil {
			rows[i].Created = t.In(e.Location).Format("2006-01-02 15:04")
		}
	}
	return rows
}

// FormatDate splits a stored date into the parts a card shows.
func (e *Engine) FormatDate(t time.Time) DateLabel {
	t = t.In(e.Location)
	return DateLabel{
		Month: e.Locale.Months[t.Month()-1],
		Day:   strconv.Itoa(t.Day()),
		Time:  t.Format("15:04"),
		Valid: true,
	}
}

func (e *Engine) card(n core.Note, p Palette, index int) Card {
	bg := p.Background(n.Color, index)
	c := Card{
		ID:         n.ID,
		Mode:       n.Mode,
		Background: bg,
		Foreground: Foreground(bg),
	}
	if n.IsList() {
		c.Layout = LayoutFull
		c.Title = fallback(n.Title, e.Locale.UntitledList)
		c.Body = strings.Join(n.Items(), " • ")
	} else {
		c.Layout = LayoutHalf
		c.Title = fallback(n.Title, e.Locale.UntitledNote)
		c.Body = fallback(n.Content, e.Locale.EmptyContent)
	}
	return c
}

// dated pairs a reminder with its parsed date. ok is false when the date is
// present but unparsable.
type dated struct {
	r    core.Reminder
	when time.Time
	ok   bool
}

// byDate drops reminders without a date and sorts the rest soonest first, or
// latest first when newestFirst is set. Unparsable dates go last either way;
// ties keep storage order.
func (e *Engine) byDate(reminders []core.Reminder, newestFirst bool) []dated {
	out := make([]dated, 0, len(reminders))
	for _, r := range reminders {
		if !r.HasDate() {
			continue
		}
		t, err := r.When(e.Location)
		out = append(out, dated{r: r, when: t, ok: err == nil})
	}
	slices.SortStableFunc(out, func(a, b dated) int {
		switch {
		case a.ok && b.ok && newestFirst:
			return b.when.Compare(a.when)
		case a.ok && b.ok:
			return a.when.Compare(b.when)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})
	return out
}

func (e *Engine) reminderCards(ds []dated, p Palette) []ReminderCard {
	cards := make([]ReminderCard, len(ds))
	for i, d := range ds {
		bg := p.Background(d.r.Color, i)
		c := ReminderCard{
			ID:         d.r.ID,
			Message:    fallback(d.r.Message, e.Locale.NoMessage),
			Background: bg,
			Foreground: Foreground(bg),
		}
		if d.ok {
			c.Date = e.FormatDate(d.when)
			c.When = d.when
		}
		cards[i] = c
	}
	return cards
}

// Without returns items minus every element with the given id. Screens apply
// it to their projection after a delete instead of reloading.
func Without[T core.Record](items []T, id core.ID) []T {
	return filter(items, func(it T) bool { return it.RecordID() != id })
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func reversed[T any](items []T) []T {
	out := slices.Clone(items)
	slices.Reverse(out)
	return out
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
