// Package core holds the domain of the notebook: the record kinds kept in the
// three collections, the storage contract, the collection store and the
// mutation service.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Collection keys.
const (
	KeyNotes     = "notes"
	KeyReminders = "reminders"
	KeyFolders   = "folders"
)

// ISOLayout is the timestamp layout written for createdAt fields.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// ID identifies a record inside its collection.
// Older documents stored numeric ids; those decode to their decimal string.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Record is implemented by every kind stored in a collection.
type Record interface {
	RecordID() ID
}

// Mode distinguishes plain notes from lists inside the notes collection.
type Mode string

const (
	ModeNote Mode = "note"
	ModeList Mode = "list"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeNote || m == ModeList
}

// ListItem is one entry of a list.
type ListItem struct {
	Text string `json:"text"`
}

// Note is a record of the notes collection. Mode decides which fields apply:
// Content for ModeNote, List for ModeList.
type Note struct {
	ID      ID         `json:"id"`
	Mode    Mode       `json:"mode"`
	Title   string     `json:"title,omitempty"`
	Content string     `json:"content,omitempty"`
	List    []ListItem `json:"list,omitempty"`
	Color   string     `json:"color,omitempty"`
}

func (n Note) RecordID() ID { return n.ID }

// IsList reports whether the note renders as a list.
func (n Note) IsList() bool { return n.Mode == ModeList }

// Items returns the texts of the non-blank list items, in order.
func (n Note) Items() []string {
	items := make([]string, 0, len(n.List))
	for _, it := range n.List {
		if strings.TrimSpace(it.Text) == "" {
			continue
		}
		items = append(items, it.Text)
	}
	return items
}

// Validate checks the fields that are mandatory for the note's mode.
func (n Note) Validate() error {
	if n.ID == "" {
		return ErrMissingID
	}
	switch n.Mode {
	case ModeNote:
		if len(n.List) > 0 {
			return fmt.Errorf("%w: note %s carries list items", ErrInvalidMode, n.ID)
		}
	case ModeList:
		if n.Content != "" {
			return fmt.Errorf("%w: list %s carries free text content", ErrInvalidMode, n.ID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, n.Mode)
	}
	return nil
}

// NewNote builds a plain note.
func NewNote(id ID, title, content, color string) (Note, error) {
	n := Note{ID: id, Mode: ModeNote, Title: title, Content: content, Color: color}
	return n, n.Validate()
}

// NewList builds a list note from item texts. Blank items are kept as typed;
// they are only hidden when the list is summarized.
func NewList(id ID, title string, items []string, color string) (Note, error) {
	n := Note{ID: id, Mode: ModeList, Title: title, Color: color}
	for _, text := range items {
		n.List = append(n.List, ListItem{Text: text})
	}
	return n, n.Validate()
}

// Reminder is a record of the reminders collection.
// Date is kept as stored so that missing and unparsable values stay distinguishable.
type Reminder struct {
	ID      ID     `json:"id"`
	Message string `json:"message,omitempty"`
	Date    string `json:"date,omitempty"`
	Color   string `json:"color,omitempty"`
}

func (r Reminder) RecordID() ID { return r.ID }

// HasDate reports whether the reminder carries a date at all.
func (r Reminder) HasDate() bool { return r.Date != "" }

// When parses the reminder date. Dates without an offset are read in loc.
func (r Reminder) When(loc *time.Location) (time.Time, error) {
	return ParseDate(r.Date, loc)
}

// NewReminder builds a reminder due at date.
func NewReminder(id ID, message string, date time.Time, color string) (Reminder, error) {
	if id == "" {
		return Reminder{}, ErrMissingID
	}
	if date.IsZero() {
		return Reminder{}, ErrMissingDate
	}
	return Reminder{
		ID:      id,
		Message: message,
		Date:    date.UTC().Format(ISOLayout),
		Color:   color,
	}, nil
}

// Folder is a record of the folders collection.
type Folder struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func (f Folder) RecordID() ID { return f.ID }

// NewFolder builds a folder with a trimmed name.
func NewFolder(id ID, name string, createdAt time.Time) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Folder{}, ErrEmptyName
	}
	if id == "" {
		return Folder{}, ErrMissingID
	}
	return Folder{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt.UTC().Format(ISOLayout),
	}, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDate reads the date-time forms the stored documents use: RFC 3339 with
// or without fractional seconds, local date-times without an offset (read in
// loc) and bare dates (read as UTC midnight).
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
