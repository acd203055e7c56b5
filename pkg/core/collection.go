package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Snapshot is one loaded copy of a collection.
//
// Elements that do not decode into T are kept verbatim at their position so
// that saving the snapshot never drops data the caller could not read.
type Snapshot[T Record] struct {
	Key     string
	entries []entry[T]

	// base is the stored value the snapshot was decoded from; Swap compares against it.
	base    string
	existed bool
}

type entry[T Record] struct {
	rec T
	raw json.RawMessage // set for opaque elements only
	id  ID
}

func (e entry[T]) opaque() bool { return e.raw != nil }

// NewSnapshot builds a detached snapshot holding recs, as if key were empty before.
func NewSnapshot[T Record](key string, recs ...T) *Snapshot[T] {
	s := &Snapshot[T]{Key: key}
	s.Append(recs...)
	return s
}

// decodeSnapshot parses a stored value. An invalid document yields an empty
// snapshot; the returned error only explains why, for logging.
func decodeSnapshot[T Record](key, raw string, existed bool, logger *slog.Logger) (*Snapshot[T], error) {
	s := &Snapshot[T]{Key: key, base: raw, existed: existed}
	if !existed {
		return s, nil
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return s, nil
	}
	if trimmed[0] != '[' {
		return s, fmt.Errorf("collection %s is not a JSON array", key)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return s, fmt.Errorf("collection %s holds invalid JSON: %w", key, err)
	}

	for i, el := range elems {
		var rec T
		if bytes.Equal(bytes.TrimSpace(el), []byte("null")) {
			s.entries = append(s.entries, entry[T]{raw: el})
			continue
		}
		if err := json.Unmarshal(el, &rec); err != nil {
			logger.Debug("keeping undecodable record", "key", key, "index", i, "error", err)
			s.entries = append(s.entries, entry[T]{raw: el, id: peekID(el)})
			continue
		}
		s.entries = append(s.entries, entry[T]{rec: rec, id: rec.RecordID()})
	}
	return s, nil
}

// peekID extracts an id from an element that failed to decode, if it has one.
func peekID(el json.RawMessage) ID {
	var peek struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(el, &peek); err != nil {
		return ""
	}
	return peek.ID
}

// Records returns the decoded records in storage order.
func (s *Snapshot[T]) Records() []T {
	out := make([]T, 0, len(s.entries))
	for _, e := range s.entries {
		if e.opaque() {
			continue
		}
		out = append(out, e.rec)
	}
	return out
}

// Len counts every element, including the ones that could not be decoded.
func (s *Snapshot[T]) Len() int { return len(s.entries) }

// Append adds records at the end of the collection.
func (s *Snapshot[T]) Append(recs ...T) {
	for _, r := range recs {
		s.entries = append(s.entries, entry[T]{rec: r, id: r.RecordID()})
	}
}

// Remove drops every element whose id equals id and returns how many were dropped.
func (s *Snapshot[T]) Remove(id ID) int {
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.id == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// zero the tail so dropped records can be collected
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = entry[T]{}
	}
	s.entries = kept
	return removed
}

// Find returns the first decoded record with the given id.
func (s *Snapshot[T]) Find(id ID) (T, bool) {
	for _, e := range s.entries {
		if !e.opaque() && e.id == id {
			return e.rec, true
		}
	}
	var zero T
	return zero, false
}

// Any reports whether a decoded record satisfies match.
func (s *Snapshot[T]) Any(match func(T) bool) bool {
	for _, e := range s.entries {
		if !e.opaque() && match(e.rec) {
			return true
		}
	}
	return false
}

func (s *Snapshot[T]) encode() (string, error) {
	elems := make([]json.RawMessage, 0, len(s.entries))
	for _, e := range s.entries {
		if e.opaque() {
			elems = append(elems, e.raw)
			continue
		}
		b, err := json.Marshal(e.rec)
		if err != nil {
			return "", fmt.Errorf("failed to encode record %s: %w", e.id, err)
		}
		elems = append(elems, b)
	}
	b, err := json.Marshal(elems)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
