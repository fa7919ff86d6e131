// Package entity decodes the rooms and students JSON documents into typed
// records and validates each record at the parse boundary.
//
// Both documents are JSON arrays of objects. Unknown fields are ignored.
// Every failure is a *roomstat.ParseError naming the source and, for an
// invalid record, its zero-based index. Ids must be non-negative integers
// (0 is valid) and unique within a document.
package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

type rawRoom struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

type rawStudent struct {
	ID       *int64         `json:"id"`
	Name     *string        `json:"name"`
	Birthday *roomstat.Date `json:"birthday"`
	Sex      *string        `json:"sex"`
	Room     *int64         `json:"room"`
}

// ParseRooms decodes a rooms document. source names it in errors.
func ParseRooms(r io.Reader, source string) ([]roomstat.Room, error) {
	var rooms []roomstat.Room
	seen := make(map[int64]int)

	err := decodeArray(r, source, func(dec *json.Decoder, index int) error {
		var raw rawRoom
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		room, err := raw.validate()
		if err != nil {
			return err
		}
		if first, dup := seen[room.ID]; dup {
			return fmt.Errorf("duplicate room id %d (first at record %d)", room.ID, first)
		}
		seen[room.ID] = index
		rooms = append(rooms, room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// ParseStudents decodes a students document. source names it in errors.
// Room references are not checked here; that needs the persisted rooms too.
func ParseStudents(r io.Reader, source string) ([]roomstat.Student, error) {
	var students []roomstat.Student
	seen := make(map[int64]int)

	err := decodeArray(r, source, func(dec *json.Decoder, index int) error {
		var raw rawStudent
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		student, err := raw.validate()
		if err != nil {
			return err
		}
		if first, dup := seen[student.ID]; dup {
			return fmt.Errorf("duplicate student id %d (first at record %d)", student.ID, first)
		}
		seen[student.ID] = index
		students = append(students, student)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// decodeArray streams the elements of a top-level JSON array to decodeOne.
func decodeArray(r io.Reader, source string, decodeOne func(dec *json.Decoder, index int) error) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return &roomstat.ParseError{Source: source, Index: -1, Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return &roomstat.ParseError{Source: source, Index: -1, Err: fmt.Errorf("expected a JSON array, found %v", tok)}
	}

	for index := 0; dec.More(); index++ {
		if err := decodeOne(dec, index); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				return &roomstat.ParseError{Source: source, Index: -1, Err: err}
			}
			return &roomstat.ParseError{Source: source, Index: index, Err: err}
		}
	}

	if _, err := dec.Token(); err != nil {
		return &roomstat.ParseError{Source: source, Index: -1, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &roomstat.ParseError{Source: source, Index: -1, Err: errors.New("unexpected data after the array")}
	}
	return nil
}

func (r rawRoom) validate() (roomstat.Room, error) {
	switch {
	case r.ID == nil:
		return roomstat.Room{}, errors.New(`missing field "id"`)
	case *r.ID < 0:
		return roomstat.Room{}, fmt.Errorf("id must not be negative, got %d", *r.ID)
	case r.Name == nil || strings.TrimSpace(*r.Name) == "":
		return roomstat.Room{}, fmt.Errorf("room %d: missing field \"name\"", *r.ID)
	}
	return roomstat.Room{ID: *r.ID, Name: *r.Name}, nil
}

func (s rawStudent) validate() (roomstat.Student, error) {
	if s.ID == nil {
		return roomstat.Student{}, errors.New(`missing field "id"`)
	}
	id := *s.ID
	switch {
	case id < 0:
		return roomstat.Student{}, fmt.Errorf("id must not be negative, got %d", id)
	case s.Name == nil || strings.TrimSpace(*s.Name) == "":
		return roomstat.Student{}, fmt.Errorf("student %d: missing field \"name\"", id)
	case s.Birthday == nil || s.Birthday.IsZero():
		return roomstat.Student{}, fmt.Errorf("student %d: missing field \"birthday\"", id)
	case s.Sex == nil:
		return roomstat.Student{}, fmt.Errorf("student %d: missing field \"sex\"", id)
	case !roomstat.Sex(*s.Sex).IsValid():
		return roomstat.Student{}, fmt.Errorf("student %d: sex must be M or F, got %q", id, *s.Sex)
	case s.Room == nil:
		return roomstat.Student{}, fmt.Errorf("student %d: missing field \"room\"", id)
	case *s.Room < 0:
		return roomstat.Student{}, fmt.Errorf("student %d: room must not be negative, got %d", id, *s.Room)
	}

	return roomstat.Student{
		ID:       id,
		Name:     *s.Name,
		Birthday: *s.Birthday,
		Sex:      roomstat.Sex(*s.Sex),
		Room:     *s.Room,
	}, nil
}
