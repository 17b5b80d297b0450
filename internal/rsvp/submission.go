// Package rsvp turns RSVP form fields into spreadsheet rows.
package rsvp

import (
	"fmt"
	"strings"
	"time"
)

// MaxGuests is the number of guest slots the form offers.
const MaxGuests = 10

// Form field names of the primary submitter.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldAttendance = "attendance"
	FieldMessage    = "message"
	FieldMeal       = "meal"
	FieldSide       = "side"
)

// Side is the family the submitter belongs to.
type Side string

const (
	SideUnspecified Side = ""
	SideGroom       Side = "groom"
	SideBride       Side = "bride"
)

const flagYes = "Yes"

// ParseSide maps a free-text side case-insensitively; unknown values are
// unspecified.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SideGroom):
		return SideGroom
	case string(SideBride):
		return SideBride
	default:
		return SideUnspecified
	}
}

// Flags returns the groom and bride column values. At most one is set.
func (s Side) Flags() (groom, bride string) {
	switch s {
	case SideGroom:
		return flagYes, ""
	case SideBride:
		return "", flagYes
	default:
		return "", ""
	}
}

// Fields is the read side of a parsed form body. Absent keys yield "".
type Fields interface {
	Get(key string) string
}

// Guest is an additional attendee named in the guest_N_* fields.
type Guest struct {
	First string
	Last  string
	Meal  string
}

// Submission is a validated form with trimmed values, ready to become rows.
type Submission struct {
	Timestamp  string
	FirstName  string
	LastName   string
	Attendance string
	Meal       string
	Message    string
	Side       Side
	Guests     []Guest
}

// ValidationError is a client-correctable problem with a submission.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

var (
	ErrNamesRequired      = &ValidationError{Msg: "First name and last name are required."}
	ErrAttendanceRequired = &ValidationError{Msg: "Confirmation (attendance) is required."}
	ErrSideRequired       = &ValidationError{Msg: "Please specify whether you are from the groom or bride side (side)."}
	ErrNoNames            = &ValidationError{Msg: "No names provided"}
)

// GuestError reports guest i having only one of first and last name.
func GuestError(i int) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf("Guest %d requires both first and last name.", i)}
}

// GuestKeys returns the field names of guest slot i.
func GuestKeys(i int) (first, last, meal string) {
	return fmt.Sprintf("guest_%d_first", i), fmt.Sprintf("guest_%d_last", i), fmt.Sprintf("guest_%d_meal", i)
}

// Timestamp formats t as zero-padded day and month only.
func Timestamp(t time.Time) string {
	return t.Format("02/01")
}

// Parse validates the form fields and builds a submission stamped at now.
// A side that is present but unknown is accepted and marks neither column.
func Parse(f Fields, now time.Time) (*Submission, error) {
	get := func(key string) string {
		return strings.TrimSpace(f.Get(key))
	}

	s := &Submission{
		Timestamp:  Timestamp(now),
		FirstName:  get(FieldFirstName),
		LastName:   get(FieldLastName),
		Attendance: get(FieldAttendance),
		Message:    get(FieldMessage),
		Meal:       get(FieldMeal),
	}

	if s.FirstName == "" || s.LastName == "" {
		return nil, ErrNamesRequired
	}

	if s.Attendance == "" {
		return nil, ErrAttendanceRequired
	}

	side := get(FieldSide)
	if side == "" {
		return nil, ErrSideRequired
	}

	s.Side = ParseSide(side)

	for i := 1; i <= MaxGuests; i++ {
		kf, kl, km := GuestKeys(i)
		g := Guest{First: get(kf), Last: get(kl), Meal: get(km)}

		if g.First == "" && g.Last == "" {
			continue
		}

		if g.First == "" || g.Last == "" {
			return nil, GuestError(i)
		}

		s.Guests = append(s.Guests, g)
	}

	return s, nil
}
