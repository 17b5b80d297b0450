package rsvp

// ColumnRange is the sheet column span rows are appended to:
// Timestamp | First name | Last name | Confirmation | Meal | Message | Groom | Bride.
const ColumnRange = "A:H"

const Columns = 8

// Row is one ordered set of cell values.
type Row []string

func newRow(s *Submission, first, last, meal, message string) Row {
	groom, bride := s.Side.Flags()

	return Row{s.Timestamp, first, last, s.Attendance, meal, message, groom, bride}
}

// Rows returns the primary submitter row followed by one row per guest.
// The message is kept on the primary row only.
func (s *Submission) Rows() ([]Row, error) {
	rows := make([]Row, 0, 1+len(s.Guests))

	if s.FirstName != "" || s.LastName != "" {
		rows = append(rows, newRow(s, s.FirstName, s.LastName, s.Meal, s.Message))
	}

	for _, g := range s.Guests {
		rows = append(rows, newRow(s, g.First, g.Last, g.Meal, ""))
	}

	if len(rows) == 0 {
		return nil, ErrNoNames
	}

	return rows, nil
}

// Values converts rows to the cell matrix the Sheets API takes.
func Values(rows []Row) [][]any {
	res := make([][]any, len(rows))

	for i, r := range rows {
		cells := make([]any, len(r))
		for j, v := range r {
			cells[j] = v
		}

		res[i] = cells
	}

	return res
}
