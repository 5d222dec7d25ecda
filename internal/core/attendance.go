package core

import (
	"strings"
	"time"
)

const (
	DayNone    DayStatus = "none"
	DayPresent DayStatus = "present"
	DayPartial DayStatus = "partial"
	DayAbsent  DayStatus = "absent"
	DayOT      DayStatus = "ot"
)

// DayStatus is the calendar highlight category of a day.
type DayStatus string

// AttendanceIndex groups attendance records by calendar day.
type AttendanceIndex struct {
	byDate map[string][]Attendance
}

// IndexAttendance groups records by day, keeping input order within a day.
func IndexAttendance(records []Attendance) AttendanceIndex {
	idx := AttendanceIndex{byDate: make(map[string][]Attendance)}
	for _, r := range records {
		key := r.Date.Key()
		idx.byDate[key] = append(idx.byDate[key], r)
	}
	return idx
}

// OnDate returns every record for the given day.
func (idx AttendanceIndex) OnDate(d Date) []Attendance {
	return idx.byDate[d.Key()]
}

// Lookup returns the first record of employeeID on the given day.
func (idx AttendanceIndex) Lookup(d Date, employeeID string) (Attendance, bool) {
	for _, r := range idx.byDate[d.Key()] {
		if r.EmployeeID == employeeID {
			return r, true
		}
	}
	return Attendance{}, false
}

// AttendanceStatus maps a record to its calendar category. A nil record is DayNone.
func AttendanceStatus(rec *Attendance) DayStatus {
	if rec == nil {
		return DayNone
	}
	switch rec.Type {
	case Absent:
		return DayAbsent
	case OTDay:
		return DayOT
	case HalfDay, Hourly:
		return DayPartial
	default:
		return DayPresent
	}
}

// CalendarStatus classifies a day for the calendar. Statuses are only shown
// when exactly one employee is selected; any other selection yields DayNone.
func CalendarStatus(selected []string, idx AttendanceIndex, d Date) DayStatus {
	if len(selected) != 1 {
		return DayNone
	}
	rec, ok := idx.Lookup(d, selected[0])
	if !ok {
		return DayNone
	}
	return AttendanceStatus(&rec)
}

// MonthCalendar returns one cell per day of the month.
func MonthCalendar(selected []string, idx AttendanceIndex, year, month int) []DayCell {
	days := DaysInMonth(year, month)
	cells := make([]DayCell, 0, days)
	for day := 1; day <= days; day++ {
		d := NewDate(year, month, day)
		cells = append(cells, DayCell{Date: d, Status: CalendarStatus(selected, idx, d)})
	}
	return cells
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthlyPresenceRatio counts every day without an "absent" record as present,
// including days that have no record at all.
func MonthlyPresenceRatio(employeeID string, records []Attendance, daysInMonth int) PresenceRatio {
	absent := 0
	for _, r := range records {
		if r.EmployeeID == employeeID && r.Type == Absent {
			absent++
		}
	}
	return PresenceRatio{Present: daysInMonth - absent, Days: daysInMonth}
}

// AbsenceCounts tallies absent records per employee.
func AbsenceCounts(records []Attendance) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Type == Absent {
			counts[r.EmployeeID]++
		}
	}
	return counts
}

// ValidateAttendanceSave rejects hourly attendance without a positive hours value.
// Other types need no hours.
func ValidateAttendanceSave(t AttendanceType, hours *float64) error {
	if t == Hourly && (hours == nil || !(*hours > 0)) {
		return ErrHoursRequired
	}
	return nil
}

// NormalizeHours drops the hours value for every type except Hourly.
func NormalizeHours(t AttendanceType, hours *float64) *float64 {
	if t != Hourly || hours == nil {
		return nil
	}
	h := *hours
	return &h
}

// FilterEmployees keeps employees whose name contains term, ignoring case.
// The term is not trimmed.
func FilterEmployees(employees []Employee, term string) []Employee {
	term = strings.ToLower(term)
	if term == "" {
		return append([]Employee(nil), employees...)
	}
	out := make([]Employee, 0, len(employees))
	for _, e := range employees {
		if strings.Contains(strings.ToLower(e.Name), term) {
			out = append(out, e)
		}
	}
	return out
}

// DayDetails lists the selected employees, in roster order, with their record
// for the given day. No selection yields no rows.
func DayDetails(selected []string, employees []Employee, idx AttendanceIndex, d Date) []EmployeeDay {
	if len(selected) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	var out []EmployeeDay
	for _, e := range employees {
		if _, ok := want[e.ID]; !ok {
			continue
		}
		row := EmployeeDay{Employee: e}
		if rec, ok := idx.Lookup(d, e.ID); ok {
			row.Record = &rec
		}
		out = append(out, row)
	}
	return out
}

// AdvanceTotals sums advance amounts per employee. Employees whose advances sum
// to zero are kept; hiding them is up to the caller.
func AdvanceTotals(advances []Advance) map[string]Money {
	totals := make(map[string]Money)
	for _, a := range advances {
		totals[a.EmployeeID] = totals[a.EmployeeID].Add(a.Amount)
	}
	return totals
}
