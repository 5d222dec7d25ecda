package http

import (
	"net/http"

	"pankti/internal/core"
	applog "pankti/internal/log"
	"pankti/internal/ports"
	"pankti/internal/records"
	"pankti/internal/services"
)

type dayCellRecord struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type employeePresenceRecord struct {
	records.EmployeeRecord
	Present  int `json:"present"`
	Days     int `json:"days"`
	Absences int `json:"absences"`
}

type dayDetailRecord struct {
	EmployeeID   string                    `json:"employee_id"`
	EmployeeName string                    `json:"employee_name"`
	Status       string                    `json:"status"`
	Record       *records.AttendanceRecord `json:"record"`
}

type attendanceView struct {
	Year        int                      `json:"year"`
	Month       int                      `json:"month"`
	DaysInMonth int                      `json:"days_in_month"`
	Selected    []string                 `json:"selected"`
	Calendar    []dayCellRecord          `json:"calendar"`
	Employees   []employeePresenceRecord `json:"employees"`
	Date        string                   `json:"date,omitempty"`
	Details     []dayDetailRecord        `json:"details,omitempty"`
}

type attendanceSavedView struct {
	Date       string                     `json:"date"`
	Attendance []records.AttendanceRecord `json:"attendance"`
}

// handleAttendance builds the attendance page for one month: the calendar of
// the selected employees, presence and absence figures for the roster and,
// when a date is given, the selected employees' records on that day.
func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	month := ParseMonthParams(query, s.deps.Now())
	selected := ParseSelected(query)
	day, hasDay, err := ParseDateParam(query, "date")
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.deps.Snapshots.Load(ctx, services.SnapshotQuery{
		Attendance: ports.AttendanceFilter{Year: month.Year, Month: month.Month},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	days := core.DaysInMonth(month.Year, month.Month)
	view := attendanceView{
		Year:        month.Year,
		Month:       month.Month,
		DaysInMonth: days,
		Selected:    selected,
	}
	if view.Selected == nil {
		view.Selected = []string{}
	}

	cells := core.MonthCalendar(selected, snap.AttendanceByDate, month.Year, month.Month)
	view.Calendar = make([]dayCellRecord, len(cells))
	for i, c := range cells {
		view.Calendar[i] = dayCellRecord{Date: c.Date.Key(), Status: string(c.Status)}
	}

	absences := core.AbsenceCounts(snap.Attendance)
	roster := core.FilterEmployees(snap.Employees, sanitizeInput(query.Get("q")))
	view.Employees = make([]employeePresenceRecord, len(roster))
	for i, e := range roster {
		ratio := core.MonthlyPresenceRatio(e.ID, snap.Attendance, days)
		view.Employees[i] = employeePresenceRecord{
			EmployeeRecord: records.FromEmployee(e),
			Present:        ratio.Present,
			Days:           ratio.Days,
			Absences:       absences[e.ID],
		}
	}

	if hasDay {
		idx := snap.AttendanceByDate
		if !month.Contains(day) {
			onDay, err := s.deps.Store.ListAttendanceByDate(ctx, day)
			if err != nil {
				writeError(w, r, err)
				return
			}
			idx = core.IndexAttendance(onDay)
		}
		view.Date = day.Key()
		for _, row := range core.DayDetails(selected, snap.Employees, idx, day) {
			detail := dayDetailRecord{
				EmployeeID:   row.Employee.ID,
				EmployeeName: row.Employee.Name,
				Status:       string(core.AttendanceStatus(row.Record)),
			}
			if row.Record != nil {
				rec := records.FromAttendance(*row.Record)
				detail.Record = &rec
			}
			view.Details = append(view.Details, detail)
		}
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSaveAttendance(w http.ResponseWriter, r *http.Request) {
	var req records.AttendanceSaveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	day := req.Day()
	entries := make([]core.Attendance, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = e.Attendance(day)
	}

	saved, err := s.deps.Ledger.SaveAttendanceDay(r.Context(), day, entries)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Attendance saved",
		applog.FieldDate, day.Key(),
		applog.FieldCount, len(saved))

	view := attendanceSavedView{Date: day.Key(), Attendance: make([]records.AttendanceRecord, len(saved))}
	for i, a := range saved {
		view.Attendance[i] = records.FromAttendance(a)
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteAttendance(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
