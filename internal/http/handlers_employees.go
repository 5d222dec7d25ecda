package http

import (
	"cmp"
	"net/http"
	"slices"

	"pankti/internal/core"
	applog "pankti/internal/log"
	"pankti/internal/records"
	"pankti/internal/services"
)

type employeeListView struct {
	Employees []records.EmployeeRecord `json:"employees"`
}

type advanceTotalRecord struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Total        records.Amount `json:"total"`
}

type advanceListView struct {
	Advances []records.AdvanceRecord `json:"advances"`
	Totals   []advanceTotalRecord    `json:"totals"`
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.deps.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	employees = core.FilterEmployees(employees, sanitizeInput(r.URL.Query().Get("q")))
	view := employeeListView{Employees: make([]records.EmployeeRecord, len(employees))}
	for i, e := range employees {
		view.Employees[i] = records.FromEmployee(e)
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req records.EmployeeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateEmployee(r.Context(), req.Employee())
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Employee created", applog.FieldEmployeeID, created.ID)
	writeJSON(w, http.StatusCreated, records.FromEmployee(created))
}

// Advances

func employeeName(snap *core.Snapshot, id string) string {
	if e, ok := snap.Employee(id); ok {
		return e.Name
	}
	return ""
}

// handleListAdvances lists every advance with per-employee totals. Employees
// whose advances sum to zero are left out of the totals shown.
func (s *Server) handleListAdvances(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Snapshots.Load(r.Context(), services.SnapshotQuery{SkipAttendance: true})
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := advanceListView{
		Advances: make([]records.AdvanceRecord, len(snap.Advances)),
		Totals:   []advanceTotalRecord{},
	}
	for i, a := range snap.Advances {
		view.Advances[i] = records.FromAdvance(a, employeeName(snap, a.EmployeeID))
	}
	for id, total := range core.AdvanceTotals(snap.Advances) {
		if total.Cents == 0 {
			continue
		}
		view.Totals = append(view.Totals, advanceTotalRecord{
			EmployeeID:   id,
			EmployeeName: employeeName(snap, id),
			Total:        records.AmountOf(total),
		})
	}
	slices.SortFunc(view.Totals, func(a, b advanceTotalRecord) int {
		return cmp.Or(cmp.Compare(a.EmployeeName, b.EmployeeName), cmp.Compare(a.EmployeeID, b.EmployeeID))
	})

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req records.AdvanceRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateAdvance(ctx, req.Advance())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var name string
	if e, err := s.deps.Store.GetEmployee(ctx, created.EmployeeID); err == nil {
		name = e.Name
	}
	writeJSON(w, http.StatusCreated, records.FromAdvance(created, name))
}
