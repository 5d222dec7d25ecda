package http

import (
	"net/http"

	"pankti/internal/core"
	applog "pankti/internal/log"
	"pankti/internal/records"
	"pankti/internal/services"
)

type dashboardView struct {
	Totals    records.TotalsRecord            `json:"totals"`
	Customers []records.CustomerBalanceRecord `json:"customers"`
}

type customerListView struct {
	Customers []records.CustomerBalanceRecord `json:"customers"`
}

type customerDetailView struct {
	Customer records.CustomerRecord  `json:"customer"`
	Payments []records.PaymentRecord `json:"payments"`
	Balance  records.Amount          `json:"balance"`
	Pending  records.Amount          `json:"pending"`
}

type paymentListView struct {
	Payments []records.PaymentRecord `json:"payments"`
}

func balanceRecords(rows []core.CustomerPending) []records.CustomerBalanceRecord {
	out := make([]records.CustomerBalanceRecord, len(rows))
	for i, row := range rows {
		out[i] = records.FromCustomerPending(row)
	}
	return out
}

// customerSnapshot loads what the customer views need; they never show attendance.
func (s *Server) customerSnapshot(r *http.Request) (*core.Snapshot, error) {
	return s.deps.Snapshots.Load(r.Context(), services.SnapshotQuery{SkipAttendance: true})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.customerSnapshot(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := snap.CustomerList(core.CustomerQuery{
		Search: sanitizeInput(r.URL.Query().Get("q")),
		Status: core.FilterAll,
		Sort:   core.SortNone,
	})
	writeJSON(w, http.StatusOK, dashboardView{
		Totals:    records.FromTotals(snap.Totals()),
		Customers: balanceRecords(rows),
	})
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	snap, err := s.customerSnapshot(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	rows := snap.CustomerList(core.CustomerQuery{
		Search: sanitizeInput(query.Get("q")),
		Status: core.ParseStatusFilter(query.Get("status")),
		Sort:   core.ParseSortOrder(query.Get("sort")),
	})
	writeJSON(w, http.StatusOK, customerListView{Customers: balanceRecords(rows)})
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req records.CustomerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateCustomer(r.Context(), req.Customer(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Customer created", applog.FieldCustomerID, created.ID)
	writeJSON(w, http.StatusCreated, records.FromCustomer(created))
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.deps.Store.GetCustomer(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := s.deps.Store.ListPaymentsByCustomer(ctx, c.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerDetailView{
		Customer: records.FromCustomer(c),
		Payments: records.FromPayments(payments),
		Balance:  records.AmountOf(core.CustomerBalance(c, payments)),
		Pending:  records.AmountOf(core.PendingAmount(c, payments)),
	})
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req records.CustomerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.deps.Ledger.UpdateCustomer(r.Context(), req.Customer(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records.FromCustomer(updated))
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.deps.Ledger.DeleteCustomer(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Customer deleted", applog.FieldCustomerID, id)
	w.WriteHeader(http.StatusNoContent)
}

// Payments

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.deps.Store.GetCustomer(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := s.deps.Store.ListPaymentsByCustomer(ctx, c.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentListView{Payments: records.FromPayments(payments)})
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.deps.Store.GetCustomer(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req records.PaymentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreatePayment(ctx, req.Payment("", c.ID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, records.FromPayment(created))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req records.PaymentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.deps.Ledger.UpdatePayment(r.Context(), req.Payment(r.PathValue("id"), ""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records.FromPayment(updated))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeletePayment(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
