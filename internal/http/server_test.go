package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pankti/internal/auth"
	"pankti/internal/core"
	applog "pankti/internal/log"
	"pankti/internal/middleware/ratelimit"
	"pankti/internal/records"
	"pankti/internal/services"
	"pankti/internal/storage/memory"
)

const testPIN = "4321"

var testNow = time.Date(2025, 5, 15, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	srv   *Server
	store *memory.Store
}

func newTestEnv(t *testing.T, mutate func(*Deps)) *testEnv {
	t.Helper()
	store := memory.New()
	mgr, err := auth.NewManager(auth.Config{PIN: testPIN}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}
	deps := Deps{
		Store:     store,
		Snapshots: services.NewSnapshotService(store),
		Ledger:    services.NewLedgerService(store, nil),
		Auth:      mgr,
		Logger:    applog.New(applog.Config{Output: io.Discard}),
		Now:       func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv := NewServer(":0", deps)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/login", `{"pin":"`+testPIN+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %T: %v", v, err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body.String())
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if body := decodeBody[statusBody](t, rec); body.Status != "ok" {
		t.Errorf("health status = %q", body.Status)
	}

	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	expectStatus(t, rec, http.StatusOK)

	down := newTestEnv(t, func(d *Deps) {
		d.Ping = func(context.Context) error { return errors.New("database locked") }
	})
	rec = down.do(t, http.MethodGet, "/readyz", "", nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong pin", `{"pin":"0000"}`, http.StatusUnauthorized},
		{"not json", `pin=4321`, http.StatusBadRequest},
		{"unknown field", `{"pin":"4321","remember":true}`, http.StatusBadRequest},
		{"missing pin", `{}`, http.StatusUnprocessableEntity},
		{"letters", `{"pin":"abcd"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/login", tt.body, nil)
			expectStatus(t, rec, tt.want)
		})
	}

	if cookie := env.login(t); !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
}

func TestAPIRequiresSession(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/customers", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	cookie := env.login(t)
	rec = env.do(t, http.MethodGet, "/api/customers", "", cookie)
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodPost, "/logout", "", cookie)
	expectStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, "/api/customers", "", cookie)
	expectStatus(t, rec, http.StatusUnauthorized)

	// A second logout is harmless.
	rec = env.do(t, http.MethodPost, "/logout", "", cookie)
	expectStatus(t, rec, http.StatusNoContent)
}

func TestCustomerLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/customers",
		`{"name":"Ramesh Patel","phone":"98250 12345","location":"Surat","work_amount":"10000","advance_amount":2000}`, cookie)
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[records.CustomerRecord](t, rec)
	if created.ID == "" {
		t.Fatal("created customer has no id")
	}
	if created.Phone != "+919825012345" {
		t.Errorf("phone = %q, want E.164", created.Phone)
	}

	rec = env.do(t, http.MethodPost, "/api/customers/"+created.ID+"/payments", `{"amount":3000.5,"payment_mode":"UPI"}`, cookie)
	expectStatus(t, rec, http.StatusCreated)
	payment := decodeBody[records.PaymentRecord](t, rec)

	rec = env.do(t, http.MethodGet, "/api/customers/"+created.ID, "", cookie)
	expectStatus(t, rec, http.StatusOK)
	detail := decodeBody[customerDetailView](t, rec)
	if len(detail.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(detail.Payments))
	}
	if detail.Balance.Cents != 499950 || detail.Pending.Cents != 499950 {
		t.Errorf("balance/pending = %d/%d, want 499950", detail.Balance.Cents, detail.Pending.Cents)
	}

	// Overpaying makes the balance negative while pending stays at zero.
	rec = env.do(t, http.MethodPut, "/api/payments/"+payment.ID, `{"amount":9000,"payment_mode":"Cash","notes":"final"}`, cookie)
	expectStatus(t, rec, http.StatusOK)
	rec = env.do(t, http.MethodGet, "/api/customers/"+created.ID, "", cookie)
	detail = decodeBody[customerDetailView](t, rec)
	if detail.Balance.Cents != -100000 || detail.Pending.Cents != 0 {
		t.Errorf("balance/pending = %d/%d, want -100000/0", detail.Balance.Cents, detail.Pending.Cents)
	}

	rec = env.do(t, http.MethodPut, "/api/customers/"+created.ID,
		`{"name":"Ramesh Patel","phone":"9825012345","location":"Navsari","work_amount":10000,"advance_amount":2000,"work_completed":true}`, cookie)
	expectStatus(t, rec, http.StatusOK)
	if updated := decodeBody[records.CustomerRecord](t, rec); updated.Location != "Navsari" || !updated.WorkCompleted {
		t.Errorf("update not applied: %+v", updated)
	}

	rec = env.do(t, http.MethodDelete, "/api/customers/"+created.ID, "", cookie)
	expectStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, "/api/customers/"+created.ID, "", cookie)
	expectStatus(t, rec, http.StatusNotFound)
	rec = env.do(t, http.MethodDelete, "/api/payments/"+payment.ID, "", cookie)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCustomerValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/customers", `{"phone":"9","location":"Surat","work_amount":100}`, cookie)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	body := decodeBody[errorBody](t, rec)
	if len(body.Fields) != 1 || body.Fields[0].Field != "name" || body.Fields[0].Rule != "required" {
		t.Errorf("fields = %+v, want name required", body.Fields)
	}

	// Advance above the work amount passes the shape check but not the entity rules.
	rec = env.do(t, http.MethodPost, "/api/customers", `{"name":"A","phone":"9","location":"Surat","work_amount":100,"advance_amount":200}`, cookie)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	rec = env.do(t, http.MethodPost, "/api/customers", `{"name":"A","phone":"9","location":"Surat","work_amount":"lots"}`, cookie)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodPost, "/api/customers/missing/payments", `{"amount":10}`, cookie)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCustomerListAndDashboard(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)
	ctx := context.Background()

	mk := func(name string, work int64, completed bool) core.Customer {
		c, err := env.store.CreateCustomer(ctx, core.Customer{Name: name, Phone: "9", Location: "Surat", WorkAmount: core.Money{Cents: work}, WorkCompleted: completed})
		if err != nil {
			t.Fatal(err)
		}
		return c
	}
	a := mk("Amit", 50000, true)
	mk("Bharat", 20000, false)
	c := mk("Chirag", 30000, false)
	if _, err := env.store.CreatePayment(ctx, core.Payment{CustomerID: c.ID, Amount: core.Money{Cents: 30000}}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, http.MethodGet, "/api/customers?status=pending&sort=desc", "", cookie)
	expectStatus(t, rec, http.StatusOK)
	list := decodeBody[customerListView](t, rec)
	if len(list.Customers) != 2 || list.Customers[0].ID != a.ID || list.Customers[1].Name != "Bharat" {
		t.Fatalf("pending customers = %+v", list.Customers)
	}

	rec = env.do(t, http.MethodGet, "/api/customers?status=completed", "", cookie)
	list = decodeBody[customerListView](t, rec)
	if len(list.Customers) != 1 || list.Customers[0].ID != c.ID || list.Customers[0].Pending.Cents != 0 {
		t.Fatalf("completed customers = %+v", list.Customers)
	}

	rec = env.do(t, http.MethodGet, "/api/customers?sort=asc", "", cookie)
	list = decodeBody[customerListView](t, rec)
	if len(list.Customers) != 3 || list.Customers[0].Name != "Chirag" || list.Customers[2].ID != a.ID {
		t.Fatalf("ascending order wrong: %+v", list.Customers)
	}

	rec = env.do(t, http.MethodGet, "/api/dashboard?q=amit", "", cookie)
	expectStatus(t, rec, http.StatusOK)
	dash := decodeBody[dashboardView](t, rec)
	if dash.Totals.CustomerCount != 3 {
		t.Errorf("customer count = %d", dash.Totals.CustomerCount)
	}
	if dash.Totals.TotalWorkValue.Cents != 100000 || dash.Totals.TotalPending.Cents != 70000 || dash.Totals.CompletedWorkPending.Cents != 50000 {
		t.Errorf("totals = %+v", dash.Totals)
	}
	if len(dash.Customers) != 1 || dash.Customers[0].ID != a.ID {
		t.Errorf("search result = %+v", dash.Customers)
	}
}

func TestAttendance(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/employees", `{"name":"Suresh","phone":"9825012345","daily_wage":600}`, cookie)
	expectStatus(t, rec, http.StatusCreated)
	suresh := decodeBody[records.EmployeeRecord](t, rec)
	if suresh.OvertimeRate != core.DefaultOvertimeRate {
		t.Errorf("overtime rate = %v, want default", suresh.OvertimeRate)
	}
	rec = env.do(t, http.MethodPost, "/api/employees", `{"name":"Mahesh","phone":"9825012346","daily_wage":500,"overtime_rate":2}`, cookie)
	expectStatus(t, rec, http.StatusCreated)
	mahesh := decodeBody[records.EmployeeRecord](t, rec)

	save := `{"date":"2025-05-02","entries":[` +
		`{"employee_id":"` + suresh.ID + `","type":"absent"},` +
		`{"employee_id":"` + mahesh.ID + `","type":"hourly","hours":4}]}`
	rec = env.do(t, http.MethodPost, "/api/attendance", save, cookie)
	expectStatus(t, rec, http.StatusOK)
	if saved := decodeBody[attendanceSavedView](t, rec); len(saved.Attendance) != 2 {
		t.Fatalf("saved = %+v", saved)
	}

	// Saving the same day again updates instead of duplicating.
	rec = env.do(t, http.MethodPost, "/api/attendance",
		`{"date":"2025-05-02","entries":[{"employee_id":"`+suresh.ID+`","type":"half_day"}]}`, cookie)
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, "/api/attendance?year=2025&month=5&employee="+suresh.ID+"&date=2025-05-02", "", cookie)
	expectStatus(t, rec, http.StatusOK)
	view := decodeBody[attendanceView](t, rec)
	if view.DaysInMonth != 31 || len(view.Calendar) != 31 {
		t.Fatalf("calendar has %d days", len(view.Calendar))
	}
	if got := view.Calendar[1].Status; got != string(core.DayPartial) {
		t.Errorf("2 May status = %q, want partial", got)
	}
	if got := view.Calendar[0].Status; got != string(core.DayNone) {
		t.Errorf("1 May status = %q, want none", got)
	}
	if len(view.Details) != 1 || view.Details[0].Record == nil || view.Details[0].Record.Type != "half_day" {
		t.Fatalf("details = %+v", view.Details)
	}
	for _, e := range view.Employees {
		if e.Days != 31 || e.Present != 31 || e.Absences != 0 {
			t.Errorf("presence for %s = %d/%d, %d absences", e.Name, e.Present, e.Days, e.Absences)
		}
	}

	// Two selected employees show no calendar statuses.
	rec = env.do(t, http.MethodGet, "/api/attendance?year=2025&month=5&employee="+suresh.ID+","+mahesh.ID, "", cookie)
	view = decodeBody[attendanceView](t, rec)
	if len(view.Selected) != 2 || view.Calendar[1].Status != string(core.DayNone) {
		t.Errorf("multi-select view = %v, %q", view.Selected, view.Calendar[1].Status)
	}

	// A date outside the month still resolves its records.
	rec = env.do(t, http.MethodGet, "/api/attendance?year=2025&month=6&employee="+mahesh.ID+"&date=2025-05-02", "", cookie)
	view = decodeBody[attendanceView](t, rec)
	if len(view.Details) != 1 || view.Details[0].Status != string(core.DayPartial) {
		t.Fatalf("details outside month = %+v", view.Details)
	}

	rec = env.do(t, http.MethodDelete, "/api/attendance/"+view.Details[0].Record.ID, "", cookie)
	expectStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, "/api/attendance?date=May-2", "", cookie)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAttendanceDefaultsToCurrentMonth(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/attendance?month=13", "", cookie)
	expectStatus(t, rec, http.StatusOK)
	view := decodeBody[attendanceView](t, rec)
	if view.Year != 2025 || view.Month != 5 {
		t.Errorf("month = %d-%d, want 2025-5", view.Year, view.Month)
	}
	if view.Details != nil || len(view.Selected) != 0 {
		t.Errorf("unexpected selection %+v", view)
	}
}

func TestSaveAttendanceRejects(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)
	e, err := env.store.CreateEmployee(context.Background(), core.Employee{Name: "Suresh", Phone: "9", DailyWage: core.Money{Cents: 60000}, OvertimeRate: 1.5})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"hourly without hours", `{"date":"2025-05-02","entries":[{"employee_id":"` + e.ID + `","type":"hourly"}]}`, http.StatusUnprocessableEntity},
		{"unknown type", `{"date":"2025-05-02","entries":[{"employee_id":"` + e.ID + `","type":"leave"}]}`, http.StatusUnprocessableEntity},
		{"unknown employee", `{"date":"2025-05-02","entries":[{"employee_id":"ghost","type":"full_day"}]}`, http.StatusUnprocessableEntity},
		{"no entries", `{"date":"2025-05-02","entries":[]}`, http.StatusUnprocessableEntity},
		{"bad date", `{"date":"02/05/2025","entries":[{"employee_id":"` + e.ID + `","type":"full_day"}]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/attendance", tt.body, cookie)
			expectStatus(t, rec, tt.want)
		})
	}

	all, _ := env.store.ListAttendanceByDate(context.Background(), core.NewDate(2025, 5, 2))
	if len(all) != 0 {
		t.Errorf("rejected saves wrote %d records", len(all))
	}
}

func TestAdvances(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)
	ctx := context.Background()

	suresh, _ := env.store.CreateEmployee(ctx, core.Employee{Name: "Suresh", Phone: "9", DailyWage: core.Money{Cents: 60000}, OvertimeRate: 1.5})
	mahesh, _ := env.store.CreateEmployee(ctx, core.Employee{Name: "Mahesh", Phone: "8", DailyWage: core.Money{Cents: 50000}, OvertimeRate: 1.5})

	rec := env.do(t, http.MethodPost, "/api/advances", `{"employee_id":"`+suresh.ID+`","date":"2025-05-03","amount":1500,"transaction_type":"Cash"}`, cookie)
	expectStatus(t, rec, http.StatusCreated)
	if adv := decodeBody[records.AdvanceRecord](t, rec); adv.EmployeeName != "Suresh" || adv.Amount.Cents != 150000 {
		t.Errorf("advance = %+v", adv)
	}

	rec = env.do(t, http.MethodPost, "/api/advances", `{"employee_id":"ghost","date":"2025-05-03","amount":100}`, cookie)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	// A repayment recorded directly in storage cancels Mahesh's advance out.
	for _, cents := range []int64{20000, -20000} {
		if _, err := env.store.CreateAdvance(ctx, core.Advance{EmployeeID: mahesh.ID, Date: core.NewDate(2025, 5, 4), Amount: core.Money{Cents: cents}}); err != nil {
			t.Fatal(err)
		}
	}

	rec = env.do(t, http.MethodGet, "/api/advances", "", cookie)
	expectStatus(t, rec, http.StatusOK)
	view := decodeBody[advanceListView](t, rec)
	if len(view.Advances) != 3 {
		t.Fatalf("advances = %d, want 3", len(view.Advances))
	}
	if len(view.Totals) != 1 || view.Totals[0].EmployeeID != suresh.ID || view.Totals[0].Total.Cents != 150000 {
		t.Errorf("totals = %+v, want only Suresh", view.Totals)
	}
}

func TestSecurityLayers(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.AddCookie(cookie)
	req.Header.Set("X-Request-ID", "client-trace-0001")
	rec := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("X-Request-ID"); got != "client-trace-0001" {
		t.Errorf("X-Request-ID = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}

	rec = env.do(t, http.MethodGet, "/.env", "", nil)
	expectStatus(t, rec, http.StatusNotFound)

	if env.srv.RequestsServed() < 3 {
		t.Errorf("requests served = %d", env.srv.RequestsServed())
	}
}

func TestMutationRateLimit(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) {
		d.Limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 2, CleanupInterval: time.Hour})
	})

	// Login consumes one mutation slot.
	cookie := env.login(t)
	body := `{"name":"Suresh","phone":"9825012345","daily_wage":600}`

	rec := env.do(t, http.MethodPost, "/api/employees", body, cookie)
	expectStatus(t, rec, http.StatusCreated)
	rec = env.do(t, http.MethodPost, "/api/employees", body, cookie)
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	rec = env.do(t, http.MethodGet, "/api/employees", "", cookie)
	expectStatus(t, rec, http.StatusOK)
}
