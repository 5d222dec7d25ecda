package records

import (
	"strings"
	"time"

	"pankti/internal/core"
)

// Requests

type CustomerRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Address       string `json:"address" validate:"max=500"`
	Phone         string `json:"phone" validate:"required,max=32"`
	Location      string `json:"location" validate:"required,max=200"`
	WorkAmount    Amount `json:"work_amount" validate:"gt=0"`
	AdvanceAmount Amount `json:"advance_amount" validate:"gte=0"`
	WorkCompleted bool   `json:"work_completed"`
	ReferredBy    string `json:"referred_by" validate:"max=200"`
}

func (r CustomerRequest) Customer(id string) core.Customer {
	return core.Customer{
		ID:            id,
		Name:          strings.TrimSpace(r.Name),
		Address:       strings.TrimSpace(r.Address),
		Phone:         NormalizePhone(r.Phone),
		Location:      strings.TrimSpace(r.Location),
		WorkAmount:    r.WorkAmount.Money(),
		AdvanceAmount: r.AdvanceAmount.Money(),
		WorkCompleted: r.WorkCompleted,
		ReferredBy:    strings.TrimSpace(r.ReferredBy),
	}
}

type PaymentRequest struct {
	Amount      Amount `json:"amount" validate:"gt=0"`
	PaymentMode string `json:"payment_mode" validate:"max=50"`
	Notes       string `json:"notes" validate:"max=1000"`
}

func (r PaymentRequest) Payment(id, customerID string) core.Payment {
	return core.Payment{
		ID:          id,
		CustomerID:  customerID,
		Amount:      r.Amount.Money(),
		PaymentMode: strings.TrimSpace(r.PaymentMode),
		Notes:       strings.TrimSpace(r.Notes),
	}
}

type EmployeeRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Phone        string   `json:"phone" validate:"required,max=32"`
	Address      string   `json:"address" validate:"max=500"`
	DailyWage    Amount   `json:"daily_wage" validate:"gt=0"`
	OvertimeRate *float64 `json:"overtime_rate" validate:"omitempty,gt=0"`
}

func (r EmployeeRequest) Employee() core.Employee {
	rate := core.DefaultOvertimeRate
	if r.OvertimeRate != nil {
		rate = *r.OvertimeRate
	}
	return core.Employee{
		Name:         strings.TrimSpace(r.Name),
		Phone:        NormalizePhone(r.Phone),
		Address:      strings.TrimSpace(r.Address),
		DailyWage:    r.DailyWage.Money(),
		OvertimeRate: rate,
	}
}

type AttendanceEntry struct {
	EmployeeID string   `json:"employee_id" validate:"required"`
	Type       string   `json:"type" validate:"required,oneof=full_day half_day hourly absent ot_day"`
	Hours      *float64 `json:"hours"`
}

// AttendanceSaveRequest marks several employees for one date at once.
type AttendanceSaveRequest struct {
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

func (r AttendanceSaveRequest) Day() core.Date { return parseDay(r.Date) }

func (e AttendanceEntry) Attendance(d core.Date) core.Attendance {
	t := core.AttendanceType(e.Type)
	return core.Attendance{
		EmployeeID: e.EmployeeID,
		Date:       d,
		Type:       t,
		Hours:      core.NormalizeHours(t, e.Hours),
	}
}

type AdvanceRequest struct {
	EmployeeID      string `json:"employee_id" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Amount          Amount `json:"amount" validate:"gt=0"`
	TransactionType string `json:"transaction_type" validate:"max=50"`
	Notes           string `json:"notes" validate:"max=1000"`
}

func (r AdvanceRequest) Advance() core.Advance {
	return core.Advance{
		EmployeeID:      r.EmployeeID,
		Date:            parseDay(r.Date),
		Amount:          r.Amount.Money(),
		TransactionType: strings.TrimSpace(r.TransactionType),
		Notes:           strings.TrimSpace(r.Notes),
	}
}

type LoginRequest struct {
	PIN string `json:"pin" validate:"required,numeric,max=12"`
}

// Responses

type CustomerRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone"`
	Location      string    `json:"location"`
	WorkAmount    Amount    `json:"work_amount"`
	AdvanceAmount Amount    `json:"advance_amount"`
	WorkCompleted bool      `json:"work_completed"`
	ReferredBy    string    `json:"referred_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func FromCustomer(c core.Customer) CustomerRecord {
	return CustomerRecord{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		Location:      c.Location,
		WorkAmount:    AmountOf(c.WorkAmount),
		AdvanceAmount: AmountOf(c.AdvanceAmount),
		WorkCompleted: c.WorkCompleted,
		ReferredBy:    c.ReferredBy,
		CreatedAt:     c.CreatedAt,
	}
}

// CustomerBalanceRecord is a customer row together with its derived figures.
type CustomerBalanceRecord struct {
	CustomerRecord
	Balance Amount `json:"balance"`
	Pending Amount `json:"pending"`
}

func FromCustomerPending(row core.CustomerPending) CustomerBalanceRecord {
	return CustomerBalanceRecord{
		CustomerRecord: FromCustomer(row.Customer),
		Balance:        AmountOf(row.Balance),
		Pending:        AmountOf(row.Pending),
	}
}

type PaymentRecord struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	Amount      Amount    `json:"amount"`
	PaymentMode string    `json:"payment_mode,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromPayment(p core.Payment) PaymentRecord {
	return PaymentRecord{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Amount:      AmountOf(p.Amount),
		PaymentMode: p.PaymentMode,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

func FromPayments(ps []core.Payment) []PaymentRecord {
	out := make([]PaymentRecord, len(ps))
	for i, p := range ps {
		out[i] = FromPayment(p)
	}
	return out
}

type EmployeeRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address,omitempty"`
	DailyWage    Amount    `json:"daily_wage"`
	OvertimeRate float64   `json:"overtime_rate"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromEmployee(e core.Employee) EmployeeRecord {
	return EmployeeRecord{
		ID:           e.ID,
		Name:         e.Name,
		Phone:        e.Phone,
		Address:      e.Address,
		DailyWage:    AmountOf(e.DailyWage),
		OvertimeRate: e.OvertimeRate,
		CreatedAt:    e.CreatedAt,
	}
}

type AttendanceRecord struct {
	ID         string   `json:"id"`
	EmployeeID string   `json:"employee_id"`
	Date       string   `json:"date"`
	Type       string   `json:"type"`
	Hours      *float64 `json:"hours,omitempty"`
}

func FromAttendance(a core.Attendance) AttendanceRecord {
	return AttendanceRecord{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.Key(),
		Type:       string(a.Type),
		Hours:      a.Hours,
	}
}

type AdvanceRecord struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name,omitempty"`
	Date            string `json:"date"`
	Amount          Amount `json:"amount"`
	TransactionType string `json:"transaction_type,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func FromAdvance(a core.Advance, employeeName string) AdvanceRecord {
	return AdvanceRecord{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    employeeName,
		Date:            a.Date.Key(),
		Amount:          AmountOf(a.Amount),
		TransactionType: a.TransactionType,
		Notes:           a.Notes,
	}
}

type TotalsRecord struct {
	CustomerCount        int    `json:"customer_count"`
	TotalWorkValue       Amount `json:"total_work_value"`
	TotalPending         Amount `json:"total_pending"`
	CompletedWorkPending Amount `json:"completed_work_pending"`
}

func FromTotals(t core.PortfolioTotals) TotalsRecord {
	return TotalsRecord{
		CustomerCount:        t.CustomerCount,
		TotalWorkValue:       AmountOf(t.TotalWorkValue),
		TotalPending:         AmountOf(t.TotalPending),
		CompletedWorkPending: AmountOf(t.CompletedWorkPending),
	}
}
