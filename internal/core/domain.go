package core

import (
	"errors"
	"strings"
	"time"
)

const (
	FullDay AttendanceType = "full_day"
	HalfDay AttendanceType = "half_day"
	Hourly  AttendanceType = "hourly"
	Absent  AttendanceType = "absent"
	OTDay   AttendanceType = "ot_day"
)

// DefaultOvertimeRate is applied when an employee is created without one.
const DefaultOvertimeRate = 1.5

type (
	AttendanceType string

	Date struct {
		time.Time
	}

	// Money holds an amount in the smallest currency unit (paise).
	Money struct {
		Cents int64
	}

	Customer struct {
		ID            string
		Name          string
		Address       string // optional
		Phone         string
		Location      string
		WorkAmount    Money
		AdvanceAmount Money
		WorkCompleted bool
		ReferredBy    string // optional, another customer's name
		CreatedAt     time.Time
	}

	Payment struct {
		ID          string
		CustomerID  string
		Amount      Money
		PaymentMode string
		Notes       string
		CreatedAt   time.Time
	}

	Employee struct {
		ID           string
		Name         string
		Phone        string
		Address      string
		DailyWage    Money
		OvertimeRate float64
		CreatedAt    time.Time
	}

	Attendance struct {
		ID         string
		EmployeeID string
		Date       Date
		Type       AttendanceType
		Hours      *float64 // only for Hourly
		CreatedAt  time.Time
	}

	Advance struct {
		ID              string
		EmployeeID      string
		Date            Date
		Amount          Money
		TransactionType string
		Notes           string
		CreatedAt       time.Time
	}
)

// PaymentModes lists the labels offered by the entry form. The set is open.
var PaymentModes = []string{"cash", "upi", "bank transfer", "cheque", "other"}

// AdvanceTransactionTypes lists the labels offered for employee advances.
var AdvanceTransactionTypes = []string{"Cash", "Bank Transfer", "UPI", "Other"}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyPhone         = errors.New("empty phone number")
	ErrEmptyLocation      = errors.New("empty location")
	ErrAdvanceExceedsWork = errors.New("advance amount cannot be greater than work amount")
	ErrMissingCustomer    = errors.New("missing customer id")
	ErrMissingEmployee    = errors.New("missing employee id")
	ErrInvalidWage        = errors.New("invalid daily wage")
	ErrInvalidOvertime    = errors.New("invalid overtime rate")
	ErrInvalidType        = errors.New("invalid attendance type")
	ErrHoursRequired      = errors.New("hours must be greater than zero for hourly attendance")
	ErrInvalidHours       = errors.New("hours must be at most 24")
	ErrZeroDate           = errors.New("date cannot be zero")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Key returns the YYYY-MM-DD form used to index records by day.
func (d Date) Key() string {
	return d.Format(time.DateOnly)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// IsValid reports whether t is one of the known attendance types.
func (t AttendanceType) IsValid() bool {
	switch t {
	case FullDay, HalfDay, Hourly, Absent, OTDay:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Phone) == "" {
		return ErrEmptyPhone
	}
	if strings.TrimSpace(c.Location) == "" {
		return ErrEmptyLocation
	}
	if err := c.WorkAmount.Validate(); err != nil {
		return err
	}
	if c.AdvanceAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if c.AdvanceAmount.Cents > c.WorkAmount.Cents {
		return ErrAdvanceExceedsWork
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.CustomerID) == "" {
		return ErrMissingCustomer
	}
	return p.Amount.Validate()
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.Phone) == "" {
		return ErrEmptyPhone
	}
	if e.DailyWage.Cents <= 0 {
		return ErrInvalidWage
	}
	if e.OvertimeRate <= 0 {
		return ErrInvalidOvertime
	}
	return nil
}

func (a Attendance) Validate() error {
	if strings.TrimSpace(a.EmployeeID) == "" {
		return ErrMissingEmployee
	}
	if err := a.Date.Validate(); err != nil {
		return err
	}
	if !a.Type.IsValid() {
		return ErrInvalidType
	}
	if err := ValidateAttendanceSave(a.Type, a.Hours); err != nil {
		return err
	}
	if a.Type == Hourly && *a.Hours > 24 {
		return ErrInvalidHours
	}
	return nil
}

func (a Advance) Validate() error {
	if strings.TrimSpace(a.EmployeeID) == "" {
		return ErrMissingEmployee
	}
	if err := a.Date.Validate(); err != nil {
		return err
	}
	return a.Amount.Validate()
}
