package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"pankti/internal/amqp"
	"pankti/internal/core"
	applog "pankti/internal/log"
	"pankti/internal/ports"
)

// ErrValidation marks errors caused by invalid input rather than storage.
var ErrValidation = errors.New("validation failed")

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Publisher announces ledger changes to the export pipeline.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService orchestrates writes across storage and AMQP.
type LedgerService struct {
	store     ports.Store
	publisher Publisher
	log       *applog.StructuredLogger
}

// NewLedgerService builds the service. publisher may be nil, in which case
// no ledger events are sent.
func NewLedgerService(store ports.Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		log:       applog.NewStructuredLogger(applog.Default(applog.ComponentLedger)),
	}
}

// Customers

func (s *LedgerService) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, invalid(err)
	}
	created, err := s.store.CreateCustomer(ctx, c)
	if err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

func (s *LedgerService) UpdateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, invalid(err)
	}
	updated, err := s.store.UpdateCustomer(ctx, c)
	if err != nil {
		return core.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}

// DeleteCustomer removes the customer and every payment recorded against it.
func (s *LedgerService) DeleteCustomer(ctx context.Context, id string) error {
	payments, err := s.store.ListPaymentsByCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("list customer payments: %w", err)
	}
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	for _, p := range payments {
		s.publish(ctx, amqp.KindPayment, p.ID, amqp.OpDelete)
	}
	return nil
}

// Payments

func (s *LedgerService) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, invalid(err)
	}
	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	s.log.LogLedgerWrite(ctx, applog.OpCreate, "payment", created.ID, created.Amount.Cents)
	s.publish(ctx, amqp.KindPayment, created.ID, amqp.OpUpsert)
	return created, nil
}

// UpdatePayment changes amount, mode and notes of an existing payment.
func (s *LedgerService) UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	current, err := s.store.GetPayment(ctx, p.ID)
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	current.Amount = p.Amount
	current.PaymentMode = p.PaymentMode
	current.Notes = p.Notes
	if err := current.Validate(); err != nil {
		return core.Payment{}, invalid(err)
	}

	updated, err := s.store.UpdatePayment(ctx, current)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment: %w", err)
	}
	s.log.LogLedgerWrite(ctx, applog.OpUpdate, "payment", updated.ID, updated.Amount.Cents)
	s.publish(ctx, amqp.KindPayment, updated.ID, amqp.OpUpsert)
	return updated, nil
}

func (s *LedgerService) DeletePayment(ctx context.Context, id string) error {
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	s.log.LogLedgerWrite(ctx, applog.OpDelete, "payment", id, 0)
	s.publish(ctx, amqp.KindPayment, id, amqp.OpDelete)
	return nil
}

// Employees

func (s *LedgerService) CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	if e.OvertimeRate == 0 {
		e.OvertimeRate = core.DefaultOvertimeRate
	}
	if err := e.Validate(); err != nil {
		return core.Employee{}, invalid(err)
	}
	created, err := s.store.CreateEmployee(ctx, e)
	if err != nil {
		return core.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return created, nil
}

// Attendance

// SaveAttendanceDay records attendance for several employees on one date.
// Every entry is checked before anything is written. An employee that already
// has a record on that date gets it updated, otherwise a new one is created.
func (s *LedgerService) SaveAttendanceDay(ctx context.Context, day core.Date, entries []core.Attendance) ([]core.Attendance, error) {
	if err := day.Validate(); err != nil {
		return nil, invalid(err)
	}
	if len(entries) == 0 {
		return nil, invalid(errors.New("no attendance entries"))
	}

	entries = slices.Clone(entries)
	seen := make(map[string]struct{}, len(entries))
	for i := range entries {
		e := &entries[i]
		e.Date = day
		e.Hours = core.NormalizeHours(e.Type, e.Hours)
		if err := e.Validate(); err != nil {
			return nil, invalid(fmt.Errorf("entry %d: %w", i, err))
		}
		if _, dup := seen[e.EmployeeID]; dup {
			return nil, invalid(fmt.Errorf("entry %d: employee %s listed twice", i, e.EmployeeID))
		}
		seen[e.EmployeeID] = struct{}{}

		if _, err := s.store.GetEmployee(ctx, e.EmployeeID); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil, invalid(fmt.Errorf("entry %d: unknown employee %s", i, e.EmployeeID))
			}
			return nil, fmt.Errorf("get employee: %w", err)
		}
	}

	existing, err := s.store.ListAttendanceByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", day.Key(), err)
	}
	byEmployee := make(map[string]core.Attendance, len(existing))
	for _, a := range existing {
		byEmployee[a.EmployeeID] = a
	}

	saved := make([]core.Attendance, 0, len(entries))
	for _, e := range entries {
		var (
			rec core.Attendance
			err error
		)
		if cur, ok := byEmployee[e.EmployeeID]; ok {
			cur.Type = e.Type
			cur.Hours = e.Hours
			rec, err = s.store.UpdateAttendance(ctx, cur)
		} else {
			rec, err = s.store.CreateAttendance(ctx, e)
		}
		if err != nil {
			return saved, fmt.Errorf("save attendance for employee %s: %w", e.EmployeeID, err)
		}
		saved = append(saved, rec)
	}

	slog.InfoContext(ctx, "Saved attendance day", "date", day.Key(), "entries", len(saved))
	return saved, nil
}

func (s *LedgerService) DeleteAttendance(ctx context.Context, id string) error {
	if err := s.store.DeleteAttendance(ctx, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// Advances

func (s *LedgerService) CreateAdvance(ctx context.Context, a core.Advance) (core.Advance, error) {
	if err := a.Validate(); err != nil {
		return core.Advance{}, invalid(err)
	}
	if _, err := s.store.GetEmployee(ctx, a.EmployeeID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return core.Advance{}, invalid(fmt.Errorf("unknown employee %s", a.EmployeeID))
		}
		return core.Advance{}, fmt.Errorf("get employee: %w", err)
	}
	created, err := s.store.CreateAdvance(ctx, a)
	if err != nil {
		return core.Advance{}, fmt.Errorf("create advance: %w", err)
	}
	s.log.LogLedgerWrite(ctx, applog.OpCreate, "advance", created.ID, created.Amount.Cents)
	s.publish(ctx, amqp.KindAdvance, created.ID, amqp.OpUpsert)
	return created, nil
}

// publish sends a ledger event. Failures are logged only: the write already
// succeeded and the export is best-effort.
func (s *LedgerService) publish(ctx context.Context, kind amqp.EventKind, id string, op amqp.EventOp) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event", "kind", kind, "id", id)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(kind, id, op)); err != nil {
		s.log.LogError(ctx, "Failed to publish ledger "+string(op)+" event", err, applog.OpPublish,
			applog.NewFields().WithRecord(string(kind), id))
	}
}
