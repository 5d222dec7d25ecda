package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"pankti/internal/core"
	"pankti/internal/ports"
)

// SnapshotQuery selects which attendance records a snapshot carries. The
// other lists are always loaded in full.
type SnapshotQuery struct {
	Attendance ports.AttendanceFilter
	// SkipAttendance leaves the attendance list empty for views that never show it.
	SkipAttendance bool
}

// SnapshotService loads every list the aggregation engine works on.
type SnapshotService struct {
	store ports.Store
}

func NewSnapshotService(store ports.Store) *SnapshotService {
	return &SnapshotService{store: store}
}

// Load fetches the five lists concurrently. A list that fails to load is
// logged and treated as empty so the remaining views still render; only a
// cancelled context makes Load fail.
func (s *SnapshotService) Load(ctx context.Context, q SnapshotQuery) (*core.Snapshot, error) {
	var (
		customers  []core.Customer
		payments   []core.Payment
		employees  []core.Employee
		attendance []core.Attendance
		advances   []core.Advance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		customers = orEmpty(gctx, "customers", func() ([]core.Customer, error) { return s.store.ListCustomers(gctx) })
		return nil
	})
	g.Go(func() error {
		payments = orEmpty(gctx, "payments", func() ([]core.Payment, error) { return s.store.ListPayments(gctx) })
		return nil
	})
	g.Go(func() error {
		employees = orEmpty(gctx, "employees", func() ([]core.Employee, error) { return s.store.ListEmployees(gctx) })
		return nil
	})
	if q.SkipAttendance {
		attendance = []core.Attendance{}
	} else {
		g.Go(func() error {
			attendance = orEmpty(gctx, "attendance", func() ([]core.Attendance, error) { return s.store.ListAttendance(gctx, q.Attendance) })
			return nil
		})
	}
	g.Go(func() error {
		advances = orEmpty(gctx, "advances", func() ([]core.Advance, error) { return s.store.ListAdvances(gctx) })
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return core.NewSnapshot(customers, payments, employees, attendance, advances), nil
}

func orEmpty[T any](ctx context.Context, list string, load func() ([]T, error)) []T {
	items, err := load()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load list, using empty", "list", list, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}
