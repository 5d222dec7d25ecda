package core

// Snapshot is an immutable view of every list the application works on,
// with the lookups built once so aggregations avoid rescanning.
type Snapshot struct {
	Customers  []Customer
	Payments   []Payment
	Employees  []Employee
	Attendance []Attendance
	Advances   []Advance

	PaymentsByCustomer PaymentIndex
	AttendanceByDate   AttendanceIndex
	employeesByID      map[string]Employee
	customersByID      map[string]Customer
}

// NewSnapshot builds the indexes for the given lists. The slices are kept as is
// and must not be modified afterwards.
func NewSnapshot(customers []Customer, payments []Payment, employees []Employee, attendance []Attendance, advances []Advance) *Snapshot {
	s := &Snapshot{
		Customers:          customers,
		Payments:           payments,
		Employees:          employees,
		Attendance:         attendance,
		Advances:           advances,
		PaymentsByCustomer: IndexPayments(payments),
		AttendanceByDate:   IndexAttendance(attendance),
		employeesByID:      make(map[string]Employee, len(employees)),
		customersByID:      make(map[string]Customer, len(customers)),
	}
	for _, e := range employees {
		s.employeesByID[e.ID] = e
	}
	for _, c := range customers {
		s.customersByID[c.ID] = c
	}
	return s
}

// Employee looks up an employee by id.
func (s *Snapshot) Employee(id string) (Employee, bool) {
	e, ok := s.employeesByID[id]
	return e, ok
}

// Customer looks up a customer by id.
func (s *Snapshot) Customer(id string) (Customer, bool) {
	c, ok := s.customersByID[id]
	return c, ok
}

// Totals computes the dashboard figures for the snapshot.
func (s *Snapshot) Totals() PortfolioTotals {
	return ComputePortfolioTotals(s.Customers, s.PaymentsByCustomer)
}

// CustomerList applies the list controls to the snapshot's customers.
func (s *Snapshot) CustomerList(q CustomerQuery) []CustomerPending {
	return FilterAndSortCustomers(s.Customers, s.PaymentsByCustomer, q)
}
