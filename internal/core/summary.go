package core

// PortfolioTotals are the dashboard figures computed over every customer.
type PortfolioTotals struct {
	CustomerCount        int
	TotalWorkValue       Money
	TotalPending         Money
	CompletedWorkPending Money
}

// CustomerPending pairs a customer with its raw balance and clamped pending amount.
type CustomerPending struct {
	Customer Customer
	Balance  Money
	Pending  Money
}

// PresenceRatio is displayed as "Present/Days".
type PresenceRatio struct {
	Present int
	Days    int
}

// DayCell is one calendar day with its highlight status.
type DayCell struct {
	Date   Date
	Status DayStatus
}

// EmployeeDay pairs a selected employee with the record for the inspected day, if any.
type EmployeeDay struct {
	Employee Employee
	Record   *Attendance
}
