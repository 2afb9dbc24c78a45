package model

// Assignment records that a specific filter of a specific category matched
// a transaction.
type Assignment struct {
	CategoryName string
	FilterID     int
	FilterType   string
}

// AssignedTransaction pairs a transaction with the assignments produced for
// it. An empty assignment list is valid: not every transaction belongs to a
// category.
type AssignedTransaction struct {
	Transaction
	Assignments []Assignment
}
