package models

// AdminTransaction is a transaction joined with its owner's name and the title
// of the goal it is attached to, if any.
type AdminTransaction struct {
	Transaction
	UserName  string  `json:"user_name"`
	GoalTitle *string `json:"goal_title"`
}

// AdminBill is a bill joined with its owner's name.
type AdminBill struct {
	Bill
	UserName string `json:"user_name"`
}

// AdminBalance is a balance snapshot joined with its owner's name.
type AdminBalance struct {
	Balance
	UserName string `json:"user_name"`
}
