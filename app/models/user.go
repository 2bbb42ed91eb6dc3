package models

// User is the primary user model.
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Order is a simple order model linked to a user.
type Order struct {
	ID     uint    `json:"id"`
	UserID uint    `json:"user_id"`
	Total  float64 `json:"total"`
	Status string  `json:"status"`
}
