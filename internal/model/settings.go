package model

import "time"

// Settings is the singleton (ID 1) holding admin-editable preferences.
type Settings struct {
	ID           int       `json:"id"`
	InvoiceEmail string    `json:"invoice_email"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InvoiceCounter is the singleton (ID 1) sequence used for invoice numbers.
type InvoiceCounter struct {
	ID            int       `json:"id"`
	CurrentNumber int       `json:"current_number"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// User is a login identity.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
