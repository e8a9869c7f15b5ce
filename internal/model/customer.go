package model

import "time"

// Customer represents an account in the `customers` table.  Customers
// book executions; staff accounts manage the catalog and schedules.
// Only the bcrypt hash of the password is stored.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address (stored lower-cased).
//  Name         – display name.
//  PasswordHash – bcrypt hashed password.
//  Role         – CUSTOMER or STAFF.
//  IsActive     – whether the account is active.
type Customer struct {
	ID           uint64    // customers.id
	Email        string    // customers.email
	Name         string    // customers.name
	PasswordHash string    // customers.password_hash
	Role         string    // customers.role
	IsActive     bool      // customers.is_active
	CreatedAt    time.Time // customers.created_at
	UpdatedAt    time.Time // customers.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is never stored, only its SHA-256 hash.
type RefreshToken struct {
	ID         uint64     // refresh_tokens.id
	CustomerID uint64     // refresh_tokens.customer_id
	TokenHash  string     // refresh_tokens.token_hash
	ExpiresAt  time.Time  // refresh_tokens.expires_at
	RevokedAt  *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt  time.Time  // refresh_tokens.created_at
}
