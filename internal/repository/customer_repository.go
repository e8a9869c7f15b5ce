package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/utils"
)

// CustomerRepo provides access to the 'customers' table.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a customer and returns its ID.
func (r *CustomerRepo) Create(ctx context.Context, email, name, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customers (email, name, password_hash, role) VALUES (?,?,?,?)",
		email, name, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var c model.Customer
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,name,password_hash,role,is_active,created_at,updated_at FROM customers WHERE email=? LIMIT 1",
		email).Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.Role, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetByID fetches a customer by id.  Returns ErrCustomerNotFound when
// no row exists.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	var c model.Customer
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,name,password_hash,role,is_active,created_at,updated_at FROM customers WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.Role, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCustomerNotFound
	}
	return c, err
}
