package repository

import (
	"database/sql"
	"multibank-api/model"
)

// IUserRepository is the user directory consumed by ownership checks and
// account provisioning.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(userID int) (*model.User, error)
	UpdateUserRole(userID int, role string) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	query := `INSERT INTO users (username, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.DB.QueryRow(query, user.Username, user.Email, user.Password, user.Role).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, email, password, role, created_at FROM users WHERE email=$1`
	err := r.DB.QueryRow(query, email).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(userID int) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, email, role, created_at FROM users WHERE id=$1`
	err := r.DB.QueryRow(query, userID).Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateUserRole(userID int, role string) error {
	_, err := r.DB.Exec(`UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	return err
}
