package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"multibank-api/logger"
	"multibank-api/model"
	"multibank-api/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService handles user-related business logic. Registration also
// provisions the user's default currency accounts.
type UserService struct {
	userRepo       repository.IUserRepository
	accountService *AccountService
}

func NewUserService(userRepo repository.IUserRepository, accountService *AccountService) *UserService {
	return &UserService{
		userRepo:       userRepo,
		accountService: accountService,
	}
}

// Register creates the user record and then provisions the default account
// set. The account set itself is created atomically.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, []*model.Account, error) {
	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, nil, fmt.Errorf("could not create user: %w", err)
	}

	accounts, err := s.accountService.CreateDefaultAccounts(ctx, user.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Account provisioning failed after user creation")
		return nil, nil, fmt.Errorf("could not provision default accounts: %w", err)
	}

	user.Password = ""
	return user, accounts, nil
}

// Login verifies the credentials and issues a signed token.
func (s *UserService) Login(req model.LoginRequest) (string, *model.User, error) {
	user, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !CheckPasswordHash(req.Password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(user)
	if err != nil {
		return "", nil, err
	}

	user.Password = ""
	return token, user, nil
}

// GetUserByID resolves a user for ownership checks and display purposes.
func (s *UserService) GetUserByID(userID int) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserRole validates the role and calls the repository to update it.
func (s *UserService) UpdateUserRole(userID int, newRole model.Role) error {
	if newRole != model.RoleAdmin && newRole != model.RoleUser {
		return errors.New("invalid role specified")
	}
	return s.userRepo.UpdateUserRole(userID, string(newRole))
}
