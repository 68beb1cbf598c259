// service/user_service_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"multibank-api/model"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(userID int) (*model.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUserRole(userID int, role string) error {
	args := m.Called(userID, role)
	return args.Error(0)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions the default account set after creating the user", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mockUsers := new(mockUserRepo)
		mockAccounts := new(MockAccountRepository)
		accountService := NewAccountService(db, mockAccounts, nil,
			ProvisioningConfig{DailyLimit: 10000, MonthlyLimit: 50000})
		userService := NewUserService(mockUsers, accountService)

		mockUsers.On("CreateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" && u.Role == model.RoleUser && u.Password != "password123"
		})).Run(func(args mock.Arguments) {
			args.Get(0).(*model.User).ID = 9
		}).Return(nil).Once()

		dbMock.ExpectBegin()
		mockAccounts.On("NextAccountSequence", mock.Anything, model.AccountTypeStandard).Return(int64(1), nil).Times(3)
		mockAccounts.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a *model.Account) bool {
			return a.UserID == 9
		})).Return(nil).Times(3)
		dbMock.ExpectCommit()

		user, accounts, err := userService.Register(ctx, model.RegisterRequest{
			Username: "newuser",
			Email:    "new@example.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.Equal(t, 9, user.ID)
		assert.Empty(t, user.Password)
		assert.Len(t, accounts, 3)
		mockUsers.AssertExpectations(t)
		mockAccounts.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("user creation failure stops provisioning", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockAccounts := new(MockAccountRepository)
		userService := NewUserService(mockUsers, NewAccountService(nil, mockAccounts, nil, ProvisioningConfig{}))

		mockUsers.On("CreateUser", mock.Anything).Return(errors.New("duplicate email")).Once()

		_, _, err := userService.Register(ctx, model.RegisterRequest{
			Username: "dupe",
			Email:    "dupe@example.com",
			Password: "password123",
		})

		assert.Error(t, err)
		mockAccounts.AssertNotCalled(t, "CreateAccount")
	})
}

func TestUserService_Login(t *testing.T) {
	hashed, err := HashPassword("password123")
	assert.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		userService := NewUserService(mockUsers, nil)
		mockUsers.On("GetUserByEmail", "user@example.com").Return(&model.User{
			ID:       1,
			Email:    "user@example.com",
			Password: hashed,
			Role:     model.RoleUser,
		}, nil).Once()

		token, user, err := userService.Login(model.LoginRequest{Email: "user@example.com", Password: "password123"})

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Empty(t, user.Password)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		userService := NewUserService(mockUsers, nil)
		mockUsers.On("GetUserByEmail", "user@example.com").Return(&model.User{
			ID:       1,
			Email:    "user@example.com",
			Password: hashed,
		}, nil).Once()

		_, _, err := userService.Login(model.LoginRequest{Email: "user@example.com", Password: "wrong"})

		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		userService := NewUserService(mockUsers, nil)
		mockUsers.On("GetUserByEmail", "ghost@example.com").Return(nil, sql.ErrNoRows).Once()

		_, _, err := userService.Login(model.LoginRequest{Email: "ghost@example.com", Password: "password123"})

		assert.Equal(t, ErrInvalidCredentials, err)
	})
}

func TestUserService_UpdateUserRole(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockUsers.On("UpdateUserRole", 1, "admin").Return(nil).Once()

		userService := NewUserService(mockUsers, nil)
		err := userService.UpdateUserRole(1, model.RoleAdmin)

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		expectedError := errors.New("database error")
		mockUsers.On("UpdateUserRole", 2, "user").Return(expectedError).Once()

		userService := NewUserService(mockUsers, nil)
		err := userService.UpdateUserRole(2, model.RoleUser)

		assert.Equal(t, expectedError, err)
	})

	t.Run("invalid role", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		userService := NewUserService(mockUsers, nil)

		err := userService.UpdateUserRole(3, "superuser")

		assert.Error(t, err)
		mockUsers.AssertNotCalled(t, "UpdateUserRole")
	})
}
