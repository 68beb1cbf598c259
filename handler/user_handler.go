package handler

import (
	"encoding/json"
	"errors"
	"multibank-api/common"
	"multibank-api/logger"
	"multibank-api/model"
	"multibank-api/service"
	"net/http"
	"strconv"

	"github.com/lib/pq"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// registerResponse bundles the created user with the provisioned accounts.
type registerResponse struct {
	User     *model.User      `json:"user"`
	Accounts []*model.Account `json:"accounts"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user and provisions their default currency accounts (USD, EUR, USDT and optionally BRL).
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "Registration details"
// @Success      201  {object}  registerResponse
// @Failure      400  {object}  common.AppError "Invalid payload"
// @Failure      409  {object}  common.AppError "Email already registered"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	logger.Log.WithField("email", req.Email).Info("Register request received")

	user, accounts, err := h.service.Register(r.Context(), req)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return common.NewAppError(http.StatusConflict, "Email or username already registered", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not register user", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(registerResponse{User: user, Accounts: accounts})
	return nil
}

// Login godoc
// @Summary      Authenticate a user
// @Description  Verifies credentials and returns a signed bearer token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Login credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  common.AppError "Invalid payload"
// @Failure      401  {object}  common.AppError "Invalid email or password"
// @Router       /login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	token, user, err := h.service.Login(req)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			return common.NewAppError(http.StatusUnauthorized, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"token": token, "user": user})
	return nil
}

// UpdateUserRole godoc
// @Summary      Update a user's role
// @Description  Admin-only: promotes or demotes a user between the admin and user roles.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "The ID of the user"
// @Param        role body model.UpdateUserRoleRequest true "The new role"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError "Invalid payload or user ID"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /api/admin/users/{userId}/role [put]
func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) *common.AppError {
	userIDStr := r.PathValue("userId")
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid user ID in URL path", err)
	}

	var req model.UpdateUserRoleRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.service.UpdateUserRole(userID, req.Role); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not update user role", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "role updated"})
	return nil
}
