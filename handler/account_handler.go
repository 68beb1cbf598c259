package handler

import (
	"encoding/json"
	"multibank-api/common"
	"multibank-api/logger"
	"multibank-api/model"
	"multibank-api/service"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	accountService  *service.AccountService
	transferService *service.TransferService
}

func NewAccountHandler(accountService *service.AccountService, transferService *service.TransferService) *AccountHandler {
	return &AccountHandler{
		accountService:  accountService,
		transferService: transferService,
	}
}

// ListAccounts godoc
// @Summary      List the authenticated user's accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Account
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	logger.Log.WithField("user_id", userID).Info("List accounts request received")

	accounts, err := h.accountService.ListAccountsForUser(r.Context(), userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// ListAllAccounts godoc
// @Summary      List every account
// @Description  Admin-only dashboard listing; bypasses the cache so balances are fresh.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Account
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /api/admin/accounts [get]
func (h *AccountHandler) ListAllAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	accounts, err := h.accountService.GetAllAccounts()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// Deposit godoc
// @Summary      Deposit funds into an account
// @Description  Admin-only funding operation. Deposits are exempt from transfer limits.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the account to credit"
// @Param        deposit body model.DepositRequest true "Deposit details"
// @Success      200  {object}  service.OperationResult
// @Failure      400  {object}  common.AppError "Invalid amount or inactive account"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "Account not found"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /api/admin/accounts/{accountId}/deposit [post]
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := pathAccountID(r)
	if appErr != nil {
		return appErr
	}

	var req model.DepositRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     req.Amount,
	}).Info("Deposit request received")

	result, err := h.transferService.Deposit(r.Context(), accountID, req.Amount, req.Description)
	if err != nil {
		return mapLedgerError(err, "Could not process deposit")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
	return nil
}

// Withdraw godoc
// @Summary      Withdraw funds from an account
// @Description  Admin-only funding operation. The balance may never go negative.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the account to debit"
// @Param        withdrawal body model.WithdrawRequest true "Withdrawal details"
// @Success      200  {object}  service.OperationResult
// @Failure      400  {object}  common.AppError "Invalid amount, inactive account or insufficient funds"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "Account not found"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /api/admin/accounts/{accountId}/withdraw [post]
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := pathAccountID(r)
	if appErr != nil {
		return appErr
	}

	var req model.WithdrawRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     req.Amount,
	}).Info("Withdrawal request received")

	result, err := h.transferService.Withdraw(r.Context(), accountID, req.Amount, req.Description)
	if err != nil {
		return mapLedgerError(err, "Could not process withdrawal")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
	return nil
}

// UpdateAccountStatus godoc
// @Summary      Update an account's status
// @Description  Admin-only: activates, suspends or closes an account.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the account"
// @Param        status body model.UpdateAccountStatusRequest true "The new status"
// @Success      200  {object}  model.Account
// @Failure      400  {object}  common.AppError "Invalid payload"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "Account not found"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /api/admin/accounts/{accountId}/status [put]
func (h *AccountHandler) UpdateAccountStatus(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := pathAccountID(r)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateAccountStatusRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	account, err := h.accountService.SetAccountStatus(r.Context(), accountID, req.Status)
	if err != nil {
		return mapLedgerError(err, "Could not update account status")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

func pathAccountID(r *http.Request) (int, *common.AppError) {
	accountID, err := strconv.Atoi(r.PathValue("accountId"))
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}
	return accountID, nil
}
