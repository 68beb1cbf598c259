package handler

import (
	"encoding/json"
	"errors"
	"multibank-api/common"
	"multibank-api/model"
	"multibank-api/service"
	"net/http"
	"strconv"
)

// TransactionHandler holds dependencies for transfer-related handlers.
type TransactionHandler struct {
	service *service.TransferService
}

func NewTransactionHandler(s *service.TransferService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// CreateTransfer godoc
// @Summary      Transfer money between same-currency accounts
// @Description  Moves a specified amount between two internal accounts of the same currency. The user must own the source account; daily and monthly limits apply.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the source account"
// @Param        transfer body model.TransferRequest true "Details of the transfer"
// @Success      201  {object}  service.TransferResult
// @Failure      400  {object}  common.AppError "Bad request (insufficient funds, currency mismatch, invalid amount, limit exceeded)"
// @Failure      401  {object}  common.AppError "Unauthorized: invalid or missing token"
// @Failure      403  {object}  common.AppError "Forbidden: user does not own the source account"
// @Failure      404  {object}  common.AppError "Sender or receiver account not found"
// @Failure      500  {object}  common.AppError "Internal server error while processing transfer"
// @Router       /api/accounts/{accountId}/transfers [post]
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	fromAccountID, appErr := pathAccountID(r)
	if appErr != nil {
		return appErr
	}

	var req model.TransferRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	result, err := h.service.Transfer(r.Context(), userID, fromAccountID, req)
	if err != nil {
		return mapLedgerError(err, "Could not process transfer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
	return nil
}

// CreateExchangeTransfer godoc
// @Summary      Transfer money between accounts of different currencies
// @Description  Converts the amount at the current exchange rate and moves it between two internal accounts. Writes paired transfer_out/transfer_in records linked by a shared reference.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the source account"
// @Param        transfer body model.ExchangeTransferRequest true "Details of the cross-currency transfer"
// @Success      201  {object}  service.ExchangeTransferResult
// @Failure      400  {object}  common.AppError "Bad request (insufficient funds, same currency, invalid amount, limit exceeded)"
// @Failure      401  {object}  common.AppError "Unauthorized: invalid or missing token"
// @Failure      403  {object}  common.AppError "Forbidden: user does not own the source account"
// @Failure      404  {object}  common.AppError "Sender or receiver account not found"
// @Failure      502  {object}  common.AppError "No exchange rate available for the pair"
// @Router       /api/accounts/{accountId}/exchange-transfers [post]
func (h *TransactionHandler) CreateExchangeTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	fromAccountID, appErr := pathAccountID(r)
	if appErr != nil {
		return appErr
	}

	var req model.ExchangeTransferRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	result, err := h.service.TransferWithConversion(r.Context(), userID, fromAccountID, req)
	if err != nil {
		return mapLedgerError(err, "Could not process cross-currency transfer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
	return nil
}

// ListTransactionsForAccount godoc
// @Summary      List account transaction history
// @Description  Retrieves the transaction history for a specific account owned by the authenticated user.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the account to retrieve transactions for"
// @Success      200  {array}   model.Transaction
// @Failure      400  {object}  common.AppError "Invalid account ID in URL path"
// @Failure      401  {object}  common.AppError "Unauthorized: invalid or missing token"
// @Failure      403  {object}  common.AppError "Forbidden: user does not own the specified account"
// @Failure      404  {object}  common.AppError "Account with the specified ID not found"
// @Failure      500  {object}  common.AppError "Internal server error while retrieving transactions"
// @Router       /api/accounts/{accountId}/transactions [get]
func (h *TransactionHandler) ListTransactionsForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	accountIDStr := r.PathValue("accountId")
	accountID, err := strconv.Atoi(accountIDStr)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}

	transactions, err := h.service.ListTransactionsForAccount(r.Context(), userID, accountID)
	if err != nil {
		switch err {
		case service.ErrAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), err)
		case service.ErrPermissionDenied:
			return common.NewAppError(http.StatusForbidden, err.Error(), err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
	return nil
}

// mapLedgerError maps the transfer engine's typed failures to HTTP status
// codes. Limit violations carry their numeric context into the response body.
func mapLedgerError(err error, fallbackMessage string) *common.AppError {
	var limitErr *service.LimitExceededError
	if errors.As(err, &limitErr) {
		return common.NewAppError(http.StatusBadRequest, limitErr.Error(), err).WithContext(map[string]interface{}{
			"scope":     limitErr.Scope,
			"limit":     limitErr.Limit,
			"used":      limitErr.Used,
			"available": limitErr.Available,
		})
	}

	switch err {
	case service.ErrAccountNotFound, service.ErrSenderAccountNotFound, service.ErrReceiverAccountNotFound:
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case service.ErrPermissionDenied:
		return common.NewAppError(http.StatusForbidden, err.Error(), err)
	case service.ErrInsufficientFunds, service.ErrCurrencyMismatch, service.ErrSameAccountTransfer,
		service.ErrInvalidAmount, service.ErrInactiveAccount, service.ErrExternalAccount:
		return common.NewAppError(http.StatusBadRequest, err.Error(), err)
	case service.ErrConversionUnavailable:
		return common.NewAppError(http.StatusBadGateway, err.Error(), err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallbackMessage, err)
	}
}
