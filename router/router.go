package router

import (
	"multibank-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(userHandler *handler.UserHandler, accountHandler *handler.AccountHandler, transactionHandler *handler.TransactionHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))

	// Authenticated user routes.
	mux.Handle("GET /api/accounts",
		handler.AuthMiddleware(handler.ErrorHandlingMiddleware(accountHandler.ListAccounts)))
	mux.Handle("POST /api/accounts/{accountId}/transfers",
		handler.AuthMiddleware(handler.ErrorHandlingMiddleware(transactionHandler.CreateTransfer)))
	mux.Handle("POST /api/accounts/{accountId}/exchange-transfers",
		handler.AuthMiddleware(handler.ErrorHandlingMiddleware(transactionHandler.CreateExchangeTransfer)))
	mux.Handle("GET /api/accounts/{accountId}/transactions",
		handler.AuthMiddleware(handler.ErrorHandlingMiddleware(transactionHandler.ListTransactionsForAccount)))

	// Administrative routes.
	mux.Handle("GET /api/admin/accounts",
		handler.AuthMiddleware(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(accountHandler.ListAllAccounts))))
	mux.Handle("POST /api/admin/accounts/{accountId}/deposit",
		handler.AuthMiddleware(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(accountHandler.Deposit))))
	mux.Handle("POST /api/admin/accounts/{accountId}/withdraw",
		handler.AuthMiddleware(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(accountHandler.Withdraw))))
	mux.Handle("PUT /api/admin/accounts/{accountId}/status",
		handler.AuthMiddleware(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(accountHandler.UpdateAccountStatus))))
	mux.Handle("PUT /api/admin/users/{userId}/role",
		handler.AuthMiddleware(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(userHandler.UpdateUserRole))))

	return mux
}
