// cmd/main.go
package main

import (
	"multibank-api/app"
)

// @title           Multibank API
// @version         1.0
// @description     Multi-currency banking back office: accounts, transfers and currency conversion.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
