// handler/main_test.go
package handler

import (
	"multibank-api/config"
	"multibank-api/logger"
	"os"
	"testing"
)

// TestMain loads the configuration so the auth middleware has a signing key.
func TestMain(m *testing.M) {
	logger.Init()
	config.LoadConfig("../")
	os.Exit(m.Run())
}
