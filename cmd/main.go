// cmd/main.go
package main

import (
	"go-auth-api/app"

	_ "go-auth-api/docs"
)

// @title           Auth Core API
// @version         1.0
// @description     Distributed session/authentication core: issues, rotates and validates token pairs for the platform services.

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
