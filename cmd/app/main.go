// Package main TooliRent API.
//
// @title          TooliRent API
// @version        1.0
// @description    Tool rental booking and inventory reservation service.
// @BasePath       /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Use: Bearer <JWT>
package main

//go:generate go run github.com/swaggo/swag/cmd/swag init -g cmd/app/main.go -d ../../ -o ../../docs

import (
	"toolrent/config"
	"toolrent/di"
	"toolrent/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
