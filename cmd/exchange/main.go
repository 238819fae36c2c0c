package main

import (
	stdLog "log"
	"time"

	"github.com/Astemirdum/book-exchange/exchange/app"
	"github.com/Astemirdum/book-exchange/exchange/config"
	"github.com/joho/godotenv"
)

// @title                       Book Exchange API
// @version                     1.0
// @description                 Peer-to-peer book exchange: listings, requests and their lifecycle.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, reading process environment")
	}
	cfg := config.NewConfig(
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
