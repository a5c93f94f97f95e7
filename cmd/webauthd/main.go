package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	webauth "github.com/caldris/go-webauth"
)

func main() {
	cfg, err := webauth.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("webauthd: config: %v", err)
	}

	dsn := os.Getenv("AUTH_DATABASE_DSN")
	if dsn == "" {
		dsn = "file:webauth.db?cache=shared"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		log.Fatalf("webauthd: open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*webauth.Account)(nil)).
		IfNotExists().
		Exec(context.Background()); err != nil {
		log.Fatalf("webauthd: create tables: %v", err)
	}

	repos := webauth.NewRepositoryManager(db)
	repos.MustValidate()

	auther := webauth.NewAuthenticator(repos.Accounts(), cfg)

	app := fiber.New()
	webauth.RegisterAuthRoutes(app,
		webauth.WithControllerAuther(auther),
		webauth.WithControllerConfig(cfg),
	)

	addr := os.Getenv("AUTH_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	if err := app.Listen(addr); err != nil {
		log.Fatalf("webauthd: %v", err)
	}
}
