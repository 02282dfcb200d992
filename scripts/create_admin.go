// One-off: PG_DSN=... go run scripts/create_admin.go
// Seeds the admin account. Idempotent: does nothing if the username exists.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "PG_DSN is required")
		os.Exit(1)
	}
	email := envOr("ADMIN_EMAIL", "admin@sweetshop.com")
	username := envOr("ADMIN_USERNAME", "admin")
	password := envOr("ADMIN_PASSWORD", "admin123")

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		panic(err)
	}
	defer conn.Close(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		panic(err)
	}

	tag, err := conn.Exec(ctx, `
		INSERT INTO users (email, username, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (username) DO NOTHING`,
		email, username, string(hash),
	)
	if err != nil {
		panic(err)
	}
	if tag.RowsAffected() == 0 {
		fmt.Println("Admin user already exists!")
		return
	}
	fmt.Println("Admin user created successfully!")
	fmt.Printf("Username: %s\n", username)
	fmt.Printf("Email: %s\n", email)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
