package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"pdf-rag-be/internal/config"
	"pdf-rag-be/internal/pkg/serverutils"

	"github.com/golang-jwt/jwt/v5"
)

// Mints a bearer token for the admin routes using JWT_SECRET.
func main() {
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set; admin routes are open")
		os.Exit(1)
	}

	token, err := serverutils.NewAdminToken(cfg.Auth.JWTSecret, *subject, jwt.MapClaims{
		"exp": time.Now().Add(*ttl).Unix(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
