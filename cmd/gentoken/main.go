// cmd/gentoken issues a signed access token for local development, where no
// staff directory is running.
// Uso: JWT_SECRET=... go run ./cmd/gentoken -rol caixa -user ana
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"barpos/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	rol := flag.String("rol", middleware.RolGerente, "atendente | caixa | gerente")
	user := flag.String("user", "dev", "username embedded in the token")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: *user,
		Rol:      *rol,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(signed)
}
