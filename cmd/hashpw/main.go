// Command hashpw generates a bcrypt hash for the ADMIN_PASSWORD_HASH
// environment variable consumed by the admin login endpoint.
package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-relay/internal/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: hashpw [-cost N] <password>")
	}

	hash, err := auth.HashPassword(flag.Arg(0), *cost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
