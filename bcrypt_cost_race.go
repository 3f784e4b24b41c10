//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// Hashing at production cost makes race-enabled tests crawl.
const bcryptCost = bcrypt.DefaultCost
