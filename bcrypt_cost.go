//go:build !race

package auth

const bcryptCost = 14
