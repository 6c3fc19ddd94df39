package utils

import (
	rndm "math/rand"
	"slices"

	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

func Contains(slice []string, value string) bool {
	return slices.Contains(slice, value)
}

// Without returns slice minus every occurrence of value.
func Without(slice []string, value string) []string {
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != value {
			out = append(out, s)
		}
	}
	return out
}
