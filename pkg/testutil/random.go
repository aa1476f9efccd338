package testutil

import (
	"fmt"
	"math/rand"
	"time"
)

// RandomString generates a random lowercase alphanumeric string.
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// RandomProjectName returns a name valid as an npm package name.
func RandomProjectName() string {
	return fmt.Sprintf("test-api-%s-%d", RandomString(6), time.Now().UnixNano()%100000)
}
