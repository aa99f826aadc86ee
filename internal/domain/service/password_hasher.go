// Package service declares the ports the collection use cases depend on:
// caching, locking, hashing, geocoding, image hosting, QR codes and events.
package service

// PasswordHasher turns client and partner passwords into stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Check reports whether password matches a hash produced by Hash.
	Check(password, hash string) bool
}
