package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRefreshToken returns a random opaque token, hex-encoded.
func NewRefreshToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32 // 256 bit default
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewFileName returns a random basename (without extension) for stored
// uploads so client-supplied names never reach the filesystem.
func NewFileName() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
