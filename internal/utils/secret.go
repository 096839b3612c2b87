package utils

import (
  "crypto/rand"
  "crypto/sha256"
  "encoding/base64"
  "fmt"

  "golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// SealSecret encrypts a plaintext value with a key derived from the app
// secret and returns it base64 encoded (nonce prepended).
func SealSecret(plain, secret string) (string, error) {
  if plain == "" {
    return "", nil
  }
  var nonce [nonceSize]byte
  if _, err := rand.Read(nonce[:]); err != nil {
    return "", fmt.Errorf("failed to generate nonce: %w", err)
  }
  key := sha256.Sum256([]byte(secret))
  sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &key)
  return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenSecret reverses SealSecret. It fails when the value was sealed with a
// different app secret or has been tampered with.
func OpenSecret(sealed, secret string) (string, error) {
  if sealed == "" {
    return "", nil
  }
  raw, err := base64.StdEncoding.DecodeString(sealed)
  if err != nil {
    return "", fmt.Errorf("sealed value is not valid base64: %w", err)
  }
  if len(raw) < nonceSize {
    return "", fmt.Errorf("sealed value too short")
  }
  var nonce [nonceSize]byte
  copy(nonce[:], raw[:nonceSize])
  key := sha256.Sum256([]byte(secret))
  plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &key)
  if !ok {
    return "", fmt.Errorf("could not decrypt sealed value")
  }
  return string(plain), nil
}
