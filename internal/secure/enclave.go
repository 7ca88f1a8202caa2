package secure

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrEmpty is returned by ReadLine when the input holds no secret
var ErrEmpty = errors.New("no secret provided")

// SecureBuffer stores one secret in an encrypted memguard enclave
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewSecureBuffer seals data into an enclave. memguard wipes data in the
// process, so callers must not reuse the slice.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// FromString seals s. The string itself stays in Go memory until collected.
func FromString(s string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(s))
}

// ReadLine reads the first line of r, trims surrounding whitespace and seals
// it. The intermediate read buffer is wiped.
func ReadLine(r io.Reader) (*SecureBuffer, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	defer memguard.WipeBytes(line)
	if err != nil && err != io.EOF {
		return nil, err
	}

	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}
	secret := make([]byte, len(trimmed))
	copy(secret, trimmed)
	return NewSecureBuffer(secret)
}

// Open decrypts the secret into a locked buffer. The caller must Destroy it.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, errors.New("secure buffer already destroyed")
	}
	return s.enclave.Open()
}

// Reveal copies the plaintext out as a string. Use it only at the boundary
// of APIs that take one.
func (s *SecureBuffer) Reveal() (string, error) {
	locked, err := s.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()
	// string() copies; LockedBuffer.String aliases memory Destroy wipes
	return string(locked.Bytes()), nil
}

// Destroy drops the enclave. It is safe to call more than once.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}

// Purge wipes every memguard key and buffer. Call it on the way out.
func Purge() {
	memguard.Purge()
}
