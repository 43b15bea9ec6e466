package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Value is a protected secret. The zero value is empty.
type Value struct {
	mu        sync.Mutex
	enclave   *memguard.Enclave
	size      int
	destroyed bool
}

// Protect seals data into a Value and wipes data.
func Protect(data []byte) *Value {
	v := &Value{size: len(data)}
	if len(data) > 0 {
		// NewEnclave wipes its source.
		v.enclave = memguard.NewEnclave(data)
	}
	return v
}

// Len returns the size of the plaintext in bytes.
func (v *Value) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return 0
	}
	return v.size
}

// Empty reports whether the value holds no bytes.
func (v *Value) Empty() bool {
	return v.Len() == 0
}

// Reveal decrypts the value. A destroyed value reveals "".
func (v *Value) Reveal() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.destroyed || v.enclave == nil {
		return "", nil
	}

	locked, err := v.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()
	return string(locked.Bytes()), nil
}

// Destroy drops the enclave. It is safe to call more than once.
func (v *Value) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enclave = nil
	v.size = 0
	v.destroyed = true
}
