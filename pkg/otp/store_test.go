package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreVerify(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)

	store.Set("user@example.com", "123456")
	assert.NoError(t, store.Verify("user@example.com", "123456"))

	err := store.Verify("user@example.com", "654321")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect OTP")

	err = store.Verify("other@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no OTP requested")
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }

	store.Set("user@example.com", "123456")

	current = current.Add(9 * time.Minute)
	assert.NoError(t, store.Verify("user@example.com", "123456"))

	current = current.Add(2 * time.Minute)
	err := store.Verify("user@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTP has expired")

	// Expired entry is evicted: a later check reports no code at all.
	err = store.Verify("user@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no OTP requested")
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)

	store.Set("user@example.com", "111111")
	store.Set("user@example.com", "222222")

	// Last request wins.
	assert.Error(t, store.Verify("user@example.com", "111111"))
	assert.NoError(t, store.Verify("user@example.com", "222222"))
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)

	store.Set("user@example.com", "123456")
	store.Delete("user@example.com")

	err := store.Verify("user@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no OTP requested")
}
