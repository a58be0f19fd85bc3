package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEthereumAddress(t *testing.T) {
	tests := []struct {
		address string
		valid   bool
	}{
		{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true},
		{"f39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true},
		{"0x1234567890123456789012345678901234567890", true},
		{"0x123", false},
		{"", false},
		{"0xZZ9Fd6e51aad88F6F4ce6aB8827279cffFb92266", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidEthereumAddress(tt.address), tt.address)
	}
}
