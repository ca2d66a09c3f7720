package solana

import "testing"

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"pump.fun program", "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P", true},
		{"wrapped SOL mint", "So11111111111111111111111111111111111111112", true},
		{"system program", "11111111111111111111111111111111", true},
		{"empty", "", false},
		{"invalid alphabet", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", false},
		{"too short", "abc", false},
		{"evm address", "0x6b175474e89094c44da98b954eedeac495271d0f", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAddress(tt.addr); got != tt.want {
				t.Errorf("IsValidAddress(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}
