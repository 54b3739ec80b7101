package node

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw  string
		want Endpoint
	}{
		{"http://localhost:22000", Endpoint{Scheme: "http", Host: "localhost", Port: 22000}},
		{"https://rpc.example.com", Endpoint{Scheme: "https", Host: "rpc.example.com", Port: 443}},
		{"http://10.0.0.5", Endpoint{Scheme: "http", Host: "10.0.0.5", Port: 80}},
		{"http://[::1]:8545", Endpoint{Scheme: "http", Host: "::1", Port: 8545}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseEndpoint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEndpointErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"localhost:22000",
		"ws://localhost:8546",
		"http://",
		"http://localhost:0",
		"http://localhost:99999",
		"http://localhost:abc",
	} {
		_, err := ParseEndpoint(raw)
		assert.Error(t, err, raw)
	}
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:22000", Endpoint{Scheme: "http", Host: "localhost", Port: 22000}.URL())
	assert.Equal(t, "http://[::1]:8545", Endpoint{Scheme: "http", Host: "::1", Port: 8545}.String())
}

func TestFormatEther(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", FormatEther(wei))
	assert.Equal(t, "0", FormatEther(big.NewInt(0)))
	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
}
