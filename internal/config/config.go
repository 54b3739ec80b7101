package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"quorumkit/internal/ledger/retry"
	"quorumkit/internal/node"
)

type Config struct {
	// JSON-RPC endpoint of the Quorum node
	RPCURL string

	// Password used to unlock the sending account (empty skips unlocking)
	AccountPassword string

	// Unlock duration in seconds
	UnlockSeconds int

	// Sender override; empty selects the node's first account
	DefaultAccount string

	// Fixed gas limit ( 0 means estimate + buffer )
	GasLimit int64

	// Percentage added to gas estimates
	GasBufferPercent int64

	// Log level: debug, info, warn, error
	LogLevel string

	// Postgres URL for the journal ( empty means in-memory )
	DatabaseURL string

	// Loan backend HTTP port
	APIPort int

	// Deployed FiatLoanMatcher address used by the loan backend
	LoanContractAddress string

	// Path of the solc binary
	SolcPath string

	// Receipt polling for ordinary transactions
	Poll retry.Config

	// Receipt polling for contract creations
	DeployPoll retry.Config
}

// Load reads a .env file if present and returns the configuration from the
// environment
func Load() *Config {
	_ = godotenv.Load()

	port := getEnvAsInt("API_PORT", 0)
	if port == 0 {
		port = getEnvAsInt("PORT", 3000)
	}

	return &Config{
		RPCURL:              getEnv("RPC_URL", "http://localhost:22000"),
		AccountPassword:     getEnv("ACCOUNT_PASSWORD", ""),
		UnlockSeconds:       getEnvAsInt("ACCOUNT_UNLOCK_SECONDS", 600),
		DefaultAccount:      getEnv("DEFAULT_ACCOUNT", ""),
		GasLimit:            int64(getEnvAsInt("GAS_LIMIT", 0)),
		GasBufferPercent:    int64(getEnvAsInt("GAS_BUFFER_PERCENT", 10)),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		APIPort:             port,
		LoanContractAddress: getEnv("LOAN_CONTRACT_ADDRESS", ""),
		SolcPath:            getEnv("SOLC_PATH", "solc"),
		Poll:                retry.LoadConfig("POLL_", retry.TransactionDefaults()),
		DeployPoll:          retry.LoadConfig("DEPLOY_POLL_", retry.DeploymentDefaults()),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := node.ParseEndpoint(c.RPCURL); err != nil {
		return fmt.Errorf("RPC_URL: %w", err)
	}
	if c.DefaultAccount != "" && !common.IsHexAddress(c.DefaultAccount) {
		return fmt.Errorf("DEFAULT_ACCOUNT is not an address: %q", c.DefaultAccount)
	}
	if c.LoanContractAddress != "" && !common.IsHexAddress(c.LoanContractAddress) {
		return fmt.Errorf("LOAN_CONTRACT_ADDRESS is not an address: %q", c.LoanContractAddress)
	}
	if c.GasLimit < 0 {
		return fmt.Errorf("GAS_LIMIT must not be negative")
	}
	if c.GasBufferPercent < 0 {
		return fmt.Errorf("GAS_BUFFER_PERCENT must not be negative")
	}
	if c.UnlockSeconds < 0 {
		return fmt.Errorf("ACCOUNT_UNLOCK_SECONDS must not be negative")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", c.APIPort)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	return nil
}

// Helper: get env with default
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Helper: get int from env
func getEnvAsInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return val
}
