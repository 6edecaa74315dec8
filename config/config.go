// Package config loads cmd/solparse's runtime configuration from flags and
// environment, generalizing the pack's godotenv+viper wiring
// (orbas1-Synnergy's cmd/explorer/main.go and walletserver/config) into the
// one place in this repository that is allowed to touch either library —
// every other package stays configuration-free per spec.
package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultRPCURL is used when neither --rpc-url nor SOLANA_RPC_URL is set.
const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

// RPCRequestsPerSecond bounds rpcutil.Client's call rate for cmd/solparse.
const RPCRequestsPerSecond = 10

// Load reads a best-effort .env file (missing file is not an error, matching
// orbas1-Synnergy's `_ = godotenv.Load()` style) and wires viper's automatic
// environment lookup.
func Load() {
	_ = godotenv.Load()
	viper.SetEnvPrefix("")
	viper.AutomaticEnv()
}

// BindRPCURLFlag registers --rpc-url on cmd and binds it to SOLANA_RPC_URL,
// per spec §6.4.
func BindRPCURLFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("rpc-url", "", "Solana RPC endpoint URL (overrides SOLANA_RPC_URL)")
	_ = viper.BindPFlag("rpc-url", cmd.PersistentFlags().Lookup("rpc-url"))
	_ = viper.BindEnv("rpc-url", "SOLANA_RPC_URL")
}

// RPCURL resolves the effective RPC endpoint: --rpc-url, then
// SOLANA_RPC_URL, then DefaultRPCURL.
func RPCURL() string {
	if v := viper.GetString("rpc-url"); v != "" {
		return v
	}
	return DefaultRPCURL
}
