package decoders

import "github.com/gagliardetto/solana-go"

// Program ids for every family NewRegistry wires up, sourced from the
// teacher's constants plus original_source/rust_parser/src/protocols/*.
var (
	pumpfunProgramID  = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	pumpswapProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

	meteoraDLMMProgramID  = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	meteoraPoolsProgramID = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")
	meteoraDAMMV2ProgramID = solana.MustPublicKeyFromBase58("cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG")
	meteoraDBCProgramID   = solana.MustPublicKeyFromBase58("dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN")

	jupiterProgramID      = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")
	okxDexRouterProgramID = solana.MustPublicKeyFromBase58("6m2CDdhRgxpH4WjvdzxAYbGxwdGUz5MziiL5jek2kBma")

	raydiumV4ProgramID       = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	raydiumCPMMProgramID     = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	raydiumAMMProgramID      = solana.MustPublicKeyFromBase58("5quBtoiQqxF9Jv6KYKctB59NT3gtJD2Y65kdnB1Uev3h")
	raydiumCLProgramID       = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	raydiumLaunchlabProgramID = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eBV1kYnmm")

	orcaProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
)

// Moonshot / router aggregators (Banana Gun, Mintech, Bloom, Nova, Maestro)
// deliberately have no registry entry: their own instructions carry no swap
// semantics, so registering a decoder against their program id would be
// wrong. The orchestrator instead descends into their inner instructions and
// dispatches by the *inner* program id, ported from the teacher's
// processRouterSwaps — any program id not found by Registry.Lookup is
// handled this way, which covers router aggregators without needing their
// program ids named here at all.

// ammNames maps every registered program id to the human-readable name the
// orchestrator attaches to DexInfo.AMMName, so a generic-decoder trade
// (Raydium, Orca) carries the right amm label without dexparser needing its
// own copy of this program-id table.
var ammNames = map[solana.PublicKey]string{
	pumpfunProgramID:          "Pumpfun",
	pumpswapProgramID:         "Pumpswap",
	meteoraDLMMProgramID:      "Meteora DLMM",
	meteoraPoolsProgramID:     "Meteora DAMM",
	meteoraDAMMV2ProgramID:    "Meteora DAMM v2",
	meteoraDBCProgramID:       "Meteora DBC",
	jupiterProgramID:          "Jupiter",
	okxDexRouterProgramID:     "OKX DEX",
	raydiumV4ProgramID:        "Raydium",
	raydiumCPMMProgramID:      "Raydium CPMM",
	raydiumAMMProgramID:       "Raydium AMM",
	raydiumCLProgramID:        "Raydium CLMM",
	raydiumLaunchlabProgramID: "Raydium Launchlab",
	orcaProgramID:             "Orca",
}

// AMMNameFor returns the human-readable AMM name registered for id, or
// ("Unknown DEX", false) when id isn't one this repository recognizes — the
// label spec §4.6/S4 calls for when the generic-decoder fallback fires
// against an unregistered program.
func AMMNameFor(id solana.PublicKey) (string, bool) {
	name, ok := ammNames[id]
	if !ok {
		return "Unknown DEX", false
	}
	return name, true
}
