package decoders

import (
	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/classify"
	"github.com/arkhaven/solparse/txview"
	"github.com/arkhaven/solparse/xfer"
)

// TradeDecoder is implemented by a protocol decoder that can surface swap
// legs.
type TradeDecoder interface {
	Trades() ([]Trade, error)
}

// LiquidityDecoder is implemented by a protocol decoder that can surface
// pool create/add/remove events.
type LiquidityDecoder interface {
	Liquidity() ([]PoolEvent, error)
}

// TransferDecoder is implemented by a protocol decoder that wants to surface
// its own curated transfer list rather than relying on the generic xfer
// extraction.
type TransferDecoder interface {
	Transfers() ([]xfer.Record, error)
}

// LaunchDecoder is implemented by a protocol decoder that can surface
// token-launch/pool-creation events.
type LaunchDecoder interface {
	LaunchEvents() ([]LaunchEvent, error)
}

// Decoder is any value a Builder can produce. It is intentionally `any`: a
// concrete decoder implements whatever subset of TradeDecoder/
// LiquidityDecoder/TransferDecoder/LaunchDecoder applies to it, and callers
// type-assert for the capability they need, per spec §9 "no inheritance."
type Decoder interface{}

// DexInfo names the program a Context was built for.
type DexInfo struct {
	ProgramID solana.PublicKey
	AMMName   string
	Route     *string
}

// Context is everything a Builder needs to construct a Decoder for one
// program id within one transaction.
type Context struct {
	View         *txview.View
	Instructions []classify.Instruction
	Transfers    map[solana.PublicKey][]xfer.Record
	Info         DexInfo
}

// Builder constructs a Decoder for the program id it is registered under.
type Builder func(Context) Decoder

// Registry maps program ids to the Builder that understands them. Instances
// are created per dexparser.Parser (never a package-level global) so tests
// can inject stub registries, per spec §9.
type Registry struct {
	builders map[solana.PublicKey]Builder
	order    []solana.PublicKey
}

// NewEmptyRegistry returns a Registry with no builders registered, for tests
// that want to inject a single stub.
func NewEmptyRegistry() *Registry {
	return &Registry{builders: make(map[solana.PublicKey]Builder)}
}

// Register adds or replaces the builder for id.
func (r *Registry) Register(id solana.PublicKey, b Builder) {
	if _, ok := r.builders[id]; !ok {
		r.order = append(r.order, id)
	}
	r.builders[id] = b
}

// Lookup returns the builder registered for id, if any.
func (r *Registry) Lookup(id solana.PublicKey) (Builder, bool) {
	b, ok := r.builders[id]
	return b, ok
}

// ProgramIDs returns every registered program id in registration order.
func (r *Registry) ProgramIDs() []solana.PublicKey {
	out := make([]solana.PublicKey, len(r.order))
	copy(out, r.order)
	return out
}

// Build constructs the Decoder registered for ctx.Info.ProgramID, recovering
// from any panic raised by the builder and reporting it as a false ok
// instead. Only the builder call is guarded: a panic raised later inside a
// decoder's capability methods is not recovered here.
func (r *Registry) Build(ctx Context) (dec Decoder, ok bool) {
	b, has := r.builders[ctx.Info.ProgramID]
	if !has {
		return nil, false
	}
	defer func() {
		if rec := recover(); rec != nil {
			dec, ok = nil, false
		}
	}()
	d := b(ctx)
	if d == nil {
		return nil, false
	}
	return d, true
}

// SupportedQuoteMints is the canonical mainnet quote-asset set the generic
// swap decoder checks a trade's direction against, per spec §6.6.
var SupportedQuoteMints = map[solana.PublicKey]struct{}{
	wrappedSOLMint: {},
	usdcMint:       {},
	usdtMint:       {},
}

var (
	wrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	usdcMint       = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	usdtMint       = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

// NewRegistry builds the default registry: one builder per protocol family
// this repository understands, plus Raydium/Orca pointed at the generic
// swap decoder (the router aggregators in programids.go get no entry). Protocol logic lives as plain
// functions/files inside this package rather than in nested subpackages
// (decoders/pumpfun, decoders/meteora, ...) as SPEC_FULL.md's package-map
// table names them: a subpackage whose Builder needs decoders.Context/Trade
// would import decoders, and NewRegistry living in decoders would need to
// import that subpackage back to register it — an import cycle. Flattening
// keeps the registry able to reference every family directly; see
// DESIGN.md.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()

	r.Register(pumpfunProgramID, newPumpfunDecoder)
	r.Register(pumpswapProgramID, newPumpswapDecoder)
	r.Register(meteoraDLMMProgramID, newMeteoraDecoder)
	r.Register(meteoraPoolsProgramID, newMeteoraDecoder)
	r.Register(meteoraDAMMV2ProgramID, newMeteoraDecoder)
	r.Register(meteoraDBCProgramID, newMeteoraDecoder)
	r.Register(jupiterProgramID, newJupiterDecoder)
	r.Register(okxDexRouterProgramID, newOKXDecoder)

	r.Register(raydiumV4ProgramID, newGenericDecoder)
	r.Register(raydiumCPMMProgramID, newGenericDecoder)
	r.Register(raydiumAMMProgramID, newGenericDecoder)
	r.Register(raydiumCLProgramID, newGenericDecoder)
	r.Register(raydiumLaunchlabProgramID, newGenericDecoder)
	r.Register(orcaProgramID, newGenericDecoder)

	return r
}
