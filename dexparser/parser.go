package dexparser

import (
	"context"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/arkhaven/solparse/classify"
	"github.com/arkhaven/solparse/decoders"
	"github.com/arkhaven/solparse/meta"
	"github.com/arkhaven/solparse/txview"
	"github.com/arkhaven/solparse/wire"
	"github.com/arkhaven/solparse/xfer"
	"github.com/arkhaven/solparse/xlog"
)

// Mode selects which record families a Parse call produces, per spec §4.7.
type Mode int

const (
	ModeTrades Mode = iota
	ModeLiquidity
	ModeTransfers
	ModeAll
)

func (m Mode) wantsTrades() bool     { return m == ModeTrades || m == ModeAll }
func (m Mode) wantsLiquidity() bool  { return m == ModeLiquidity || m == ModeAll }
func (m Mode) wantsTransfers() bool  { return m == ModeTransfers || m == ModeAll }
func (m Mode) wantsLaunchEvents() bool { return m == ModeAll }

// ParseMode parses the CLI/config string form of Mode ("trades", "liquidity",
// "transfers", "all"), matching spec §6.4's `--mode` flag values.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "all":
		return ModeAll, nil
	case "trades":
		return ModeTrades, nil
	case "liquidity":
		return ModeLiquidity, nil
	case "transfers":
		return ModeTransfers, nil
	default:
		return ModeAll, &ErrUnknownMode{Mode: s}
	}
}

// ErrUnknownMode is returned by ParseMode for any value that isn't one of
// the four recognized modes.
type ErrUnknownMode struct{ Mode string }

func (e *ErrUnknownMode) Error() string { return "dexparser: unknown mode " + e.Mode }

// Config carries the orchestrator's recognized options, per spec §4.7.
type Config struct {
	TryUnknownDEX    bool
	ProgramIDs       []solana.PublicKey // whitelist; empty means "no restriction"
	IgnoreProgramIDs []solana.PublicKey // blacklist
	ThrowError       bool
	AggregateTrades  bool
}

// DefaultConfig returns Config with the spec's documented defaults:
// TryUnknownDEX=true, AggregateTrades=true.
func DefaultConfig() Config {
	return Config{TryUnknownDEX: true, AggregateTrades: true}
}

func (c Config) allowed(id solana.PublicKey) bool {
	for _, ig := range c.IgnoreProgramIDs {
		if ig.Equals(id) {
			return false
		}
	}
	if len(c.ProgramIDs) == 0 {
		return true
	}
	for _, p := range c.ProgramIDs {
		if p.Equals(id) {
			return true
		}
	}
	return false
}

// Parser is the orchestrator: one instance wraps a decoder registry and a
// Config, and is reentrant (no mutable state touched by Parse survives the
// call), per spec §5 — callers obtain parallelism by calling Parse from
// multiple goroutines against independent Requests.
type Parser struct {
	registry *decoders.Registry
	cfg      Config
	log      *logrus.Entry
}

// New builds a Parser around registry and cfg. registry is owned by this
// Parser instance, never a package-level global, so tests can inject a
// stub registry (decoders.NewEmptyRegistry()) without touching shared
// state, per spec §9 "Global state."
func New(registry *decoders.Registry, cfg Config) *Parser {
	return &Parser{registry: registry, cfg: cfg, log: xlog.For("dexparser")}
}

// Request bundles everything one Parse call needs: the raw wire-format
// transaction message bytes (decoded internally, so a wire decoding error surfaces as
// ParseResult{State:false} rather than a Go error, per spec §7), the
// projected metadata, and the three fields the wire format itself never
// carries (signature, slot, block time) which the external collaborator —
// the WebSocket/RPC client — supplies alongside the raw bytes per §6.1/§6.2.
// Message, when set, is used directly instead of decoding TxBytes — the
// escape hatch for callers on the "fully materialised transaction" branch of
// spec §6.1, which never has raw wire bytes to begin with
// (ingest.DecodeStreamNotification builds a wire.Message straight from JSON
// in that case and the caller sets this field from it; TxBytes is ignored
// when Message is non-nil).
type Request struct {
	TxBytes   []byte
	Message   *wire.Message
	Meta      *meta.Meta
	Signature solana.Signature
	Slot      uint64
	BlockTime time.Time
}

// Parse runs the full pipeline — §4.7 steps 1-9 — and returns a ParseResult.
// The returned error is always nil: malformed wire bytes (a nil req.TxBytes
// included) and an empty classified program set under a whitelist are
// reported through ParseResult.State/.Msg instead, per spec §7. A decoder
// whose builder panics is skipped by Registry.Build without a report; a
// panic inside a decoder's capability methods is not recovered.
func (p *Parser) Parse(ctx context.Context, req Request, mode Mode) (*ParseResult, error) {
	var msg wire.Message
	if req.Message != nil {
		msg = *req.Message
	} else {
		decoded, err := wire.ParseOwned(req.TxBytes)
		if err != nil {
			return p.fail(req, "wire decode failed: "+err.Error()), nil
		}
		msg = decoded
	}

	m := req.Meta
	if m == nil {
		m = meta.FromRPC(nil)
	}

	v := txview.New(msg, m)
	signer, _ := v.Signer()

	result := &ParseResult{
		State:              true,
		Signature:          req.Signature,
		Slot:               req.Slot,
		Timestamp:          req.BlockTime,
		Signer:             signer,
		Fee:                lamportsToTokenAmount(v.Fee()),
		ComputeUnits:       v.ComputeUnits(),
		TxStatus:           v.Status().String(),
		TokenBalanceChange: map[solana.PublicKey]BalanceDelta{},
	}
	if sd := v.SignerSOLDelta(); sd != (txview.BalanceDelta{}) {
		bd := BalanceDelta{Pre: sd.Pre, Post: sd.Post, Change: sd.Change}
		result.SolBalanceChange = &bd
	}
	for mint, d := range v.SignerTokenDeltas() {
		result.TokenBalanceChange[mint] = BalanceDelta{Pre: d.Pre, Post: d.Post, Change: d.Change}
	}

	cl := classify.New(v)
	programIDs := filterProgramIDs(cl.ProgramIDs(), p.cfg)
	if len(p.cfg.ProgramIDs) > 0 && len(programIDs) == 0 {
		result.State = false
		result.Msg = "no classified program matched the configured whitelist"
		return result, nil
	}

	transfers := xfer.Extract(v, req.Signature, req.BlockTime)

	var trades []Trade
	var liquidities []PoolEvent
	var launchEvents []LaunchEvent

	for _, pid := range programIDs {
		instrs := cl.InstructionsOf(pid)
		ammName, registered := decoders.AMMNameFor(pid)
		dctx := decoders.Context{
			View:         v,
			Instructions: instrs,
			Transfers:    transfers,
			Info:         decoders.DexInfo{ProgramID: pid, AMMName: ammName},
		}
		dec, built := p.build(dctx)

		if mode.wantsTrades() {
			if td, ok := dec.(decoders.TradeDecoder); built && ok {
				ts, err := td.Trades()
				if err != nil {
					p.logDecoderError(req.Signature, pid, "trades", err)
				}
				trades = append(trades, ts...)
			} else if p.cfg.TryUnknownDEX && !registered {
				if ts := p.unknownDexTrades(dctx); len(ts) > 0 {
					trades = append(trades, ts...)
				}
			}
		}

		if mode.wantsLiquidity() {
			if ld, ok := dec.(decoders.LiquidityDecoder); built && ok {
				ls, err := ld.Liquidity()
				if err != nil {
					p.logDecoderError(req.Signature, pid, "liquidity", err)
				}
				liquidities = append(liquidities, ls...)
			}
		}

		if mode.wantsLaunchEvents() {
			if lnd, ok := dec.(decoders.LaunchDecoder); built && ok {
				es, err := lnd.LaunchEvents()
				if err != nil {
					p.logDecoderError(req.Signature, pid, "launchEvents", err)
				}
				launchEvents = append(launchEvents, es...)
			}
		}
	}

	trades = dedupAndSortTrades(trades)

	var transferRecords []TransferRecord
	if mode.wantsTransfers() && len(trades) == 0 && len(liquidities) == 0 {
		transferRecords = p.fallbackTransfers(cl, transfers, programIDs)
	}

	result.Trades = trades
	result.Liquidities = liquidities
	result.MemeEvents = launchEvents
	result.Transfers = transferRecords

	if p.cfg.AggregateTrades && len(trades) > 0 {
		agg := trades[len(trades)-1]
		agg.Fee = &FeeInfo{Amount: lamportsToTokenAmount(v.Fee()), Kind: "network"}
		result.AggregateTrade = &agg
	}

	return result, nil
}

func (p *Parser) build(ctx decoders.Context) (decoders.Decoder, bool) {
	dec, ok := p.registry.Build(ctx)
	if !ok && p.cfg.ThrowError {
		p.log.WithField("programId", ctx.Info.ProgramID.String()).Debug("no decoder registered")
	}
	return dec, ok
}

func (p *Parser) logDecoderError(sig solana.Signature, pid solana.PublicKey, capability string, err error) {
	if !p.cfg.ThrowError {
		return
	}
	p.log.WithFields(logrus.Fields{
		"signature":  sig.String(),
		"programId":  pid.String(),
		"capability": capability,
	}).WithError(err).Warn("decoder capability failed")
}

// unknownDexTrades runs the generic swap decoder against an unregistered
// program id, the try_unknown_dex fallback from spec §4.7 step 4.
func (p *Parser) unknownDexTrades(dctx decoders.Context) []Trade {
	legs := dctx.Transfers[dctx.Info.ProgramID]
	if len(legs) < 2 {
		return nil
	}
	hasQuote := false
	for _, leg := range legs {
		if _, ok := decoders.SupportedQuoteMints[leg.Mint]; ok {
			hasQuote = true
			break
		}
	}
	if !hasQuote {
		return nil
	}
	dctx.Info.AMMName = "Unknown DEX"
	dec := decoders.NewEmptyRegistry()
	dec.Register(dctx.Info.ProgramID, decoders.NewGenericBuilder())
	built, ok := dec.Build(dctx)
	if !ok {
		return nil
	}
	td, ok := built.(decoders.TradeDecoder)
	if !ok {
		return nil
	}
	ts, err := td.Trades()
	if err != nil {
		p.logDecoderError(solana.Signature{}, dctx.Info.ProgramID, "trades", err)
		return nil
	}
	return ts
}

// fallbackTransfers implements spec §4.7 step 7: when no higher-level event
// fired, fall back to the transfer listing of the dominant classified
// program (most transfer legs), or the flat list of everything extracted if
// none of the classified programs produced any.
func (p *Parser) fallbackTransfers(cl *classify.Classifier, transfers map[solana.PublicKey][]xfer.Record, programIDs []solana.PublicKey) []TransferRecord {
	var dominant solana.PublicKey
	best := -1
	for _, pid := range programIDs {
		if n := len(transfers[pid]); n > best {
			best = n
			dominant = pid
		}
	}
	var recs []xfer.Record
	if best > 0 {
		recs = transfers[dominant]
	} else {
		for _, rs := range transfers {
			recs = append(recs, rs...)
		}
	}
	out := make([]TransferRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, toTransferRecord(r))
	}
	return out
}

func toTransferRecord(r xfer.Record) TransferRecord {
	return TransferRecord{
		Kind:        r.Kind.String(),
		ProgramID:   r.ProgramID,
		Source:      r.Source,
		Destination: r.Destination,
		Authority:   r.Authority,
		Mint:        r.Mint,
		AmountRaw:   r.Amount.String(),
		Decimals:    r.Amount.Decimals,
		UI:          pointer.ToFloat64(r.Amount.UI),
		Idx:         r.Idx,
		Timestamp:   r.Timestamp,
		Signature:   r.Signature,
		IsFee:       r.IsFee,
	}
}

func filterProgramIDs(ids []solana.PublicKey, cfg Config) []solana.PublicKey {
	out := make([]solana.PublicKey, 0, len(ids))
	for _, id := range ids {
		if cfg.allowed(id) {
			out = append(out, id)
		}
	}
	return out
}

func lamportsToTokenAmount(lamports uint64) TokenAmount {
	ui := float64(lamports) / 1e9
	return TokenAmount{Raw: lamports, Decimals: 9, UI: pointer.ToFloat64(ui)}
}

func (p *Parser) fail(req Request, msg string) *ParseResult {
	return &ParseResult{
		State:     false,
		Signature: req.Signature,
		Slot:      req.Slot,
		Timestamp: req.BlockTime,
		TxStatus:  meta.StatusUnknown.String(),
		Msg:       msg,
	}
}
