// Package onchain builds the fixed-width, big-endian wire payloads
// the keeper submits to the oracle contract, and defines the Signer
// port the keeper depends on to actually broadcast them (spec.md
// §4.8, §6). Binary packing is done with encoding/binary directly,
// matching how the pack's chain-adjacent examples (nhbchain) build
// fixed-width headers — none of them reach for a third-party
// binary-struct-packing library for this either.
package onchain

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/market"
)

// OpCode identifies which payload shape follows the header. Wire
// values are the 4-byte ASCII tags spec §6 names ("umlt"/"swng"), not
// small sequential integers.
type OpCode uint32

const (
	OpUpdateMultiplier   OpCode = 0x756d6c74 // "umlt"
	OpUpdateSwingPremium OpCode = 0x73776e67 // "swng"
)

// OnChainError wraps a failure constructing, signing, or confirming a
// transaction.
type OnChainError struct {
	Op  string
	Err error
}

func (e *OnChainError) Error() string {
	return fmt.Sprintf("onchain: %s: %v", e.Op, e.Err)
}

func (e *OnChainError) Unwrap() error { return e.Err }

// headerLen is the size of the op-code + product-id + reserved header
// shared by every payload shape: [opcode:4][coverage:1][chain:1]
// [asset:1][reserved:1] = 8 bytes.
const headerLen = 8

// encodeHeader is common to every payload: op-code and the product
// tuple, padded with a reserved zero byte.
func encodeHeader(op OpCode, product catalog.ProductKey) []byte {
	buf := make([]byte, headerLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(op))
	buf[4] = byte(product.Coverage)
	buf[5] = byte(product.Chain)
	buf[6] = byte(product.Asset)
	buf[7] = 0
	return buf
}

// EncodeMultiplierUpdate packs the classic-multiplier on-chain write
// (spec.md §6): the 8-byte header followed by base_multiplier (u16,
// bps, always 10000), market_adjustment (i16, bps), and
// volatility_premium (i16, bps) — 14 bytes total. total_bps is a
// clamped derived value, not part of the wire layout; the contract
// recomputes it from the three components.
func EncodeMultiplierUpdate(product catalog.ProductKey, m market.MultiplierComponents) []byte {
	var buf bytes.Buffer
	buf.Write(encodeHeader(OpUpdateMultiplier, product))
	_ = binary.Write(&buf, binary.BigEndian, uint16(m.BaseBps))
	_ = binary.Write(&buf, binary.BigEndian, int16(m.MarketAdjustmentBps))
	_ = binary.Write(&buf, binary.BigEndian, int16(m.VolatilityPremiumBps))
	return buf.Bytes()
}

// EncodeSwingPremiumUpdate packs an OpUpdateSwingPremium payload: the
// 8-byte header followed by base_premium_cents, risk_multiplier_bps,
// total_premium_cents as big-endian int64/int32/int64 (20 bytes), 28
// bytes total. Spec §6 leaves the swing-premium body's exact layout
// to the on-chain contract ABI; premiums are carried as integer cents
// and risk_multiplier in basis points to avoid floating point
// on-chain.
func EncodeSwingPremiumUpdate(product catalog.ProductKey, basePremiumCents int64, riskMultiplierBps int32, totalPremiumCents int64) []byte {
	var buf bytes.Buffer
	buf.Write(encodeHeader(OpUpdateSwingPremium, product))
	_ = binary.Write(&buf, binary.BigEndian, basePremiumCents)
	_ = binary.Write(&buf, binary.BigEndian, riskMultiplierBps)
	_ = binary.Write(&buf, binary.BigEndian, totalPremiumCents)
	return buf.Bytes()
}

// DecodeHeader is the inverse of encodeHeader, used by tests and by
// any consumer that needs to inspect a payload without fully decoding
// its body.
func DecodeHeader(payload []byte) (OpCode, catalog.ProductKey, error) {
	if len(payload) < headerLen {
		return 0, catalog.ProductKey{}, fmt.Errorf("onchain: payload too short for header: %d bytes", len(payload))
	}
	return OpCode(binary.BigEndian.Uint32(payload[0:4])), catalog.ProductKey{
		Coverage: catalog.CoverageType(payload[4]),
		Chain:    catalog.Blockchain(payload[5]),
		Asset:    catalog.Asset(payload[6]),
	}, nil
}

// TxReceipt is the minimal confirmation a Signer reports back.
type TxReceipt struct {
	TxHash  string
	Success bool
}

// Signer is the port the keeper depends on to broadcast a payload and
// wait for confirmation. Production wiring supplies a real chain
// client; it is an external collaborator (spec.md §1) not implemented
// in this core.
type Signer interface {
	Submit(ctx context.Context, payload []byte) (TxReceipt, error)
}
