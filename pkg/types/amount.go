package types

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/wire"
)

// MaxMoney is the upper bound on the magnitude of any per-asset value.
const MaxMoney = int64(1<<63 - 1)

var maxMoneyBig = big.NewInt(MaxMoney)

// BalanceErrorKind distinguishes the two ways Amount arithmetic can fail.
type BalanceErrorKind int

const (
	// Overflow indicates a per-asset magnitude exceeded MaxMoney.
	Overflow BalanceErrorKind = iota
	// Underflow indicates a per-asset magnitude fell below -MaxMoney.
	Underflow
)

func (k BalanceErrorKind) String() string {
	if k == Overflow {
		return "overflow"
	}
	return "underflow"
}

// BalanceError is returned whenever an Amount operation would produce a
// per-asset value outside [-MaxMoney, MaxMoney].
type BalanceError struct {
	Kind  BalanceErrorKind
	Asset AssetType
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("amount %s for asset %x", e.Kind, e.Asset[:])
}

// Amount is a signed, per-asset value mapping. Every operation validates
// that each component's magnitude stays within MaxMoney; a component that
// would leave that range is reported via BalanceError and the whole
// operation fails (there is no partial application).
type Amount struct {
	values map[AssetType]*big.Int
}

// ZeroAmount returns the empty Amount (the identity for Add).
func ZeroAmount() Amount {
	return Amount{values: make(map[AssetType]*big.Int)}
}

// NewAmount constructs a single-asset Amount, failing if value's
// magnitude exceeds MaxMoney.
func NewAmount(asset AssetType, value int64) (Amount, error) {
	a := ZeroAmount()
	if err := a.checkedSet(asset, big.NewInt(value)); err != nil {
		return Amount{}, err
	}
	return a, nil
}

func (a Amount) checkedSet(asset AssetType, v *big.Int) error {
	if v.Sign() == 0 {
		delete(a.values, asset)
		return nil
	}
	if v.CmpAbs(maxMoneyBig) > 0 {
		kind := Overflow
		if v.Sign() < 0 {
			kind = Underflow
		}
		return &BalanceError{Kind: kind, Asset: asset}
	}
	a.values[asset] = new(big.Int).Set(v)
	return nil
}

// IsZero reports whether every component of the amount is zero.
func (a Amount) IsZero() bool {
	for _, v := range a.values {
		if v.Sign() != 0 {
			return false
		}
	}
	return true
}

// Get returns the signed value for asset, or 0 if it has no component.
func (a Amount) Get(asset AssetType) int64 {
	if a.values == nil {
		return 0
	}
	if v, ok := a.values[asset]; ok {
		return v.Int64()
	}
	return 0
}

// Assets returns the amount's non-zero asset tags in canonical
// (ascending byte) order, the ordering required for deterministic
// serialization and sighash input.
func (a Amount) Assets() []AssetType {
	assets := make([]AssetType, 0, len(a.values))
	for t := range a.values {
		assets = append(assets, t)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Less(assets[j]) })
	return assets
}

// Add returns a + b, failing if any resulting component overflows.
func (a Amount) Add(b Amount) (Amount, error) {
	out := ZeroAmount()
	seen := make(map[AssetType]struct{}, len(a.values)+len(b.values))
	for t, v := range a.values {
		seen[t] = struct{}{}
		sum := new(big.Int).Set(v)
		if ov, ok := b.values[t]; ok {
			sum.Add(sum, ov)
		}
		if err := out.checkedSet(t, sum); err != nil {
			return Amount{}, err
		}
	}
	for t, v := range b.values {
		if _, ok := seen[t]; ok {
			continue
		}
		if err := out.checkedSet(t, v); err != nil {
			return Amount{}, err
		}
	}
	return out, nil
}

// Negate returns -a. Negation never overflows since the valid range is
// symmetric around zero.
func (a Amount) Negate() Amount {
	out := ZeroAmount()
	for t, v := range a.values {
		out.values[t] = new(big.Int).Neg(v)
	}
	return out
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) (Amount, error) {
	return a.Add(b.Negate())
}

// SumAmounts folds a slice of Amounts component-wise, failing on the
// first overflow encountered.
func SumAmounts(amounts []Amount) (Amount, error) {
	total := ZeroAmount()
	var err error
	for _, a := range amounts {
		total, err = total.Add(a)
		if err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// Equal reports whether a and b have identical components.
func (a Amount) Equal(b Amount) bool {
	if len(a.values) != len(b.values) {
		return false
	}
	for t, v := range a.values {
		ov, ok := b.values[t]
		if !ok || v.Cmp(ov) != 0 {
			return false
		}
	}
	return true
}

// ErrAmountTooLong is returned when a serialized Amount claims an
// implausible number of components.
var ErrAmountTooLong = errors.New("masp: amount component count too large")

// maxAmountComponents bounds the CompactVec count accepted when reading
// an Amount, guarding against a maliciously large allocation request.
const maxAmountComponents = 1 << 16

// WriteAmount serializes an Amount as a CompactVec of (asset, value)
// pairs in canonical ascending-asset order, so that component-wise equal
// Amounts always produce byte-identical output (required for a
// deterministic sighash).
func WriteAmount(w io.Writer, a Amount) error {
	assets := a.Assets()
	if err := wire.WriteVarInt(w, 0, uint64(len(assets))); err != nil {
		return err
	}
	for _, asset := range assets {
		if _, err := w.Write(asset[:]); err != nil {
			return err
		}
		var buf [8]byte
		v := a.Get(asset)
		putLE64(buf[:], uint64(v))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadAmount deserializes an Amount written by WriteAmount.
func ReadAmount(r io.Reader) (Amount, error) {
	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return Amount{}, err
	}
	if count > maxAmountComponents {
		return Amount{}, ErrAmountTooLong
	}
	out := ZeroAmount()
	for i := uint64(0); i < count; i++ {
		var asset AssetType
		if _, err := io.ReadFull(r, asset[:]); err != nil {
			return Amount{}, err
		}
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Amount{}, err
		}
		value := int64(getLE64(buf[:]))
		if err := out.checkedSet(asset, big.NewInt(value)); err != nil {
			return Amount{}, err
		}
	}
	return out, nil
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

func getLE64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}
