package builder

import (
	"errors"
	"fmt"

	"github.com/ccoin/masp/pkg/types"
)

// ErrNoTransparentSigner is returned by Build when the accumulated
// transaction has transparent inputs but no signer was installed via
// WithTransparentSigner.
var ErrNoTransparentSigner = errors.New("no transparent input signer configured")

// ErrNoSpendSigner is returned by Build when the accumulated transaction
// has shielded spends but no signer was installed via WithSpendSigner.
var ErrNoSpendSigner = errors.New("no sapling spend signer configured")

// ErrorKind classifies a builder failure, matching the error taxonomy
// the orchestrator reports at each stage of build (spec §7).
type ErrorKind int

const (
	// InsufficientFunds reports the additional per-asset input required
	// after fees.
	InsufficientFunds ErrorKind = iota
	// ChangeRequired reports a positive residual input that would
	// otherwise be burned; reserved for a future change-policy layer
	// (spec §9 Open Questions) and not currently produced by Build.
	ChangeRequired
	// Fee wraps an opaque error from the fee rule.
	Fee
	// Balance reports an arithmetic overflow or underflow in value-balance
	// accounting.
	Balance
	// TransparentBuild reports a failure building the transparent bundle:
	// invalid amount, missing capability, malformed address.
	TransparentBuild
	// SaplingBuild reports a failure building or signing the shielded
	// bundle: anchor mismatch, invalid amount, binding-signature failure.
	SaplingBuild
)

func (k ErrorKind) String() string {
	switch k {
	case InsufficientFunds:
		return "insufficient funds"
	case ChangeRequired:
		return "change required"
	case Fee:
		return "fee"
	case Balance:
		return "balance"
	case TransparentBuild:
		return "transparent build"
	case SaplingBuild:
		return "sapling build"
	default:
		return fmt.Sprintf("builder error(%d)", int(k))
	}
}

// Error is the builder's error type. Amount carries the per-asset
// amount associated with InsufficientFunds/ChangeRequired; Err carries
// the wrapped inner error for Fee/TransparentBuild/SaplingBuild/Balance.
type Error struct {
	Kind   ErrorKind
	Amount types.Amount
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case InsufficientFunds:
		return fmt.Sprintf("insufficient funds for transaction construction; need an additional %s", amountDebug(e.Amount))
	case ChangeRequired:
		return fmt.Sprintf("transaction requires an additional change output of %s", amountDebug(e.Amount))
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return e.Kind.String()
	}
}

// Unwrap exposes the wrapped inner error, so callers can use errors.Is
// and errors.As against fee-rule or sub-builder sentinel errors.
func (e *Error) Unwrap() error { return e.Err }

func amountDebug(a types.Amount) string {
	assets := a.Assets()
	if len(assets) == 0 {
		return "0"
	}
	out := ""
	for i, asset := range assets {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%x: %d", asset.Bytes(), a.Get(asset))
	}
	return out
}

func insufficientFunds(amount types.Amount) *Error {
	return &Error{Kind: InsufficientFunds, Amount: amount}
}

func feeErr(err error) *Error {
	return &Error{Kind: Fee, Err: err}
}

func balanceErr(err error) *Error {
	return &Error{Kind: Balance, Err: err}
}

func transparentBuildErr(err error) *Error {
	return &Error{Kind: TransparentBuild, Err: err}
}

func saplingBuildErr(err error) *Error {
	return &Error{Kind: SaplingBuild, Err: err}
}
