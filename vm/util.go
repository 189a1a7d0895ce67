package vm

import (
	"math/big"

	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/smt"
)

func bytesToBig(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// addressFromBitVec narrows a 256-bit stack value down to a 20-byte
// address, ok=false if the value isn't concrete.
func addressFromBitVec(v *smt.BitVec) (types.Address, bool) {
	val, ok := v.Value()
	if !ok {
		return types.Address{}, false
	}
	return types.BytesToAddress(val.Bytes()), true
}
