package node

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// FormatEther renders a wei amount in ether with up to 18 decimals
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).SetPrec(256).SetInt(wei)
	f.Quo(f, new(big.Float).SetPrec(256).SetInt64(params.Ether))
	return f.Text('f', -1)
}
