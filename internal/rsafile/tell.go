package rsafile

import (
	"fmt"
	"io"
	"math/big"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/rsakey"
)

// Tell prints each loaded field of k with its bit width and a hex dump.
func Tell(w io.Writer, k *rsakey.Key) {
	print := func(name string, has bool, v *big.Int) {
		if !has {
			return
		}
		fmt.Fprintf(w, "%-6s %5d bits  %x\n", name, bignum.SizeInBase2(v), v)
	}
	print("n", k.HasN, k.N)
	print("e", k.HasE, k.E)
	print("d", k.HasD, k.D)
	print("p", k.HasP, k.P)
	print("q", k.HasQ, k.Q)
	print("dp", k.HasDP, k.DP)
	print("dq", k.HasDQ, k.DQ)
	print("qinv", k.HasQInv, k.QInv)
}
