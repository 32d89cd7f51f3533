package combiner

import (
	"fmt"

	"github.com/cloudflare/circl/xof"
)

// Supported extension functions, by label token.
var xofNames = map[xof.ID]string{
	xof.SHAKE128: "SHAKE128",
	xof.SHAKE256: "SHAKE256",
	xof.BLAKE2XB: "BLAKE2XB",
	xof.BLAKE2XS: "BLAKE2XS",
}

// ParseXOF resolves a label token to its extension function.
func ParseXOF(name string) (xof.ID, error) {
	for id, n := range xofNames {
		if n == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("combiner: unknown xof %q", name)
}

// XOFName returns the label token for a supported extension function.
func XOFName(id xof.ID) (string, bool) {
	n, ok := xofNames[id]
	return n, ok
}
