package grpcrepo

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// consumeRequest is the CBOR body of a MarkConsumed call.
type consumeRequest struct {
	ID string    `cbor:"1,keyasint"`
	At time.Time `cbor:"2,keyasint"`
}

var wireEncMode cbor.EncMode

var wireDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	wireEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("grpcrepo: wire CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	wireDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("grpcrepo: wire CBOR decoder mode: %v", err))
	}
}
