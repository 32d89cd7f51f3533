package pool

// Zero overwrites b in place. Raw entropy buffers are wiped as soon as
// they are folded into a pool, consumed by derivation, or abandoned on an
// error path.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
