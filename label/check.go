package label

// Charset36 is the checksum alphabet: base-36, uppercase.
const Charset36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Check returns the checksum character for the serialization preceding the
// '|' separator: the byte sum mod 36, rendered in Charset36.
//
// Addition commutes, so reordering parameters never changes the character;
// a label re-rendered in canonical parameter order keeps its check. Within
// the legal field charsets the sum detects every single-character
// substitution except those whose byte values are equal mod 36.
func Check(pre string) byte {
	var sum uint32
	for i := 0; i < len(pre); i++ {
		sum += uint32(pre[i])
	}
	return Charset36[sum%36]
}
