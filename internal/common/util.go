package common

// WipeByteArray overwrites buf with zeros so that secrets (passwords,
// license keys) do not linger in memory after use. Safe to call with nil.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
