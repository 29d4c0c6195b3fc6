package cache

import "hash/fnv"

// Fingerprint hashes SQL text into a statement-cache key.
func Fingerprint(sql string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sql))
	return h.Sum64()
}

// Mix folds two fingerprints into one, for keys scoped by more than the SQL
// text alone (for example statement ID + expanded SQL).
func Mix(a, b uint64) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	putU64(buf[:8], a)
	putU64(buf[8:], b)
	h.Write(buf[:])
	return h.Sum64()
}

func putU64(dst []byte, u uint64) {
	dst[0] = byte(u >> 56)
	dst[1] = byte(u >> 48)
	dst[2] = byte(u >> 40)
	dst[3] = byte(u >> 32)
	dst[4] = byte(u >> 24)
	dst[5] = byte(u >> 16)
	dst[6] = byte(u >> 8)
	dst[7] = byte(u)
}
