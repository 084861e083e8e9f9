package crypto

// merkle.go computes the root fingerprint that binds a file to its ordered
// sequence of block fingerprints.

// join concatenates two fingerprints and hashes the result.
func join(left, right Fingerprint) Fingerprint {
	var buf [2 * FingerprintSize]byte
	copy(buf[:FingerprintSize], left[:])
	copy(buf[FingerprintSize:], right[:])
	return Sum(buf[:])
}

// MerkleRoot computes the root fingerprint over an ordered sequence of leaf
// fingerprints by pairing consecutive hashes left-to-right and hashing their
// concatenation, repeating until a single value remains. A final unpaired
// element at any level is paired against itself rather than carried forward
// unrehashed:
//
//	n=0: Sum(nil)
//	n=1: h0
//	n=2: join(h0, h1)
//	n=3: join(join(h0, h1), join(h2, h2))
//
// Ordering is significant — permuting the input changes the root.
func MerkleRoot(leaves []Fingerprint) Fingerprint {
	switch len(leaves) {
	case 0:
		return Sum(nil)
	case 1:
		return leaves[0]
	}

	level := make([]Fingerprint, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		next := make([]Fingerprint, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, join(level[i], level[i+1]))
			} else {
				next = append(next, join(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

// MerkleRootBytes is a convenience wrapper that hashes each byte slice into a
// leaf fingerprint before computing the root.
func MerkleRootBytes(leaves [][]byte) Fingerprint {
	fps := make([]Fingerprint, len(leaves))
	for i, leaf := range leaves {
		fps[i] = Sum(leaf)
	}
	return MerkleRoot(fps)
}
