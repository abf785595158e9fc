package ast

import "hash/fnv"

// Fingerprint computes a 64-bit hash of (Kind, ordered child fingerprints,
// interned payload) for id, memoizing into Node.Fingerprint. The root's
// fingerprint is a coarse cache key for the whole file version; per-node
// fingerprints let the Semantic Analyzer's incremental pass re-run only the
// procedures whose subtree actually changed.
func (t *Tree) Fingerprint(id NodeID) uint64 {
	if id == NilNode {
		return 0
	}
	n := &t.Nodes[id]
	if n.Fingerprint != 0 {
		return n.Fingerprint
	}

	h := fnv.New64a()
	writeUint8(h, uint8(n.Kind))
	writeUint32(h, uint32(n.Symbol))
	writeUint8(h, uint8(n.LiteralKind))
	h.Write([]byte(n.LiteralText))

	for c := n.FirstChild; c != NilNode; c = t.Nodes[c].NextSibling {
		writeUint64(h, t.Fingerprint(c))
	}

	sum := h.Sum64()
	n.Fingerprint = sum
	return sum
}

func writeUint8(h interface{ Write([]byte) (int, error) }, v uint8) {
	h.Write([]byte{v})
}

func writeUint32(h interface{ Write([]byte) (int, error) }, v uint32) {
	h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	h.Write(b)
}
