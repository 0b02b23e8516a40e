package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed hashing. The version suffix leaves
// room for future algorithm migration without colliding with old hashes.
const (
	domainLogicSource = "blocks/logic-source/v1"
	domainTrace       = "blocks/trace/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceHash identifies a behavior source. The executor's compile cache
// keys invalidation on this hash: when an instance's definition changes its
// LogicSource, the hash changes and the cached behavior is recompiled.
func SourceHash(source string) string {
	canonical, err := MarshalCanonical(source)
	if err != nil {
		// Strings always marshal; keep the signature panic-free anyway.
		canonical = []byte(source)
	}
	return hashWithDomain(domainLogicSource, canonical)
}

// TraceHash identifies a canonicalized trace payload, used by the harness
// to spot golden-file drift cheaply.
func TraceHash(canonical []byte) string {
	return hashWithDomain(domainTrace, canonical)
}
