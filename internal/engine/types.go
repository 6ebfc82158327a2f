package engine

import (
	"crypto/sha256"
	"encoding/binary"
)

// Seeds identifies a deterministic random stream family.
type Seeds struct {
	Server string `json:"server" yaml:"server"` // ASCII; used verbatim as the HMAC key
	Client string `json:"client" yaml:"client"`
}

// Derive returns seeds for an independent sub-stream identified by label.
// The server seed is kept so HMAC streams stay verifiable against it.
func (s Seeds) Derive(label string) Seeds {
	return Seeds{Server: s.Server, Client: s.Client + "/" + label}
}

// Uint64 folds both seeds into a single 64-bit value.
func (s Seeds) Uint64() uint64 {
	sum := sha256.Sum256([]byte(s.Server + ":" + s.Client))
	return binary.BigEndian.Uint64(sum[:8])
}
