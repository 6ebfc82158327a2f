package engine

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand/v2"
	"strings"
)

// Source yields uniform die faces.
type Source interface {
	// Roll returns a face in [1, sides].
	Roll(sides int) (int, error)
}

// Kind names a Source implementation.
type Kind string

const (
	KindHMAC   Kind = "hmac"
	KindPCG    Kind = "pcg"
	KindCrypto Kind = "crypto"
)

// Kinds lists every selectable source kind.
func Kinds() []Kind {
	return []Kind{KindHMAC, KindPCG, KindCrypto}
}

// ParseKind resolves a source name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// Factory hands out one independent Source per nonce.
// Calling it twice with the same nonce yields identical streams for
// deterministic kinds.
type Factory func(nonce uint64) Source

// NewFactory builds a Factory for kind seeded by seeds.
func NewFactory(kind Kind, seeds Seeds) (Factory, error) {
	switch kind {
	case KindHMAC, "":
		return func(nonce uint64) Source {
			return NewHMACSource(seeds, nonce)
		}, nil
	case KindPCG:
		seed := seeds.Uint64()
		return func(nonce uint64) Source {
			return NewPCGSource(seed, nonce)
		}, nil
	case KindCrypto:
		return func(uint64) Source {
			return CryptoSource{}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}

// HMACSource draws faces from the provably fair HMAC-SHA256 byte stream.
type HMACSource struct {
	bg *ByteGenerator
}

// NewHMACSource opens the stream for (seeds, nonce) at cursor 0.
func NewHMACSource(seeds Seeds, nonce uint64) *HMACSource {
	return &HMACSource{bg: NewByteGenerator(seeds, nonce, 0)}
}

func (s *HMACSource) Roll(sides int) (int, error) {
	if sides < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSides, sides)
	}
	return FaceFromFloat(s.bg.NextFloat(), sides), nil
}

// PCGSource is a fast seeded stream for large sweeps.
type PCGSource struct {
	r *rand.Rand
}

// NewPCGSource seeds a PCG generator; stream separates trials sharing a seed.
func NewPCGSource(seed, stream uint64) *PCGSource {
	return &PCGSource{r: rand.New(rand.NewPCG(seed, stream))}
}

func (s *PCGSource) Roll(sides int) (int, error) {
	if sides < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSides, sides)
	}
	return s.r.IntN(sides) + 1, nil
}

// CryptoSource reads from crypto/rand. It is not reproducible.
type CryptoSource struct{}

func (CryptoSource) Roll(sides int) (int, error) {
	if sides < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSides, sides)
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(sides)))
	if err != nil {
		return 0, fmt.Errorf("crypto source: %w", err)
	}
	return int(n.Int64()) + 1, nil
}

// ScriptedSource replays a fixed list of faces. Tests use it to force
// specific roll sequences and to count draws.
type ScriptedSource struct {
	faces []int
	pos   int
}

// NewScriptedSource returns a source that yields faces in order.
func NewScriptedSource(faces ...int) *ScriptedSource {
	return &ScriptedSource{faces: faces}
}

func (s *ScriptedSource) Roll(sides int) (int, error) {
	if s.pos >= len(s.faces) {
		return 0, ErrExhausted
	}
	face := s.faces[s.pos]
	s.pos++
	if face < 1 || face > sides {
		return 0, fmt.Errorf("scripted face %d outside [1,%d]", face, sides)
	}
	return face, nil
}

// Calls reports how many faces have been drawn.
func (s *ScriptedSource) Calls() int { return s.pos }

// Remaining reports how many scripted faces are left.
func (s *ScriptedSource) Remaining() int { return len(s.faces) - s.pos }
