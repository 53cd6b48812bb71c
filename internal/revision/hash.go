package revision

import (
	"crypto/sha256"
	"hash"
	"log/slog"
	"strings"

	"github.com/zeebo/blake3"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
)

// Algorithm names a content digest.
type Algorithm string

const (
	AlgorithmBLAKE3 Algorithm = "blake3"
	AlgorithmSHA256 Algorithm = "sha256"
)

// DefaultAlgorithm is used when Options.Algorithm is empty.
const DefaultAlgorithm = AlgorithmBLAKE3

// ParseAlgorithm validates an algorithm name; the empty string selects the default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", AlgorithmBLAKE3:
		return AlgorithmBLAKE3, nil
	case AlgorithmSHA256:
		return AlgorithmSHA256, nil
	default:
		return "", errors.ValidationError("unsupported hash algorithm").
			WithContext("algorithm", name).
			Build()
	}
}

func (a Algorithm) newHash() hash.Hash {
	if a == AlgorithmSHA256 {
		return sha256.New()
	}
	return blake3.New()
}

// HexLen is the length of a full hex digest for the algorithm.
func (a Algorithm) HexLen() int {
	return a.newHash().Size() * 2
}

// HashResolver computes per-resource digests that fold in the digests of every
// referenced resource. It owns the memoization cache of one run and must not be shared
// across runs.
//
// Cycle policy: resources are entered along the active resolution path. When a resource
// already on the path is reached again, that occurrence contributes the digest of the
// resource's own content only, and the fallback is not memoized. Callers hash resources
// in sorted RelPath order, so for a fixed graph the break always happens at the same
// resource: the first cycle member entered from the lexicographically smallest root.
type HashResolver struct {
	algo     Algorithm
	cache    map[*Resource][]byte
	visiting map[*Resource]bool
	path     []*Resource
	cycles   int
	logger   *slog.Logger
}

// NewHashResolver creates a resolver for one run.
func NewHashResolver(algo Algorithm, logger *slog.Logger) *HashResolver {
	if algo == "" {
		algo = DefaultAlgorithm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HashResolver{
		algo:     algo,
		cache:    make(map[*Resource][]byte),
		visiting: make(map[*Resource]bool),
		logger:   logger,
	}
}

// Hash returns the full-length digest of r.
func (h *HashResolver) Hash(r *Resource) []byte {
	if sum, ok := h.cache[r]; ok {
		return sum
	}
	if h.visiting[r] {
		h.cycles++
		h.logger.Debug("Reference cycle broken",
			logfields.Path(r.RelPath),
			slog.String("path_chain", h.chain(r)))
		return h.ownDigest(r)
	}

	h.visiting[r] = true
	h.path = append(h.path, r)

	d := h.algo.newHash()
	_, _ = d.Write(r.Content)
	for _, ref := range r.References {
		if ref.Target == nil {
			continue
		}
		_, _ = d.Write(h.Hash(ref.Target))
	}
	sum := d.Sum(nil)

	h.path = h.path[:len(h.path)-1]
	delete(h.visiting, r)
	h.cache[r] = sum
	return sum
}

// CyclesBroken returns how many times the fallback digest was used.
func (h *HashResolver) CyclesBroken() int {
	return h.cycles
}

func (h *HashResolver) ownDigest(r *Resource) []byte {
	d := h.algo.newHash()
	_, _ = d.Write(r.Content)
	return d.Sum(nil)
}

func (h *HashResolver) chain(closing *Resource) string {
	names := make([]string, 0, len(h.path)+1)
	for _, r := range h.path {
		names = append(names, r.RelPath)
	}
	names = append(names, closing.RelPath)
	return strings.Join(names, " -> ")
}
