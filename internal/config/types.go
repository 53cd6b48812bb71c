package config

import "git.home.luguber.info/inful/assetrev/internal/foundation/normalization"

// Algorithm names the content digest used for revisioned file names.
type Algorithm string

const (
	AlgorithmBLAKE3 Algorithm = "blake3"
	AlgorithmSHA256 Algorithm = "sha256"
)

var algorithmNormalizer = normalization.NewEnumNormalizer("algorithm", map[string]Algorithm{
	"blake3":  AlgorithmBLAKE3,
	"sha256":  AlgorithmSHA256,
	"sha-256": AlgorithmSHA256,
}, AlgorithmBLAKE3)

// ManifestFormat selects the manifest encoding.
type ManifestFormat string

const (
	ManifestFormatJSON ManifestFormat = "json"
	ManifestFormatYAML ManifestFormat = "yaml"
)

var manifestFormatNormalizer = normalization.NewEnumNormalizer("manifest format", map[string]ManifestFormat{
	"json": ManifestFormatJSON,
	"yaml": ManifestFormatYAML,
	"yml":  ManifestFormatYAML,
}, ManifestFormatJSON)

// DefaultNotifySubject is the NATS subject run summaries are published on.
const DefaultNotifySubject = "assetrev.runs"
