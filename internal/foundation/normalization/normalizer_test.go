package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

type digest string

const (
	digestBLAKE3 digest = "blake3"
	digestSHA256 digest = "sha256"
)

func newDigestNormalizer() *EnumNormalizer[digest] {
	return NewEnumNormalizer("algorithm", map[string]digest{
		"BLAKE3":  digestBLAKE3,
		"sha256":  digestSHA256,
		"sha-256": digestSHA256,
	}, digestBLAKE3)
}

func TestNormalize(t *testing.T) {
	n := newDigestNormalizer()
	tests := []struct {
		input string
		want  digest
	}{
		{"blake3", digestBLAKE3},
		{"  SHA256 ", digestSHA256},
		{"Sha-256", digestSHA256},
		{"md5", digestBLAKE3},
		{"", digestBLAKE3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestLookup(t *testing.T) {
	n := newDigestNormalizer()

	v, ok := n.Lookup("SHA-256")
	assert.True(t, ok)
	assert.Equal(t, digestSHA256, v)

	_, ok = n.Lookup("md5")
	assert.False(t, ok)
}

func TestNormalizeWithValidation(t *testing.T) {
	n := newDigestNormalizer()

	v, err := n.NormalizeWithValidation(" blake3")
	require.NoError(t, err)
	assert.Equal(t, digestBLAKE3, v)

	_, err = n.NormalizeWithValidation("md5")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "invalid algorithm")
}

func TestValidValuesSortedCopy(t *testing.T) {
	n := newDigestNormalizer()
	vals := n.ValidValues()
	assert.Equal(t, []string{"blake3", "sha-256", "sha256"}, vals)

	vals[0] = "changed"
	assert.Equal(t, "blake3", n.ValidValues()[0])
}
