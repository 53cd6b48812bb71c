package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/assetrev/internal/foundation/normalization"
)

// NormalizationResult captures adjustments made by NormalizeConfig.
type NormalizationResult struct {
	Warnings []string
}

// NormalizeConfig canonicalizes enumerations, separators and list entries in place before
// defaults are applied.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	c.Algorithm = normalizeEnum(res, "algorithm", algorithmNormalizer, c.Algorithm, AlgorithmBLAKE3)
	c.Manifest.Format = normalizeEnum(res, "manifest.format", manifestFormatNormalizer, c.Manifest.Format, ManifestFormatJSON)
	c.Log.Level = normalizeEnum(res, "log.level", logLevelNormalizer, c.Log.Level, LogLevelInfo)
	c.Log.Format = normalizeEnum(res, "log.format", logFormatNormalizer, c.Log.Format, LogFormatText)

	c.RootDir = strings.TrimSpace(c.RootDir)
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	c.Ignore = compact(c.Ignore)
	c.Include = normalizeExtensions(c.Include)
	if c.HashLength < 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("negative hash_length %d, using default", c.HashLength))
		c.HashLength = 0
	}
	return res
}

// normalizeEnum leaves empty values empty so defaults can fill them.
func normalizeEnum[T ~string](res *NormalizationResult, field string, n *normalization.EnumNormalizer[T], value, fallback T) T {
	raw := string(value)
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	canonical, err := n.NormalizeWithValidation(raw)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unknown %s '%s' (valid: %s), defaulting to %s",
			field, raw, strings.Join(n.ValidValues(), ", "), fallback))
		return fallback
	}
	if canonical != value {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s from '%s' to '%s'", field, raw, canonical))
	}
	return canonical
}

func compact(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// normalizeExtensions lower-cases extensions and adds the leading dot.
func normalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range compact(exts) {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
