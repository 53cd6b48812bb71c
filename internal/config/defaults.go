package config

// Default values applied by ApplyDefaults.
const (
	DefaultHashLength   = 8
	DefaultManifestPath = "rev-manifest.json"
	DefaultDebounce     = "500ms"
	DefaultNotifyWait   = "5s"
)

// DefaultIgnore keeps favicon.ico at its well-known location.
var DefaultIgnore = []string{"favicon.ico"}

// ApplyDefaults fills every unset field. Ignore rules are only defaulted when the key is
// absent, so an explicit empty list revisions everything.
func ApplyDefaults(c *Config) {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.HashLength == 0 {
		c.HashLength = DefaultHashLength
	}
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBLAKE3
	}
	if c.Ignore == nil {
		c.Ignore = append([]string(nil), DefaultIgnore...)
	}
	if c.Manifest.Path == "" {
		c.Manifest.Path = DefaultManifestPath
	}
	if c.Manifest.Format == "" {
		c.Manifest.Format = ManifestFormatJSON
	}
	if c.Log.Level == "" {
		c.Log.Level = LogLevelInfo
	}
	if c.Log.Format == "" {
		c.Log.Format = LogFormatText
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = DefaultNotifySubject
	}
	if c.Notify.Timeout == "" {
		c.Notify.Timeout = DefaultNotifyWait
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = DefaultDebounce
	}
}
