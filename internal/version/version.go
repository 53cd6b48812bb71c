package version

// Version is the assetrev release, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/assetrev/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
