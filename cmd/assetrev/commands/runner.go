package commands

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/assetrev/internal/assetfs"
	"git.home.luguber.info/inful/assetrev/internal/config"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
	"git.home.luguber.info/inful/assetrev/internal/manifest"
	"git.home.luguber.info/inful/assetrev/internal/metrics"
	"git.home.luguber.info/inful/assetrev/internal/notify"
	"git.home.luguber.info/inful/assetrev/internal/retry"
	"git.home.luguber.info/inful/assetrev/internal/revision"
)

// Runner performs complete revision runs for one configuration: discovery, revisioning,
// output, manifest, metrics textfile and notification.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	recorder  *metrics.PrometheusRecorder
	publisher notify.Publisher
	policy    retry.Policy
	ignore    *revision.IgnoreMatcher
}

// NewRunner prepares the collaborators shared by every run.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	ignore, err := revision.NewIgnoreMatcher(cfg.Ignore)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:       cfg,
		logger:    logger,
		publisher: notify.NopPublisher{},
		policy:    retry.NewPolicy(retry.BackoffExponential, 0, cfg.Notify.TimeoutDuration(), cfg.Notify.Retries),
		ignore:    ignore,
	}
	if cfg.Metrics.Textfile != "" {
		r.recorder = metrics.NewPrometheusRecorder(nil)
	}
	if cfg.Notify.URL != "" {
		var pub *notify.NATSPublisher
		err := retry.Do(context.Background(), r.policy, func(context.Context) error {
			var err error
			pub, err = notify.NewNATSPublisher(cfg.Notify.URL, cfg.Notify.Subject, cfg.Notify.TimeoutDuration())
			return err
		})
		if err != nil {
			return nil, err
		}
		r.publisher = pub
	}
	return r, nil
}

// Options maps the configuration onto engine options.
func (r *Runner) Options(logger *slog.Logger) (revision.Options, error) {
	algo, err := revision.ParseAlgorithm(string(r.cfg.Algorithm))
	if err != nil {
		return revision.Options{}, err
	}
	opts := revision.Options{
		RootDir:    absDir(r.cfg.RootDir),
		HashLength: r.cfg.HashLength,
		Algorithm:  algo,
		Ignore:     r.ignore,
		Prefix:     r.cfg.Prefix,
		Logger:     logger,
	}
	if r.cfg.ResolveExternal {
		opts.FS = revision.OSFileSystem{}
	}
	if r.recorder != nil {
		opts.Metrics = r.recorder
	}
	return opts, nil
}

// Run performs one run. Manifest, metrics and notification failures are logged; only
// the revision itself decides the returned error.
func (r *Runner) Run(ctx context.Context, reason string) (*revision.Result, error) {
	start := time.Now()
	m := manifest.New(string(r.cfg.Algorithm), r.cfg.HashLength, start)
	log := r.logger.With(logfields.RunID(m.ID))

	res, err := r.execute(ctx, log)
	elapsed := time.Since(start)

	var manifestHash string
	if err == nil && r.cfg.Manifest.Enabled {
		m.Record(res, elapsed)
		path := r.cfg.ManifestPath()
		if werr := m.Write(path, manifest.Format(r.cfg.Manifest.Format)); werr != nil {
			err = werr
		} else {
			manifestHash, _ = m.Hash()
			log.Info("Manifest written", logfields.Path(path), logfields.Count(len(m.Assets)))
		}
	}

	if r.recorder != nil {
		if werr := r.recorder.WriteTextfile(r.cfg.Metrics.Textfile); werr != nil {
			log.Warn("Failed to write metrics textfile", logfields.Path(r.cfg.Metrics.Textfile), logfields.Error(werr))
		}
	}

	summary := notify.Summarize(m.ID, reason, res, elapsed, err)
	summary.ManifestHash = manifestHash
	perr := retry.Do(ctx, r.policy, func(ctx context.Context) error {
		return r.publisher.Publish(ctx, summary)
	})
	if perr != nil {
		log.Warn("Failed to publish run summary", logfields.Error(perr))
	}
	return res, err
}

func (r *Runner) execute(ctx context.Context, log *slog.Logger) (*revision.Result, error) {
	opts, err := r.Options(log)
	if err != nil {
		return nil, err
	}
	rv, err := revision.New(opts)
	if err != nil {
		return nil, err
	}
	discovery := assetfs.NewDiscovery(r.cfg.RootDir, r.cfg.Include, r.cfg.OutputDir)
	return rv.Run(ctx, discovery.Source(ctx), assetfs.NewDirSink(r.cfg.OutputDir))
}

// Close releases the notification connection.
func (r *Runner) Close() error {
	return r.publisher.Close()
}
