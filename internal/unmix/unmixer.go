package unmix

import (
	"log/slog"
	"strings"

	"specmix/internal/config"
	"specmix/internal/faults"
	"specmix/internal/logging"
	"specmix/internal/spectrum"
)

// Unmixer runs alignment and solving with shared options and logs each step.
type Unmixer struct {
	opts   Options
	logger *slog.Logger
}

// New constructs an Unmixer. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *Unmixer {
	return &Unmixer{opts: opts, logger: logging.NewComponentLogger(logger, "unmix")}
}

// NewFromConfig constructs an Unmixer from the [unmix] configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Unmixer {
	return New(OptionsFromConfig(cfg), logger)
}

// Options returns the solver settings in use.
func (u *Unmixer) Options() Options { return u.opts }

// Align builds the solver dataset and logs resampling advisories.
func (u *Unmixer) Align(mixedName string, mixed *spectrum.Spectrum, members []EndMember, maxWavelength float64) (*Dataset, error) {
	ds, err := Align(mixed, members, maxWavelength, u.opts)
	if err != nil {
		u.logFailure(mixedName, "align", err)
		return nil, err
	}
	for _, advisory := range ds.Advisories {
		logging.WarnWithContext(u.logger, "end-member does not cover the mixed spectrum range", "range_mismatch",
			logging.Spectrum(mixedName),
			logging.Stage("align"),
			logging.String("detail", advisory),
			logging.String(logging.FieldImpact, "uncovered channels are excluded from the fit"),
		)
	}
	u.logger.Debug("dataset aligned",
		logging.Spectrum(mixedName),
		logging.Stage("align"),
		logging.Int("channels", ds.Channels()),
		logging.Int("dropped_channels", ds.DroppedChannels),
		logging.Int("endmembers", len(ds.Names)),
	)
	return ds, nil
}

// Solve runs alg on ds and logs pruning rounds and the outcome.
func (u *Unmixer) Solve(mixedName string, ds *Dataset, alg Algorithm) (*Result, error) {
	res, err := Run(ds, alg, u.opts)
	if res != nil {
		for i, round := range res.Pruned {
			u.logger.Info("end-members pruned",
				logging.Spectrum(mixedName),
				logging.Stage("solve"),
				logging.Int("round", i+1),
				logging.String("removed", strings.Join(round, ", ")),
			)
		}
	}
	if err != nil {
		u.logFailure(mixedName, "solve", err)
		return nil, err
	}
	u.logger.Info("unmixing complete",
		logging.Spectrum(mixedName),
		logging.Stage("solve"),
		logging.String("algorithm", alg.Label()),
		logging.Int("endmembers", len(res.Names)),
		logging.Float64("rms", res.RMS),
	)
	return res, nil
}

func (u *Unmixer) logFailure(mixedName, stage string, err error) {
	logging.ErrorWithContext(u.logger, "unmixing failed", faults.Kind(err),
		logging.Spectrum(mixedName),
		logging.Stage(stage),
		logging.String(logging.FieldErrorHint, faults.Hint(err)),
		logging.Error(err),
	)
}
