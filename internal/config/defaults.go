package config

const (
	defaultEndMemberDir        = "~/.local/share/specmix/spectral_library"
	defaultMixedDir            = "~/.local/share/specmix/mixed"
	defaultDataDir             = "~/.local/share/specmix"
	defaultLogDir              = "~/.local/share/specmix/logs"
	defaultRelativeUncertainty = 0.02
	defaultMinPointsWarning    = 10
	defaultAlgorithm           = AlgorithmWLS
	defaultRoundDecimals       = 2
	defaultUncertaintyEpsilon  = 1e-12
	defaultMinRCond            = 1e-12
	defaultBlackbodyName       = "BB"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Algorithm names accepted by unmix.algorithm.
const (
	AlgorithmWLS = "wls"
	AlgorithmSTO = "sto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			EndMemberDir: defaultEndMemberDir,
			MixedDir:     defaultMixedDir,
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
		},
		Ingest: Ingest{
			RelativeUncertainty: defaultRelativeUncertainty,
			MinPointsWarning:    defaultMinPointsWarning,
		},
		Unmix: Unmix{
			Algorithm:          defaultAlgorithm,
			RoundDecimals:      defaultRoundDecimals,
			UncertaintyEpsilon: defaultUncertaintyEpsilon,
			MinRCond:           defaultMinRCond,
			BlackbodyName:      defaultBlackbodyName,
			RecordRuns:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
