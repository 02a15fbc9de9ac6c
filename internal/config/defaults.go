package config

const (
	defaultSamplesDir            = "~/.local/share/catscan/samples"
	defaultModelPath             = "~/.local/share/catscan/models/yolov8n.onnx"
	defaultClassifierBinary      = "~/.local/share/catscan/bin/cat-finder"
	defaultLogDir                = "~/.local/share/catscan/logs"
	defaultAPIBind               = "127.0.0.1:5001"
	defaultDetectorTimeout       = 30
	defaultProcessingDelayMillis = 300
	defaultResultDelayMillis     = 200
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SamplesDir:       defaultSamplesDir,
			ModelPath:        defaultModelPath,
			ClassifierBinary: defaultClassifierBinary,
			LogDir:           defaultLogDir,
			APIBind:          defaultAPIBind,
		},
		Detector: Detector{
			TimeoutSeconds: defaultDetectorTimeout,
		},
		Stream: Stream{
			ProcessingDelayMillis: defaultProcessingDelayMillis,
			ResultDelayMillis:     defaultResultDelayMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
