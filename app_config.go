package ocragent

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// AppConfig carries everything both daemons need: where the DeepSeek-OCR
// inference runtime lives and where artifacts and logs are written.
type AppConfig struct {
	RuntimeURI     string
	ModelName      string
	AuthToken      string
	RequestTimeout uint
	OutputDir      string
	LogDir         string
	EagerLoad      bool
	Debug          bool
}

func DefaultAppConfig() AppConfig {

	appConfig := AppConfig{
		RuntimeURI:     "http://localhost:8501",
		ModelName:      "deepseek-ai/DeepSeek-OCR",
		AuthToken:      "",
		RequestTimeout: 300,
		OutputDir:      "outputs",
		LogDir:         "logs",
		EagerLoad:      false,
		Debug:          false,
	}
	return appConfig

}

type FlagFunction func()

func NoOpFlagFunction() FlagFunction {
	return func() {}
}

// DefaultConfigFlagsOverride layers configuration sources: defaults, then an
// optional .env file, then process environment, then command line flags.
func DefaultConfigFlagsOverride(flagFunction FlagFunction) AppConfig {
	appConfig := DefaultAppConfig()

	// a missing .env is fine, the defaults stand
	_ = godotenv.Load()
	applyEnvOverrides(&appConfig)

	flagFunction()
	var (
		runtimeURI     string
		modelName      string
		authToken      string
		outputDir      string
		logDir         string
		requestTimeout uint
		eagerLoad      bool
		debug          bool
	)
	flag.StringVar(
		&runtimeURI,
		"runtime_uri",
		"",
		"Base URI of the DeepSeek-OCR inference runtime, eg: http://localhost:8501",
	)
	flag.StringVar(
		&modelName,
		"model_name",
		"",
		"Name of the model checkpoint served by the inference runtime",
	)
	flag.StringVar(
		&authToken,
		"auth_token",
		"",
		"Token sent as X-Internal-Token to the inference runtime",
	)
	flag.StringVar(
		&outputDir,
		"output_dir",
		"",
		"Directory for recognized text and annotated image artifacts",
	)
	flag.StringVar(
		&logDir,
		"log_dir",
		"",
		"Directory for per-day log files",
	)
	flag.UintVar(
		&requestTimeout,
		"request_timeout",
		0,
		"Inference request timeout in seconds",
	)
	flag.BoolVar(
		&eagerLoad,
		"eager_load",
		false,
		"if set the model runtime is contacted at startup instead of on first request",
	)
	flag.BoolVar(
		&debug,
		"debug",
		false,
		"sets debug flag, program will print more messages",
	)

	flag.Parse()
	if len(runtimeURI) > 0 {
		appConfig.RuntimeURI = runtimeURI
	}
	if len(modelName) > 0 {
		appConfig.ModelName = modelName
	}
	if len(authToken) > 0 {
		appConfig.AuthToken = authToken
	}
	if len(outputDir) > 0 {
		appConfig.OutputDir = outputDir
	}
	if len(logDir) > 0 {
		appConfig.LogDir = logDir
	}
	if requestTimeout > 0 {
		appConfig.RequestTimeout = requestTimeout
	}
	if eagerLoad {
		appConfig.EagerLoad = true
	}
	if debug {
		appConfig.Debug = true
	}
	return appConfig
}

func applyEnvOverrides(appConfig *AppConfig) {
	if v := os.Getenv("OCR_AGENT_RUNTIME_URI"); v != "" {
		appConfig.RuntimeURI = v
	}
	if v := os.Getenv("OCR_AGENT_MODEL_NAME"); v != "" {
		appConfig.ModelName = v
	}
	if v := os.Getenv("OCR_AGENT_AUTH_TOKEN"); v != "" {
		appConfig.AuthToken = v
	}
	if v := os.Getenv("OCR_AGENT_OUTPUT_DIR"); v != "" {
		appConfig.OutputDir = v
	}
	if v := os.Getenv("OCR_AGENT_LOG_DIR"); v != "" {
		appConfig.LogDir = v
	}
	if v := os.Getenv("OCR_AGENT_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			appConfig.RequestTimeout = uint(n)
		}
	}
	if v := os.Getenv("OCR_AGENT_EAGER_LOAD"); v == "true" || v == "1" {
		appConfig.EagerLoad = true
	}
}

// CheckEnvironment verifies the process can do its job before any request is
// accepted. A failure here is a fatal startup diagnostic.
func CheckEnvironment(appConfig *AppConfig) error {
	if err := os.MkdirAll(appConfig.OutputDir, 0755); err != nil {
		return errors.Wrapf(err, "output directory %s is not writable", appConfig.OutputDir)
	}
	if err := os.MkdirAll(appConfig.LogDir, 0755); err != nil {
		return errors.Wrapf(err, "log directory %s is not writable", appConfig.LogDir)
	}
	if appConfig.RuntimeURI == "" {
		return errors.New("runtime_uri must not be empty")
	}
	return nil
}
