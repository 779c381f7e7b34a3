package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	ocragent "github.com/kotlef/ocr-agent"
)

// This assumes the DeepSeek-OCR inference runtime is reachable.
// To test it:
// curl -X POST -F image=@page.png -F task=markdown http://localhost:8000/api/v1/ocr

func init() {
	zerolog.TimeFieldFormat = time.StampMilli
	// Default level is info, unless debug flag is present
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-signals
		log.Info().Str("component", "OCR_HTTP").Str("signal", sig.String()).
			Msg("Caught signal to terminate, http daemon will now exit.")
		os.Exit(0)
	}()

	var httpPort uint
	flagFunc := func() {
		flag.UintVar(
			&httpPort,
			"http_port",
			8000,
			"The http port to listen on, eg, 8000",
		)
	}

	appConfig := ocragent.DefaultConfigFlagsOverride(flagFunc)
	if appConfig.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logFile, err := ocragent.SetupLogging(appConfig.LogDir, appConfig.Debug)
	if err != nil {
		log.Fatal().Err(err).Str("component", "OCR_HTTP").Msg("unable to set up logging")
	}
	log.Info().Str("component", "OCR_HTTP").Str("logFile", logFile).Msg("Logging to file")

	if err := ocragent.CheckEnvironment(&appConfig); err != nil {
		log.Fatal().Err(err).Str("component", "OCR_HTTP").Msg("environment check has failed")
	}

	if _, err := ocragent.LoadOpenAPIDoc(); err != nil {
		log.Fatal().Err(err).Str("component", "OCR_HTTP").Msg("embedded openapi document is invalid")
	}

	modelClient := ocragent.NewModelClient(&appConfig)
	if appConfig.EagerLoad {
		if err := modelClient.EnsureLoaded(context.Background()); err != nil {
			log.Fatal().Err(err).Str("component", "OCR_HTTP").
				Msg("eager model load has failed, is the inference runtime up?")
		}
	}

	http.Handle("/", ocragent.NewIndexHandler(ocragent.Version))
	http.Handle("/health", ocragent.NewOcrHttpStatusHandler(modelClient))
	http.Handle("/api/v1/tasks", ocragent.NewTasksHandler())
	http.Handle("/api/v1/resolutions", ocragent.NewResolutionsHandler())
	http.Handle("/api/v1/ocr",
		ocragent.InstrumentOcrHandler("ocr-multipart", ocragent.NewOcrHttpMultipartHandler(modelClient, &appConfig)))
	http.Handle("/api/v1/ocr/base64",
		ocragent.InstrumentOcrHandler("ocr-base64", ocragent.NewOcrHttpHandler(modelClient, &appConfig)))
	http.Handle("/metrics", promhttp.Handler())
	http.Handle("/openapi.json", ocragent.NewOpenAPIHandler())
	http.Handle("/docs", ocragent.NewDocsHandler())

	listenAddr := fmt.Sprintf(":%d", httpPort)

	log.Info().Str("component", "OCR_HTTP").Str("listenAddr", listenAddr).
		Str("runtime", appConfig.RuntimeURI).Msg("Starting listener...")

	if err := http.ListenAndServe(listenAddr, nil); err != nil {
		log.Fatal().Err(err).Str("component", "OCR_HTTP").Caller().Msg("cli_httpd has failed to start")
	}
}
