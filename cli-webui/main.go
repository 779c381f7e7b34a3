package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	ocragent "github.com/kotlef/ocr-agent"
)

func init() {
	zerolog.TimeFieldFormat = time.StampMilli
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-signals
		log.Info().Str("component", "OCR_WEBUI").Str("signal", sig.String()).
			Msg("Caught signal to terminate, web ui daemon will now exit.")
		os.Exit(0)
	}()

	var httpPort uint
	flagFunc := func() {
		flag.UintVar(
			&httpPort,
			"http_port",
			7860,
			"The http port to listen on, eg, 7860",
		)
	}

	appConfig := ocragent.DefaultConfigFlagsOverride(flagFunc)
	if appConfig.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logFile, err := ocragent.SetupLogging(appConfig.LogDir, appConfig.Debug)
	if err != nil {
		log.Fatal().Err(err).Str("component", "OCR_WEBUI").Msg("unable to set up logging")
	}
	log.Info().Str("component", "OCR_WEBUI").Str("logFile", logFile).Msg("Logging to file")

	if err := ocragent.CheckEnvironment(&appConfig); err != nil {
		log.Fatal().Err(err).Str("component", "OCR_WEBUI").Msg("environment check has failed")
	}

	modelClient := ocragent.NewModelClient(&appConfig)

	webUI, err := ocragent.NewWebUIHandler(modelClient, &appConfig)
	if err != nil {
		log.Fatal().Err(err).Str("component", "OCR_WEBUI").Msg("unable to build web ui")
	}

	http.Handle("/", webUI)
	http.Handle("/outputs/",
		http.StripPrefix("/outputs/", http.FileServer(http.Dir(appConfig.OutputDir))))

	listenAddr := fmt.Sprintf(":%d", httpPort)

	log.Info().Str("component", "OCR_WEBUI").Str("listenAddr", listenAddr).
		Str("runtime", appConfig.RuntimeURI).Msg("Starting listener...")

	if err := http.ListenAndServe(listenAddr, nil); err != nil {
		log.Fatal().Err(err).Str("component", "OCR_WEBUI").Caller().Msg("cli_webui has failed to start")
	}
}
