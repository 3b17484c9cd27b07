package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cloudx-io/batchauction/auctionapi"
)

func main() {
	configPath := flag.String("config", "", "Path to the TOML config file")
	auctionPath := flag.String("auction", "", "Auction snapshot to arbitrate (.json or .cbor)")
	outPath := flag.String("out", "", "Where to write the ranking report (default: stdout)")
	outFormat := flag.String("out-format", "json", "Report output format: json or cbor")
	flag.Parse()

	cfg := MustLoadConfig(*configPath)

	// Set up logging
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	if *auctionPath == "" {
		log.Fatal().Msg("missing required flag --auction")
	}

	snapshot, err := readSnapshot(*auctionPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *auctionPath).Msg("failed to read auction snapshot")
	}

	report, verified, err := ProcessRound(log.Logger, cfg, snapshot)
	if err != nil {
		log.Fatal().Err(err).Msg("auction round failed")
	}

	if err := writeReport(*outPath, *outFormat, &report); err != nil {
		log.Fatal().Err(err).Msg("failed to write ranking report")
	}

	// The report is already published; wait for the shadow verification so
	// its verdict is logged before the process exits.
	if verified != nil {
		<-verified
	}
}

func readSnapshot(path string) (*auctionapi.AuctionSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot auctionapi.AuctionSnapshot
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		err = auctionapi.DecodeCBOR(data, &snapshot)
	} else {
		err = auctionapi.DecodeJSON(data, &snapshot)
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func writeReport(path, format string, report *auctionapi.RankingReport) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = auctionapi.EncodeJSON(report)
	case "cbor":
		data, err = auctionapi.EncodeCBOR(report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	if format == "json" {
		data = append(data, '\n')
	}

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
