package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cloudx-io/batchauction/auctionapi"
	"github.com/cloudx-io/batchauction/core"
	"github.com/cloudx-io/batchauction/verifier"
)

func main() {
	var (
		snapshotInput = flag.String("snapshot", "", "Auction snapshot (file path, .json or .cbor)")
		resultInput   = flag.String("result", "", "Published ranking report (file path, .json or .cbor)")
		maxWinners    = flag.Int("max-winners", 0, "Winner cap used by the coordinator (0 = no cap)")
		outputFormat  = flag.String("format", "text", "Output format: text or json")
		help          = flag.Bool("help", false, "Show usage information")
	)

	flag.Parse()

	if *help {
		showUsage()
		os.Exit(0)
	}

	if *snapshotInput == "" || *resultInput == "" {
		showUsage()
		fmt.Fprintf(os.Stderr, "\nError: both --snapshot and --result are required\n")
		os.Exit(1)
	}

	var snapshot auctionapi.AuctionSnapshot
	if err := readInput(*snapshotInput, &snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		os.Exit(2)
	}

	var authoritative auctionapi.RankingReport
	if err := readInput(*resultInput, &authoritative); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading published result: %v\n", err)
		os.Exit(2)
	}

	v := &verifier.Verifier{
		Arbitrator: core.Arbitrator{MaxWinners: *maxWinners},
		Logger:     zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}

	mismatch, err := v.Verify(&snapshot, &authoritative)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Verification error: %v\n", err)
		os.Exit(2)
	}

	if *outputFormat == "json" {
		outputJSON(mismatch)
	} else {
		outputText(mismatch)
	}

	if mismatch != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func showUsage() {
	fmt.Println("Ranking Verifier")
	fmt.Println()
	fmt.Println("Replays an auction snapshot through the winner-selection pipeline and")
	fmt.Println("compares the recomputed ranking against the published result.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ranking-verifier --snapshot <file> --result <file> [options]")
	fmt.Println()
	fmt.Println("Required Flags:")
	fmt.Println("  --snapshot <file>      Auction snapshot (.json or .cbor)")
	fmt.Println("  --result <file>        Published ranking report (.json or .cbor)")
	fmt.Println()
	fmt.Println("Optional Flags:")
	fmt.Println("  --max-winners <n>      Winner cap used by the coordinator (default: 0, no cap)")
	fmt.Println("  --format <text|json>   Output format (default: text)")
	fmt.Println("  --help                 Show this help message")
	fmt.Println()
	fmt.Println("Exit Codes:")
	fmt.Println("  0 - Recomputed ranking matches the published result")
	fmt.Println("  1 - Consensus mismatch")
	fmt.Println("  2 - Invalid input or runtime error")
}

// readInput decodes a snapshot or report file; CBOR when the extension says
// so, JSON otherwise.
func readInput(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return auctionapi.DecodeCBOR(data, v)
	}
	return auctionapi.DecodeJSON(data, v)
}

func outputText(mismatch *verifier.Mismatch) {
	fmt.Println("Ranking Verifier")
	fmt.Println("================")
	fmt.Println()
	if mismatch == nil {
		fmt.Println("CONSENSUS: ✓ MATCHED")
		return
	}
	fmt.Printf("Report ID: %s\n", mismatch.ReportID)
	fmt.Printf("Auction:   %d\n", mismatch.AuctionID)
	fmt.Println()
	fmt.Println("Discrepancies:")
	for _, detail := range mismatch.Details {
		fmt.Printf("  - %s\n", detail)
	}
	fmt.Println()
	fmt.Println("CONSENSUS: ✗ MISMATCH")
}

func outputJSON(mismatch *verifier.Mismatch) {
	output := map[string]any{
		"matched": mismatch == nil,
	}
	if mismatch != nil {
		output["mismatch"] = mismatch
	}
	data, err := auctionapi.EncodeJSON(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(string(data))
}
