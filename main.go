// Command drivestyle analyzes per-lap telemetry into per-driver driving
// style profiles and compares drivers per track.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	-data    Telemetry root directory (default: telemetry-data)
//	-tracks  Comma-separated track list (default: Australia,Bahrain,China,Japan)
//	-config  Optional JSON config path overriding compiled-in defaults
//	-out     Report output directory (default: analysis_results)
//	-db      Optional sqlite path to persist results
//	-version Print version and exit
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/paddock-data/drivestyle/internal/analysis"
	"github.com/paddock-data/drivestyle/internal/config"
	"github.com/paddock-data/drivestyle/internal/db"
	"github.com/paddock-data/drivestyle/internal/loader"
	"github.com/paddock-data/drivestyle/internal/render"
	"github.com/paddock-data/drivestyle/internal/version"
)

var (
	dataDir     = flag.String("data", "telemetry-data", "Telemetry root directory")
	trackList   = flag.String("tracks", "Australia,Bahrain,China,Japan", "Comma-separated track list")
	configPath  = flag.String("config", "", "Optional JSON config path")
	outDir      = flag.String("out", "analysis_results", "Report output directory")
	dbPath      = flag.String("db", "", "Optional sqlite path to persist results")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("drivestyle", version.String())
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	var store *db.DB
	if *dbPath != "" {
		var err error
		store, err = db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open results database: %v", err)
		}
		defer store.Close()
	}

	tracks := strings.Split(*trackList, ",")
	analyzed := 0

	for _, track := range tracks {
		track = strings.TrimSpace(track)
		if track == "" {
			continue
		}
		log.Printf("=== Analyzing %s ===", track)

		sessions, err := loader.LoadTrack(*dataDir, track)
		if err != nil {
			log.Printf("skipping %s: %v", track, err)
			continue
		}

		res, err := analysis.AnalyzeTrack(cfg, track, sessions)
		if err != nil {
			log.Printf("skipping %s: %v", track, err)
			continue
		}
		analyzed++

		if err := render.WriteTrackReport(*outDir, res, cfg); err != nil {
			log.Printf("%s: report failed: %v", track, err)
		}

		if store != nil {
			runID, err := store.SaveTrackRun(res)
			if err != nil {
				log.Printf("%s: persist failed: %v", track, err)
			} else {
				log.Printf("%s: saved run %s", track, runID)
			}
		}

		res.LogInsights()
	}

	log.Printf("Driving style analysis complete: %d/%d tracks analyzed", analyzed, len(tracks))
}
