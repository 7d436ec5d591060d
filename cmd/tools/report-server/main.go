// Command report-server serves rendered driving-style reports and the
// persisted analysis results as JSON.
//
// Usage:
//
//	go run ./cmd/tools/report-server [flags]
//
// Flags:
//
//	-db       Results sqlite path (default: drivestyle.db)
//	-reports  Rendered report directory (default: analysis_results)
//	-listen   Listen address (default: :8080)
//	-version  Print version and exit
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/paddock-data/drivestyle/internal/db"
	"github.com/paddock-data/drivestyle/internal/httputil"
	"github.com/paddock-data/drivestyle/internal/version"
)

func main() {
	dbPath := flag.String("db", "drivestyle.db", "Results sqlite path")
	reportsDir := flag.String("reports", "analysis_results", "Rendered report directory")
	listen := flag.String("listen", ":8080", "Listen address")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("report-server", version.String())
		return
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open results database: %v", err)
	}
	defer store.Close()

	mux := http.NewServeMux()
	mux.Handle("/reports/", http.StripPrefix("/reports/", http.FileServer(http.Dir(*reportsDir))))
	mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		runs, err := store.ListRuns()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, runs)
	})
	mux.HandleFunc("/api/runs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 {
			httputil.NotFound(w, "unknown resource")
			return
		}
		runID := parts[0]
		switch parts[1] {
		case "profiles":
			profiles, err := store.ProfilesForRun(runID)
			if err != nil {
				httputil.InternalServerError(w, err.Error())
				return
			}
			httputil.WriteJSONOK(w, profiles)
		case "similarity":
			sims, err := store.SimilaritiesForRun(runID)
			if err != nil {
				httputil.InternalServerError(w, err.Error())
				return
			}
			httputil.WriteJSONOK(w, sims)
		default:
			httputil.NotFound(w, "unknown resource")
		}
	})

	log.Printf("Report server %s listening on %s (db=%s reports=%s)",
		version.String(), *listen, *dbPath, *reportsDir)
	log.Fatal(http.ListenAndServe(*listen, mux))
}
