// Command timetable-cli runs the generation pipeline offline. Catalogues come
// either from a single JSON file or from five CSV files; the result is written
// as JSON to stdout or a file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/Likhith025/timetablegen/internal/csvio"
	"github.com/Likhith025/timetablegen/internal/engine"
	"github.com/Likhith025/timetablegen/internal/models"
)

func main() {
	var (
		inputPath    = flag.String("input", "", "JSON file holding all five catalogues")
		roomsPath    = flag.String("rooms", "", "rooms CSV file")
		facultyPath  = flag.String("faculty", "", "faculty CSV file")
		sectionsPath = flag.String("sections", "", "grade-sections CSV file")
		subjectsPath = flag.String("subjects", "", "subjects CSV file")
		slotsPath    = flag.String("slots", "", "time-slots CSV file")
		seed         = flag.Int64("seed", 0, "RNG seed; 0 derives one from the clock")
		version      = flag.String("version", "1.0.0", "version tag stamped on the result")
		outPath      = flag.String("out", "", "output file; stdout when empty")
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
		defer logger.Sync() //nolint:errcheck
	}

	cat, err := loadCatalogue(*inputPath, csvio.CataloguePaths{
		Rooms:         *roomsPath,
		Faculty:       *facultyPath,
		GradeSections: *sectionsPath,
		Subjects:      *subjectsPath,
		TimeSlots:     *slotsPath,
	})
	if err != nil {
		log.Fatalf("failed to load catalogues: %v", err)
	}

	gen := engine.New(engine.Config{Seed: *seed, Version: *version}, logger)
	result, err := gen.Generate(cat)
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}

	if *outPath == "" {
		fmt.Println(string(payload))
	} else if err := os.WriteFile(*outPath, payload, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *outPath, err)
	}

	if result.GenerationStatus == models.GenerationStatusPartial {
		fmt.Fprintf(os.Stderr, "generation finished with %d conflict(s)\n", len(result.Conflicts))
		os.Exit(2)
	}
}

func loadCatalogue(jsonPath string, csvPaths csvio.CataloguePaths) (models.Catalogue, error) {
	if jsonPath != "" {
		var cat models.Catalogue
		raw, err := os.ReadFile(jsonPath)
		if err != nil {
			return cat, fmt.Errorf("read %s: %w", jsonPath, err)
		}
		if err := json.Unmarshal(raw, &cat); err != nil {
			return cat, fmt.Errorf("parse %s: %w", jsonPath, err)
		}
		return cat, nil
	}

	if csvPaths.Rooms == "" || csvPaths.Faculty == "" || csvPaths.GradeSections == "" ||
		csvPaths.Subjects == "" || csvPaths.TimeSlots == "" {
		return models.Catalogue{}, fmt.Errorf("either -input or all five CSV flags are required")
	}
	return csvio.LoadCatalogue(csvPaths)
}
