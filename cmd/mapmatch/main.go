package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/janusz-anue/valhalla/pkg"
	"github.com/janusz-anue/valhalla/pkg/costfunction"
	"github.com/janusz-anue/valhalla/pkg/datastructure"
	"github.com/janusz-anue/valhalla/pkg/logger"
	"github.com/janusz-anue/valhalla/pkg/mapmatcher"
	"github.com/janusz-anue/valhalla/pkg/osmparser"
	"github.com/janusz-anue/valhalla/pkg/spatialindex"
	"github.com/janusz-anue/valhalla/pkg/util"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	mapFile               = flag.String("map", "./data/map.osm.pbf", "osm pbf extract of the road network")
	traceDir              = flag.String("traces", "./data/traces", "directory of gps trace csv files (epoch,lat,lon per line)")
	outDir                = flag.String("out", "./data/matched", "output directory for encoded polylines")
	configPath            = flag.String("config", "./data", "directory containing config.yaml")
	travelMode            = flag.String("mode", "car", "travel mode: car, bicycle or pedestrian")
	leafBoundingBoxRadius = flag.Float64("leaf_bounding_box_radius", 0.05, "leaf node (r-tree) bounding box radius in km")
)

func main() {
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := util.ReadConfig(*configPath)
	if err != nil {
		log.Warn("config not loaded, using defaults", zap.Error(err))
		cfg = util.DefaultMatcherConfig()
	}

	mode, err := parseTravelMode(*travelMode)
	if err != nil {
		log.Fatal("invalid travel mode", zap.Error(err))
	}

	graph, err := osmparser.BuildGraphFromPBF(*mapFile, log)
	if err != nil {
		log.Fatal("failed to build graph", zap.Error(err))
	}

	rt := spatialindex.NewRtree()
	rt.Build(graph, *leafBoundingBoxRadius, log)

	mm := mapmatcher.NewMapMatcher(log, graph, rt, costfunction.DefaultModeCosting(), cfg)

	traceFiles, err := filepath.Glob(filepath.Join(*traceDir, "*.csv"))
	if err != nil {
		log.Fatal("failed to list traces", zap.Error(err))
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal("failed to create output directory", zap.Error(err))
	}

	// each trace is an independent matching session, fan out across cores
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for _, traceFile := range traceFiles {
		traceFile := traceFile
		g.Go(func() error {
			return matchTrace(log, mm, mode, cfg.SearchRadius, traceFile, *outDir)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("matching failed", zap.Error(err))
	}

	log.Info("done", zap.Int("traces", len(traceFiles)))
}

func matchTrace(log *zap.Logger, mm *mapmatcher.MapMatcher, mode pkg.TravelMode,
	searchRadius float64, traceFile, outDir string) error {
	trace, err := readTrace(traceFile, searchRadius)
	if err != nil {
		return fmt.Errorf("read trace %s: %w", traceFile, err)
	}

	start := time.Now()
	matched, err := mm.Match(trace, mode)
	if err != nil {
		return fmt.Errorf("match trace %s: %w", traceFile, err)
	}

	coords := make([][]float64, len(matched))
	for i, m := range matched {
		mc := m.GetMatchedCoord()
		coords[i] = []float64{mc.GetLat(), mc.GetLon()}
	}
	encoded := polyline.EncodeCoords(coords)

	outFile := filepath.Join(outDir,
		strings.TrimSuffix(filepath.Base(traceFile), filepath.Ext(traceFile))+".polyline")
	if err := os.WriteFile(outFile, encoded, 0o644); err != nil {
		return err
	}

	log.Info("trace matched",
		zap.String("trace", filepath.Base(traceFile)),
		zap.Int("points", len(trace)),
		zap.Int("matched", len(matched)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// readTrace parses one csv trace: epoch_seconds,lat,lon per line.
func readTrace(path string, searchRadius float64) ([]*datastructure.GPSPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := make([]*datastructure.GPSPoint, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		epoch, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			continue // header line
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		trace = append(trace, datastructure.NewGPSPoint(lat, lon,
			time.Unix(0, int64(epoch*float64(time.Second))), searchRadius))
	}
	return trace, nil
}

func parseTravelMode(s string) (pkg.TravelMode, error) {
	switch strings.ToLower(s) {
	case "car":
		return pkg.CAR, nil
	case "bicycle":
		return pkg.BICYCLE, nil
	case "pedestrian":
		return pkg.PEDESTRIAN, nil
	default:
		return pkg.CAR, fmt.Errorf("unknown travel mode %q", s)
	}
}
