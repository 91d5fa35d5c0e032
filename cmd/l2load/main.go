package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nci/oceanl2/catalog"
	"github.com/nci/oceanl2/hdf/gdal"
	"github.com/nci/oceanl2/metrics"
	"github.com/nci/oceanl2/satin"
	"github.com/nci/oceanl2/scene"
	"github.com/nci/oceanl2/utils"
)

var (
	confDir        = flag.String("conf_dir", filepath.Join(utils.EtcDir, "etc"), "Scene config directory.")
	templateDir    = flag.String("template_dir", "templates", "Report template directory.")
	sceneName      = flag.String("scene", "aqua", "Scene config name, e.g. aqua for aqua.yaml.")
	satName        = flag.String("sat", "", "Satellite name. Defaults to the scene name.")
	instrument     = flag.String("instrument", string(satin.MODIS), "Instrument name.")
	timeSlot       = flag.String("time", "", "Time slot of the swath, RFC 3339.")
	channels       = flag.String("channels", "chlor_a", "Comma separated datasets to load.")
	format         = flag.String("format", "json", "Output format: json or text.")
	batch          = flag.Bool("batch", false, "Read one time slot per line from stdin.")
	logDir         = flag.String("log_dir", "", "Load metrics directory. With -v and no directory, metrics go to stdout.")
	catalogDSN     = flag.String("catalog", "", "Postgres connection string of the swath catalog.")
	validateConfig = flag.Bool("check_conf", false, "Validate scene config files.")
	find           = flag.Bool("find", false, "List catalogued swaths matching -wkt, -from, -until and -instrument.")
	wkt            = flag.String("wkt", "", "Footprint filter of -find, WKT in EPSG:4326.")
	from           = flag.String("from", "", "Earliest swath end time of -find, RFC 3339.")
	until          = flag.String("until", "", "Latest swath start time of -find, RFC 3339.")
	verbose        = flag.Bool("v", false, "Verbose mode for more outputs.")
)

var (
	Error *log.Logger
	Info  *log.Logger
)

func init() {
	Error = log.New(os.Stderr, "L2: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info = log.New(os.Stdout, "L2: ", log.Ldate|log.Ltime|log.Lshortfile)

	flag.Parse()
	if len(*satName) == 0 {
		*satName = *sceneName
	}
}

func ensure(err error) {
	if err != nil {
		Error.Fatal(err)
	}
}

func splitChannels(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if len(name) > 0 {
			names = append(names, name)
		}
	}
	return names
}

type runner struct {
	loader   *satin.Loader
	reporter *scene.Reporter
	catalog  *catalog.Catalog
}

func (r *runner) run(ctx context.Context, slot time.Time) error {
	scn := scene.New(*sceneName, *satName, *instrument, slot, splitChannels(*channels))
	loadErr := r.loader.Load(scn)
	if loadErr != nil {
		Error.Printf("%s %v: %v", *sceneName, slot, loadErr)
	}

	sum, err := scn.Summary()
	if err != nil {
		return err
	}
	if len(sum.NoFootprint) > 0 {
		Info.Printf("%s %v: no footprint, %s", *sceneName, slot, sum.NoFootprint)
	}

	switch *format {
	case "text":
		err = r.reporter.Write(os.Stdout, sum)
	default:
		err = sum.WriteJSON(os.Stdout)
	}
	if err != nil {
		return err
	}

	if r.catalog != nil && scn.Area != nil {
		opts, err := r.loader.Options(scn)
		if err != nil {
			return err
		}
		path, err := opts.Path(slot)
		if err != nil {
			return err
		}
		var products []string
		for _, ds := range sum.Datasets {
			products = append(products, ds.Name)
		}
		rec := &catalog.Record{
			Path:       path,
			Satellite:  sum.Satellite,
			Instrument: sum.Instrument,
			Start:      sum.Start,
			End:        sum.End,
			Footprint:  sum.WKT,
			Products:   products,
		}
		if err := r.catalog.Insert(ctx, rec); err != nil {
			return err
		}
	}
	return loadErr
}

func parseSlot(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("time slot %q: %v", s, err)
	}
	return t.UTC(), nil
}

func findSwaths(ctx context.Context, cat *catalog.Catalog) error {
	q, err := catalog.ParseQuery(*wkt, *from, *until, *instrument)
	if err != nil {
		return err
	}
	paths, err := cat.Intersects(ctx, q)
	if err != nil {
		return err
	}
	if paths == nil {
		paths = []string{}
	}
	return json.NewEncoder(os.Stdout).Encode(paths)
}

func main() {
	if *validateConfig {
		configs, err := utils.LoadAllConfigFiles(*confDir)
		ensure(err)
		for name, config := range configs {
			if _, err := config.Section(*instrument + "-level3"); err != nil {
				Error.Printf("%s: %v", name, err)
				continue
			}
			Info.Printf("%s: OK", name)
		}
		return
	}

	ctx := context.Background()
	var cat *catalog.Catalog
	if len(*catalogDSN) > 0 {
		c, db, err := catalog.Open(*catalogDSN, 2)
		ensure(err)
		defer db.Close()
		ensure(c.CreateSchema(ctx))
		cat = c
	}

	if *find {
		if cat == nil {
			Error.Fatal("-find needs -catalog")
		}
		ensure(findSwaths(ctx, cat))
		return
	}

	store := utils.NewConfigStore(*confDir)
	loader, err := satin.NewLoader(gdal.NewOpener(), store)
	ensure(err)
	loader.Info = Info
	loader.Error = Error
	loader.Verbose = *verbose

	var mLogger metrics.Logger
	if len(*logDir) > 0 {
		fileLogger := metrics.NewFileLogger(*logDir, 0, 0, *verbose)
		defer fileLogger.Close()
		mLogger = fileLogger
	} else if *verbose {
		mLogger = metrics.NewStdoutLogger()
	}
	if mLogger != nil {
		loader.Metrics = metrics.NewMetricsCollector(mLogger)
	}

	r := &runner{loader: loader, reporter: scene.NewReporter(*templateDir), catalog: cat}

	if !*batch {
		slot, err := parseSlot(*timeSlot)
		ensure(err)
		if err := r.run(ctx, slot); err != nil {
			Error.Printf("%v", err)
			os.Exit(1)
		}
		return
	}

	utils.WatchConfig(Info, store)

	failed := false
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		slot, err := parseSlot(line)
		if err != nil {
			Error.Printf("%v", err)
			failed = true
			continue
		}
		if err := r.run(ctx, slot); err != nil {
			failed = true
		}
	}
	ensure(scanner.Err())
	if failed {
		os.Exit(1)
	}
}
