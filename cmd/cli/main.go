package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dvloznov/posto-dashboard/internal/aggregate"
	"github.com/dvloznov/posto-dashboard/internal/app"
	"github.com/dvloznov/posto-dashboard/internal/config"
	"github.com/dvloznov/posto-dashboard/internal/csvexport"
	"github.com/dvloznov/posto-dashboard/internal/dashboard"
	"github.com/dvloznov/posto-dashboard/internal/filter"
	"github.com/dvloznov/posto-dashboard/internal/gcs"
	"github.com/dvloznov/posto-dashboard/internal/logger"
	"github.com/dvloznov/posto-dashboard/internal/notionsync"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "summary":
		runSummary()
	case "ranking":
		runRanking()
	case "export":
		runExport()
	case "insight":
		runInsight()
	case "publish-notion":
		runPublishNotion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Posto Dashboard CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  summary          Print totals, attendant ranking and fuel mix")
	fmt.Println("  ranking          Print sales grouped by attendant")
	fmt.Println("  export           Write the filtered sales as CSV")
	fmt.Println("  insight          Ask the model for a sales suggestion")
	fmt.Println("  publish-notion   Publish the attendant ranking to a Notion database")
	fmt.Println("  help             Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// commonFlags are shared by every command that reads sales.
type commonFlags struct {
	config    *string
	start     *string
	end       *string
	attendant *string
	nozzle    *string
	search    *string
	fields    *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:    fs.String("config", "", "Path to an optional config file"),
		start:     fs.String("start", "", "First day to include (YYYY-MM-DD)"),
		end:       fs.String("end", "", "Last day to include (YYYY-MM-DD)"),
		attendant: fs.String("attendant", "", "Attendant nickname"),
		nozzle:    fs.String("nozzle", "", "Nozzle code"),
		search:    fs.String("q", "", "Free text search"),
		fields:    fs.String("fields", "", "Comma separated fields searched by -q"),
	}
}

func (c commonFlags) spec() (filter.Spec, error) {
	q := url.Values{}
	q.Set(filter.ParamStartDate, *c.start)
	q.Set(filter.ParamEndDate, *c.end)
	q.Set(filter.ParamAttendant, *c.attendant)
	q.Set(filter.ParamNozzle, *c.nozzle)
	q.Set(filter.ParamSearch, *c.search)
	q.Set(filter.ParamFields, *c.fields)
	return filter.ParseSpec(q)
}

// session is a loaded dashboard ready for one command.
type session struct {
	ctx  context.Context
	log  zerolog.Logger
	cfg  *config.Config
	rt   *app.Runtime
	spec filter.Spec
}

func (s *session) Close() {
	if err := s.rt.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to close clients")
	}
}

// open loads config, builds the service and loads the source data. Logs go to
// stderr so command output can be piped.
func open(ctx context.Context, c commonFlags, configure func(*config.Config)) *session {
	cfg, err := config.LoadConfig(*c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if configure != nil {
		configure(cfg)
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: os.Stderr})
	ctx = logger.WithContext(ctx, log)

	spec, err := c.spec()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid filter")
	}

	rt, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build dashboard service")
	}
	if err := rt.Service.Reload(ctx); err != nil {
		rt.Close()
		log.Fatal().Err(err).Msg("Failed to load sales")
	}

	return &session{ctx: ctx, log: log, cfg: cfg, rt: rt, spec: spec}
}

// fail reports err and exits. Non-numeric data gets a message naming the
// offending value.
func (s *session) fail(err error, msg string) {
	var nonNumeric *aggregate.NonNumericError
	if errors.As(err, &nonNumeric) {
		fmt.Fprintf(os.Stderr, "Error: non-numeric %s %q in record %d\n", nonNumeric.Field, nonNumeric.Raw, nonNumeric.Index)
	}
	s.Close()
	s.log.Fatal().Err(err).Msg(msg)
}

func runSummary() {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := open(ctx, common, disableInsight)
	defer s.Close()

	overview, err := s.rt.Service.Overview(s.ctx, s.spec)
	if err != nil {
		s.fail(err, "Summary failed")
	}
	printOverview(os.Stdout, overview)
}

func printOverview(w io.Writer, o *dashboard.Overview) {
	fmt.Fprintf(w, "Faturamento:   R$ %s\n", o.Stats.TotalRevenue.StringFixed(2))
	fmt.Fprintf(w, "Volume:        %s L\n", o.Stats.TotalVolume.StringFixed(2))
	fmt.Fprintf(w, "Preco medio:   R$ %s\n", o.Stats.AveragePrice.StringFixed(3))
	fmt.Fprintf(w, "Ticket medio:  R$ %s\n", o.Stats.AverageTicket.StringFixed(2))
	fmt.Fprintf(w, "Abastecimentos: %d\n", o.Stats.RecordCount)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nFRENTISTA\tTOTAL\tLITROS")
	for _, a := range o.ByAttendant {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.Total.StringFixed(2), a.Volume.StringFixed(2))
	}
	fmt.Fprintln(tw, "\nCOMBUSTIVEL\tTOTAL\t")
	for _, f := range o.ByFuel {
		fmt.Fprintf(tw, "%s\t%s\t\n", f.Name, f.Value.StringFixed(2))
	}
	tw.Flush()

	if len(o.InvalidDates) > 0 {
		fmt.Fprintf(w, "\n%d registros com data invalida\n", len(o.InvalidDates))
	}
}

func runRanking() {
	fs := flag.NewFlagSet("ranking", flag.ExitOnError)
	common := addCommonFlags(fs)
	sortKey := fs.String("sort", "", "Order sales by nozzle or total")
	direction := fs.String("order", "asc", "Sort direction: asc or desc")
	showSales := fs.Bool("sales", false, "List each attendant's sales")
	fs.Parse(os.Args[2:])

	order, err := aggregate.ParseSalesOrder(*sortKey, *direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := open(ctx, common, disableInsight)
	defer s.Close()

	groups, err := s.rt.Service.Detailed(s.ctx, s.spec, order)
	if err != nil {
		s.fail(err, "Ranking failed")
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FRENTISTA\tVENDAS\tTOTAL\tLITROS")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", g.Name, g.Count, g.Total.StringFixed(2), g.Volume.StringFixed(2))
		if !*showSales {
			continue
		}
		for _, r := range g.Sales {
			fmt.Fprintf(tw, "  %s bico %s\t%s\t%s\t%s\n", r.TransactionDate, r.NozzleCode, r.FuelType, r.TotalAmount, r.VolumeLiters)
		}
	}
	tw.Flush()
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	common := addCommonFlags(fs)
	out := fs.String("out", "", "Output file or gs:// URI (default: generated file name in the current directory, - for stdout)")
	delimiter := fs.String("delimiter", "", "Field delimiter (default: export.delimiter)")
	prefix := fs.String("prefix", "", "File name prefix (default: export.filename_prefix)")
	attendants := fs.Bool("attendants", false, "Export the attendant list instead of sales")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s := open(ctx, common, disableInsight)
	defer s.Close()

	delim := *delimiter
	if delim == "" {
		delim = s.cfg.Export.Delimiter
	}
	sep, err := csvexport.ParseDelimiter(delim)
	if err != nil {
		s.fail(err, "Invalid delimiter")
	}

	var buf bytes.Buffer
	rows := 0
	if *attendants {
		if err := s.rt.Service.ExportAttendantsCSV(&buf, sep); err != nil {
			s.fail(err, "Export failed")
		}
		rows = len(s.rt.Service.Attendants())
	} else {
		rows, err = s.rt.Service.ExportCSV(s.ctx, &buf, s.spec, sep)
		if err != nil {
			s.fail(err, "Export failed")
		}
	}

	dest := *out
	if dest == "" {
		if *attendants {
			dest = "frentistas.csv"
		} else {
			dest = s.rt.Service.ExportFilename(s.spec, *prefix)
		}
	}

	switch {
	case dest == "-":
		if _, err := buf.WriteTo(os.Stdout); err != nil {
			s.fail(err, "Failed to write CSV")
		}
		return
	case strings.HasPrefix(dest, "gs://"):
		if s.rt.Storage == nil {
			storage, closeFn, err := openStorage(s.ctx)
			if err != nil {
				s.fail(err, "Failed to create storage client")
			}
			defer closeFn()
			s.rt.Storage = storage
		}
		if err := s.rt.Storage.Upload(s.ctx, dest, &buf, dashboard.CSVContentType); err != nil {
			s.fail(err, "Upload failed")
		}
	default:
		if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
			s.fail(err, "Failed to write CSV")
		}
	}

	s.log.Info().Str("destination", dest).Int("rows", rows).Msg("Export written")
	fmt.Println(dest)
}

func runInsight() {
	fs := flag.NewFlagSet("insight", flag.ExitOnError)
	common := addCommonFlags(fs)
	model := fs.String("model", "", "Model name (default: insight.model)")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := open(ctx, common, func(cfg *config.Config) {
		cfg.Insight.Enabled = true
		if *model != "" {
			cfg.Insight.Model = *model
		}
	})
	defer s.Close()

	res, err := s.rt.Service.Insight(s.ctx, s.spec)
	if errors.Is(err, dashboard.ErrInsightDisabled) {
		s.fail(err, "Insights are not available; check GEMINI_API_KEY")
	}
	if err != nil {
		s.fail(err, "Insight failed")
	}
	if res.Err != nil {
		s.log.Warn().Err(res.Err).Msg("Model call failed")
	}
	fmt.Println(res.Text)
}

func runPublishNotion() {
	fs := flag.NewFlagSet("publish-notion", flag.ExitOnError)
	common := addCommonFlags(fs)
	token := fs.String("token", "", "Notion integration token (default: notion.token)")
	databaseID := fs.String("database-id", "", "Notion database ID (default: notion.database_id)")
	dryRun := fs.Bool("dry-run", false, "Show what would change without writing")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s := open(ctx, common, disableInsight)
	defer s.Close()

	if *token == "" {
		*token = s.cfg.Notion.Token
	}
	if *databaseID == "" {
		*databaseID = s.cfg.Notion.DatabaseID
	}
	if *token == "" || *databaseID == "" {
		s.fail(errors.New("missing Notion credentials"), "Set -token and -database-id or notion.token and notion.database_id")
	}

	groups, err := s.rt.Service.Detailed(s.ctx, s.spec, aggregate.SalesOrder{})
	if err != nil {
		s.fail(err, "Ranking failed")
	}

	client := notionsync.NewNotionClient(*token)
	period := notionsync.Period(s.spec.StartDate, s.spec.EndDate)
	res, err := notionsync.PublishAttendantSummary(s.ctx, client, *databaseID, period, groups, *dryRun)
	if err != nil {
		s.fail(err, "Publish failed")
	}

	s.log.Info().
		Str("period", period).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Bool("dry_run", *dryRun).
		Msg("Notion publish completed")
	if res.Failed > 0 {
		os.Exit(1)
	}
}

func disableInsight(cfg *config.Config) {
	cfg.Insight.Enabled = false
}

// openStorage is used when a gs:// destination is given without a configured
// export bucket.
func openStorage(ctx context.Context) (gcs.StorageService, func(), error) {
	svc, err := app.NewStorage(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return svc, func() { svc.Close() }, nil
}
