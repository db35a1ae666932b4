// Command crawl walks the web from a seed URL, records the hyperlink
// topology as a GraphViz file, and reports broken links.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kwsp/crawl/pkg/config"
	"github.com/kwsp/crawl/pkg/crawler"
	"github.com/kwsp/crawl/pkg/discover"
	"github.com/kwsp/crawl/pkg/fetch"
	"github.com/kwsp/crawl/pkg/graph"
	"github.com/kwsp/crawl/pkg/utils"
)

const version = "0.0.1"

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd creates the crawl command.
func NewRootCmd() *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "crawl [flags] <url>",
		Short: "Concurrent crawler that maps link topology and finds broken links",
		Long: `crawl fetches pages starting from a seed URL and follows every link whose
text begins with the seed URL itself, so the crawl never leaves the seed's
prefix. Link relations are written as a GraphViz graph, and any link that
answers with a non-200 status is reported as broken.

Exit status is 0 only when no broken links were found and the graph file
was written.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawl,
	}

	fl := cmd.Flags()
	fl.CountP("verbose", "v", "Increase verbosity (repeatable)")
	fl.BoolP("version", "V", false, "Print version and exit")
	fl.IntP("max-con", "c", def.MaxCon, "Max # of simultaneously open connections in total")
	fl.IntP("max-total", "t", def.MaxTotal, "Max # of requests total")
	fl.IntP("max-requests", "r", def.MaxRequests, "Max # of pending requests")
	fl.IntP("max-link-per-page", "m", def.MaxLinkPerPage, "Max # of links to follow per page")
	fl.StringP("output", "o", def.OutputPath, "Filename for the GraphViz network graph")
	fl.String("config", "", "Optional YAML file with default settings")
	fl.Duration("delay", 0, "Minimum delay between requests to the same host")
	fl.Bool("respect-robots", false, "Honor robots.txt exclusions")
	fl.Bool("no-follow-relative", false, "Do not resolve and follow relative links")

	return cmd
}

// runCrawl executes a full crawl: configuration, session, summary, export.
func runCrawl(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Fprintf(cmd.OutOrStdout(), "crawl %s\n", version)
		return nil
	}

	if len(args) < 1 {
		return errors.New("no URL specified")
	}
	if len(args) > 1 {
		return fmt.Errorf("unexpected argument: %s", args[1])
	}

	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	log := setupLogger(verbosity)

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logEntry := log.WithFields(logrus.Fields{"component": "crawl", "run_id": runID})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	client := fetch.NewClient(cfg, logEntry)
	var limiter *fetch.HostLimiter
	if cfg.DelayPerHost > 0 {
		limiter = fetch.NewHostLimiter(cfg.DelayPerHost, logEntry)
	}
	var robots *fetch.RobotsGate
	if cfg.RespectRobots {
		robots = fetch.NewRobotsGate(client, cfg.UserAgent, logEntry)
	}
	sched := fetch.NewScheduler(client, cfg, limiter, robots, logEntry)
	disc := discover.New(cfg.SeedURL, cfg.FollowRelativeLinks, cfg.MinLinkLength, logEntry)
	report := crawler.NewReporter(cmd.OutOrStdout(), verbosity)
	session := crawler.NewSession(cfg, sched, disc, report, logEntry)

	if runErr := session.Run(ctx); runErr != nil {
		logEntry.Warnf("Crawl stopped early: %v", runErr)
	}

	report.Summary(session.Broken(), session.Complete(), session.Graph().NodeCount())
	report.Adjacency(session.Graph())

	header := fmt.Sprintf("crawl %s run %s seed %s", version, runID, cfg.SeedURL)
	if err := writeGraph(session.Graph(), cfg.OutputPath, header); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to write graphviz output to %s\n", cfg.OutputPath)
		return err
	}
	report.WroteOutput(cfg.OutputPath)
	report.Elapsed(time.Since(start))

	if len(session.Broken()) > 0 {
		os.Exit(1)
	}
	return nil
}

// buildConfig loads an optional YAML file and layers changed flags over it.
// Flag defaults already mirror config.Default, so unchanged flags are only
// skipped to avoid clobbering file-provided values.
func buildConfig(cmd *cobra.Command, seed string) (*config.Config, error) {
	fl := cmd.Flags()

	cfg := config.Default()
	if path, _ := fl.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if fl.Changed("max-con") {
		cfg.MaxCon, _ = fl.GetInt("max-con")
	}
	if fl.Changed("max-total") {
		cfg.MaxTotal, _ = fl.GetInt("max-total")
	}
	if fl.Changed("max-requests") {
		cfg.MaxRequests, _ = fl.GetInt("max-requests")
	}
	if fl.Changed("max-link-per-page") {
		cfg.MaxLinkPerPage, _ = fl.GetInt("max-link-per-page")
	}
	if fl.Changed("output") {
		cfg.OutputPath, _ = fl.GetString("output")
	}
	if fl.Changed("delay") {
		cfg.DelayPerHost, _ = fl.GetDuration("delay")
	}
	if fl.Changed("respect-robots") {
		cfg.RespectRobots, _ = fl.GetBool("respect-robots")
	}
	if fl.Changed("no-follow-relative") {
		noFollow, _ := fl.GetBool("no-follow-relative")
		cfg.FollowRelativeLinks = !noFollow
	}

	cfg.SeedURL = seed
	return cfg, nil
}

// setupLogger maps repeated -v to log levels: warnings only by default,
// info at -v, debug at -vv and beyond. Diagnostics go to stderr so stdout
// stays parseable.
func setupLogger(verbosity int) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	switch {
	case verbosity <= 0:
		log.SetLevel(logrus.WarnLevel)
	case verbosity == 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// writeGraph exports the graph as a DOT file, overwriting any previous run.
func writeGraph(g *graph.Graph, path, header string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrOutputWrite, err)
	}
	if err := g.WriteDOT(f, header); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", utils.ErrOutputWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrOutputWrite, err)
	}
	return nil
}
