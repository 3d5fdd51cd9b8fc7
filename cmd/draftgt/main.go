// Command draftgt generates draft MOT ground truth annotation files and
// seqinfo.ini sequence metadata for airport ground support equipment videos
// by running YOLOv8 detection and ByteTrack tracking on the Rockchip NPU.
//
// Usage:
//
//	draftgt -v video.webm [-o out.txt] [-conf 0.1] [-m model.rknn]
//	draftgt -v video_dir [-f]
//	draftgt verify annotation.txt [seqinfo.ini]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/swdee/go-rknnlite"

	"github.com/gseval/draftgt"
	"github.com/gseval/draftgt/batch"
	"github.com/gseval/draftgt/config"
	"github.com/gseval/draftgt/detect"
	"github.com/gseval/draftgt/metrics"
	"github.com/gseval/draftgt/notify"
	"github.com/gseval/draftgt/report"
)

// options are the command line flags
type options struct {
	video       string
	output      string
	conf        float64
	model       string
	force       bool
	configFile  string
	labels      string
	outDir      string
	suffix      string
	classes     string
	metricsFile string
	platform    string
	// set holds the names of the flags given on the command line
	set map[string]bool
}

// parseFlags reads the command line flags, long and short forms share the
// same value
func parseFlags(args []string, stderr io.Writer) (*options, error) {

	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("draftgt", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.video, "video", "", "Input video file or directory of videos (required)")
	fs.StringVar(&opts.video, "v", "", "Shorthand for -video")
	fs.StringVar(&opts.output, "output", "", "Annotation file path, single video mode only")
	fs.StringVar(&opts.output, "o", "", "Shorthand for -output")
	fs.Float64Var(&opts.conf, "conf", 0.1, "Confidence threshold in the range 0.0-1.0")
	fs.StringVar(&opts.model, "model", "", "RKNN compiled YOLOv8 model file")
	fs.StringVar(&opts.model, "m", "", "Shorthand for -model")
	fs.BoolVar(&opts.force, "force", false, "Overwrite existing annotation files")
	fs.BoolVar(&opts.force, "f", false, "Shorthand for -force")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&opts.labels, "labels", "", "Text file containing model class names")
	fs.StringVar(&opts.outDir, "out-dir", "", "Write all annotation files into this directory")
	fs.StringVar(&opts.suffix, "suffix", "", "Suffix appended to the video name for annotation files")
	fs.StringVar(&opts.classes, "classes", "", "Comma delimited list of class names to restrict annotations to")
	fs.StringVar(&opts.metricsFile, "metrics", "", "Write Prometheus metrics to this textfile when done")
	fs.StringVar(&opts.platform, "platform", "", "Rockchip platform to pin fast CPU cores for [rk3562|rk3566|rk3568|rk3576|rk3582|rk3588]")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})

	if opts.video == "" {
		fs.Usage()
		return nil, errors.New("flag -video is required")
	}

	return opts, nil
}

// apply overrides the configuration with the flags given on the command line
func (o *options) apply(cfg *config.Config) {

	if o.set["conf"] {
		cfg.Detect.Confidence = o.conf
	}

	if o.model != "" {
		cfg.Model.Path = o.model
	}

	if o.force {
		cfg.Output.Force = true
	}

	if o.labels != "" {
		cfg.Model.Labels = o.labels
	}

	if o.outDir != "" {
		cfg.Output.Dir = o.outDir
	}

	if o.suffix != "" {
		cfg.Output.Suffix = o.suffix
	}

	if o.classes != "" {
		cfg.Detect.Classes = o.classes
	}

	if o.metricsFile != "" {
		cfg.MetricsFile = o.metricsFile
	}

	if o.platform != "" {
		cfg.Model.Platform = o.platform
	}
}

// closeNotifier is a batch.Notifier that must be closed when done
type closeNotifier interface {
	batch.Notifier
	Close() error
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// run executes the command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {

	if len(args) > 0 && args[0] == "verify" {
		return verify(args[1:], stdout, stderr)
	}

	opts, err := parseFlags(args, stderr)

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	// reject an impossible threshold before touching anything else
	if opts.set["conf"] && !(opts.conf >= 0 && opts.conf <= 1) {
		fmt.Fprintf(stderr, "Error: confidence threshold must be between 0.0 and 1.0, got %g\n", opts.conf)
		return 1
	}

	cfg, err := config.Load(opts.configFile)

	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	opts.apply(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	info, err := os.Stat(opts.video)

	if err != nil {
		fmt.Fprintf(stderr, "Error: path does not exist: %s\n", opts.video)
		return 1
	}

	classes := draftgt.Classes(draftgt.DefaultClasses)

	if cfg.Model.Labels != "" {
		if classes, err = draftgt.LoadClasses(cfg.Model.Labels); err != nil {
			fmt.Fprintf(stderr, "Error loading class names: %v\n", err)
			return 1
		}
	}

	if cfg.Model.Platform != "" {
		if err := rknnlite.SetCPUAffinityByPlatform(cfg.Model.Platform, rknnlite.FastCores); err != nil {
			log.Printf("Failed to set CPU Affinity: %v", err)
		}
	}

	engine, err := detect.New(cfg, classes, log.Default())

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	defer engine.Close()

	var notifier closeNotifier = notify.Nop{}

	if cfg.Notify.Brokers != "" {
		k, err := notify.NewKafka(cfg.Notify, log.Default())

		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		notifier = k
	}

	defer notifier.Close()

	m := metrics.New()

	runner := batch.NewRunner(engine,
		batch.WithOutputDir(cfg.Output.Dir),
		batch.WithSuffix(cfg.Output.Suffix),
		batch.WithForce(cfg.Output.Force),
		batch.WithNotifier(notifier),
		batch.WithMetrics(m),
		batch.WithProgress(report.FrameBar(stderr)),
		batch.WithLogger(log.Default()),
	)

	log.Printf("Run %s, confidence threshold %g", runner.RunID(), cfg.Detect.Confidence)

	code := execute(ctx, runner, opts.video, info.IsDir(), opts.output, stdout, stderr)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Printf("Failed to write metrics: %v", err)
		}
	}

	return code
}

// execute processes a single video or every video in a directory and
// returns the exit code
func execute(ctx context.Context, runner *batch.Runner, path string, isDir bool,
	output string, stdout, stderr io.Writer) int {

	if !isDir {
		res, err := runner.ProcessVideo(ctx, path, output)
		report.PrintResult(stdout, res)

		if err != nil {
			return 1
		}

		return 0
	}

	if output != "" {
		log.Printf("Ignoring -output in directory mode")
	}

	sum, err := runner.RunDirectory(ctx, path)

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	report.PrintSummary(stdout, sum)

	return sum.ExitCode()
}
