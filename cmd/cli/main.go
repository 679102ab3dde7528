package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"vvengine/adapters/excel"
	"vvengine/app"
	"vvengine/domain/core"
	"vvengine/domain/engine"
	"vvengine/internal/config"
	"vvengine/internal/report"
)

type options struct {
	mode        string
	file        string
	column      string
	confidence  float64
	reliability float64
	sidedness   string
	failures    int
	sweep       bool
	lsl         float64
	usl         float64
	hasLSL      bool
	hasUSL      bool
	multiplier  float64
	ea          float64
	tUse        float64
	tTest       float64
	format      string
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := options{}
	flag.StringVar(&opts.mode, "mode", "pipeline", "analysis mode: attribute | tolerance | pipeline | zero-failure | acceleration")
	flag.StringVar(&opts.file, "file", "", "measurement file (.xlsx or .csv), required for tolerance and pipeline modes")
	flag.StringVar(&opts.column, "column", "", "measurement column name")
	flag.Float64Var(&opts.confidence, "confidence", cfg.Defaults.Confidence, "confidence level C in (0,1)")
	flag.Float64Var(&opts.reliability, "reliability", cfg.Defaults.Reliability, "reliability R in (0,1)")
	flag.StringVar(&opts.sidedness, "sidedness", "two", `interval sidedness: "one" or "two"`)
	flag.IntVar(&opts.failures, "failures", 0, "allowable failures c for attribute mode")
	flag.BoolVar(&opts.sweep, "sweep", false, "attribute mode: run the c=0..3 sensitivity sweep instead of a single c")
	flag.Float64Var(&opts.lsl, "lsl", 0, "lower specification limit")
	flag.Float64Var(&opts.usl, "usl", 0, "upper specification limit")
	flag.Float64Var(&opts.multiplier, "multiplier", 1, "zero-failure mode: per-unit test duration multiplier")
	flag.Float64Var(&opts.ea, "ea", 0, "acceleration mode: activation energy in eV")
	flag.Float64Var(&opts.tUse, "t-use", 0, "acceleration mode: use temperature in Kelvin")
	flag.Float64Var(&opts.tTest, "t-test", 0, "acceleration mode: test temperature in Kelvin")
	flag.StringVar(&opts.format, "format", "markdown", "output format: markdown | html | json")
	flag.Parse()

	opts.hasLSL = flagWasSet("lsl")
	opts.hasUSL = flagWasSet("usl")

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func run(opts options) error {
	svc := app.NewEngineService()

	var (
		res *engine.EngineResult
		err error
	)
	switch opts.mode {
	case "attribute":
		req := app.AttributeRequest{Confidence: opts.confidence, Reliability: opts.reliability}
		if !opts.sweep {
			req.AllowableFailures = &opts.failures
		}
		res, err = svc.ComputeAttribute(req)
	case "tolerance":
		sample, rerr := loadSample(opts)
		if rerr != nil {
			return rerr
		}
		res, err = svc.ComputeTolerance(app.ToleranceRequest{
			Values:      sample.Values(),
			Confidence:  opts.confidence,
			Reliability: opts.reliability,
			Sidedness:   core.Sidedness(opts.sidedness),
			SpecLimits:  specLimits(opts),
		})
	case "pipeline":
		sample, rerr := loadSample(opts)
		if rerr != nil {
			return rerr
		}
		res, err = svc.ComputePipeline(app.PipelineRequest{
			Values:      sample.Values(),
			Confidence:  opts.confidence,
			Reliability: opts.reliability,
			Sidedness:   core.Sidedness(opts.sidedness),
			SpecLimits:  specLimits(opts),
		})
	case "zero-failure":
		res, err = svc.ComputeZeroFailureDuration(app.ZeroFailureRequest{
			Confidence:     opts.confidence,
			UnitMultiplier: opts.multiplier,
		})
	case "acceleration":
		res, err = svc.ComputeAccelerationFactor(app.AccelerationRequest{
			ActivationEnergyEV: opts.ea,
			TUseK:              opts.tUse,
			TTestK:             opts.tTest,
		})
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
	if err != nil {
		return err
	}

	return emit(res, opts.format)
}

func loadSample(opts options) (core.Sample, error) {
	if opts.file == "" || opts.column == "" {
		return core.Sample{}, fmt.Errorf("mode %q requires -file and -column", opts.mode)
	}
	return excel.NewDataReader(opts.file).ReadColumn(opts.column)
}

func specLimits(opts options) *core.SpecLimits {
	if !opts.hasLSL && !opts.hasUSL {
		return nil
	}
	limits := &core.SpecLimits{}
	if opts.hasLSL {
		v := opts.lsl
		limits.Lower = &v
	}
	if opts.hasUSL {
		v := opts.usl
		limits.Upper = &v
	}
	return limits
}

func emit(res *engine.EngineResult, format string) error {
	renderer := report.NewRenderer()
	switch format {
	case "markdown":
		fmt.Print(renderer.Markdown(res))
	case "html":
		os.Stdout.Write(renderer.HTML(res))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
