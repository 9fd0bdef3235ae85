package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dustfall/internal/sims/dust"
	"dustfall/internal/trace"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// stroke is one scripted paint operation, written material:x,y,radius.
type stroke struct {
	material string
	x, y, r  int
	every    int
}

func parseStroke(s string) (stroke, error) {
	name, rest, ok := strings.Cut(s, ":")
	if !ok {
		return stroke{}, fmt.Errorf("paint %q: want material:x,y,radius[,every]", s)
	}
	parts := strings.Split(rest, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return stroke{}, fmt.Errorf("paint %q: want material:x,y,radius[,every]", s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return stroke{}, fmt.Errorf("paint %q: %w", s, err)
		}
		nums[i] = v
	}
	st := stroke{material: name, x: nums[0], y: nums[1], r: nums[2]}
	if len(nums) == 4 {
		st.every = nums[3]
	}
	return st, nil
}

// defaultScript drops a sand column, fills a water pool and releases gas.
func defaultScript(cfg dust.Config) []stroke {
	w, h := cfg.Width, cfg.Height
	return []stroke{
		{material: "solid", x: w / 4, y: h / 2, r: w / 12},
		{material: "water", x: w / 2, y: h / 3, r: w / 10},
		{material: "sand", x: w / 4, y: h / 8, r: 3, every: 4},
		{material: "gravel", x: 3 * w / 4, y: h / 8, r: 2, every: 6},
		{material: "gas", x: w / 2, y: 3 * h / 4, r: 2, every: 10},
	}
}

func main() {
	cfg := dust.DefaultConfig()
	configPath := flag.String("config", "", "YAML file with simulation settings")
	steps := flag.Int("steps", 600, "number of ticks to simulate")
	tracePath := flag.String("trace", "", "write per-tick statistics to this .jsonl.zst file")
	debug := flag.Bool("debug", false, "development logging")
	var overrides, paints kvList
	flag.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Var(&paints, "paint", "scripted paint material:x,y,radius[,every] (repeatable)")
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *configPath != "" {
		loaded, err := dust.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("load config", zap.Error(err))
		}
		// flags given explicitly still win over the file
		flag.Visit(func(f *flag.Flag) { loaded.Apply(map[string]string{f.Name: f.Value.String()}) })
		cfg = loaded
	}
	set := map[string]string{}
	for _, kv := range overrides {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			logger.Fatal("bad override", zap.String("set", kv))
		}
		set[k] = v
	}
	if unknown := cfg.Apply(set); len(unknown) > 0 {
		logger.Fatal("unknown override keys", zap.Strings("keys", unknown))
	}

	script := defaultScript(cfg)
	if len(paints) > 0 {
		script = script[:0]
		for _, p := range paints {
			st, err := parseStroke(p)
			if err != nil {
				logger.Fatal("bad paint", zap.Error(err))
			}
			script = append(script, st)
		}
	}

	world := dust.NewWithConfig(cfg, dust.WithLogger(logger))

	var tw *trace.Writer
	if *tracePath != "" {
		tw, err = trace.Create(*tracePath, trace.Header{
			Sim:    world.Name(),
			Width:  cfg.Width,
			Height: cfg.Height,
			Seed:   cfg.Seed,
			Params: map[string]string{
				"flush_limit": strconv.Itoa(cfg.FlushLimit),
				"max_pending": strconv.Itoa(cfg.MaxPending),
				"tree_depth":  strconv.Itoa(cfg.TreeMaxDepth),
				"steps":       strconv.Itoa(*steps),
			},
		})
		if err != nil {
			logger.Fatal("open trace", zap.Error(err))
		}
		logger = logger.With(zap.String("run", tw.RunID()))
	}

	progress := rate.Sometimes{Interval: time.Second}
	var total time.Duration
	peakActive, peakPending := 0, 0
	for tick := 0; tick < *steps; tick++ {
		for _, st := range script {
			if (tick == 0 || (st.every > 0 && tick%st.every == 0)) && st.r >= 0 {
				if err := world.PaintCircle(st.x, st.y, st.r, st.material); err != nil {
					logger.Fatal("paint", zap.Error(err))
				}
			}
		}
		start := time.Now()
		world.Step()
		took := time.Since(start)
		total += took

		s := world.LastStats()
		peakActive = max(peakActive, s.Active)
		peakPending = max(peakPending, s.Pending)
		if tw != nil {
			err := tw.WriteTick(trace.Tick{
				Frame:     s.Frame,
				Active:    s.Active,
				Particles: s.Particles,
				Flushed:   s.Flushed,
				Pending:   s.Pending,
				StepNanos: took.Nanoseconds(),
			})
			if err != nil {
				logger.Fatal("write trace", zap.Error(err))
			}
		}
		progress.Do(func() {
			logger.Info("progress",
				zap.Uint64("frame", s.Frame),
				zap.Int("active", s.Active),
				zap.Int("particles", s.Particles),
				zap.Int("pending", s.Pending),
			)
		})
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			logger.Fatal("close trace", zap.Error(err))
		}
	}

	s := world.LastStats()
	var mean time.Duration
	if *steps > 0 {
		mean = total / time.Duration(*steps)
	}
	logger.Info("done",
		zap.Int("steps", *steps),
		zap.Int("particles", s.Particles),
		zap.Int("peak_active", peakActive),
		zap.Int("peak_pending", peakPending),
		zap.Int("tree_nodes", world.Grid().Tree().Nodes()),
		zap.Duration("mean_step", mean),
		zap.Duration("total", total),
	)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
