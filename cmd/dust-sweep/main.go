package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"dustfall/internal/geom"
	"dustfall/internal/sims/dust"
	"dustfall/internal/spatial"
)

type paramSet struct {
	flushLimit int
	depth      int
}

func (p paramSet) String() string {
	return fmt.Sprintf("flush=%d depth=%d", p.flushLimit, p.depth)
}

type scenarioResult struct {
	params      paramSet
	meanStep    time.Duration
	peakPending int
	nodes       int
	rays        int
	agree       int
}

func (r scenarioResult) agreement() float64 {
	if r.rays == 0 {
		return 1
	}
	return float64(r.agree) / float64(r.rays)
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	steps := flag.Int("steps", 300, "ticks to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	size := flag.Int("size", 160, "grid width and height")
	rays := flag.Int("rays", 32, "rays cast every 10 ticks to check tree answers")
	flushes := flag.String("flush", "-1,0,64,256,1024", "flush limits to try")
	depths := flag.String("depth", "0,4,6", "tree max depths to try (0 = single cell)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	fl, err := parseInts(*flushes)
	if err != nil {
		logger.Fatal("bad -flush", zap.Error(err))
	}
	dl, err := parseInts(*depths)
	if err != nil {
		logger.Fatal("bad -depth", zap.Error(err))
	}

	base := dust.DefaultConfig()
	base.Width = *size
	base.Height = *size

	var sets []paramSet
	for _, f := range fl {
		for _, d := range dl {
			sets = append(sets, paramSet{flushLimit: f, depth: d})
		}
	}
	logger.Info("sweep", zap.Int("sets", len(sets)), zap.Int("workers", *workers), zap.Int("steps", *steps))

	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < max(*workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- runScenario(base, params, *steps, *rays)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	for res := range results {
		all = append(all, res)
		logger.Debug("scenario done", zap.Stringer("params", res.params))
	}

	sort.Slice(all, func(i, j int) bool { return all[i].meanStep < all[j].meanStep })
	fmt.Printf("Results by mean step time (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i, res := range all {
		fmt.Printf("%2d) %-22s step=%-10s peakPending=%-6d nodes=%-6d rays agree %.1f%%\n",
			i+1, res.params, res.meanStep.Round(time.Microsecond), res.peakPending, res.nodes, 100*res.agreement())
	}
}

func runScenario(base dust.Config, params paramSet, steps, rays int) scenarioResult {
	cfg := base
	cfg.FlushLimit = params.flushLimit
	cfg.TreeMaxDepth = params.depth

	world := dust.NewWithConfig(cfg)
	w, h := cfg.Width, cfg.Height
	world.Paint(w/4, h/2, w/12, dust.KindSolid)
	world.Paint(w/2, h/3, w/10, dust.KindLiquid)

	rng := rand.New(rand.NewSource(cfg.Seed))
	stop := spatial.Any(dust.FamilySolid, dust.FamilySand)
	res := scenarioResult{params: params}
	var total time.Duration
	for tick := 0; tick < steps; tick++ {
		if tick%4 == 0 {
			world.Paint(w/4+rng.Intn(w/2), h/8, 3, dust.KindSand)
		}
		start := time.Now()
		world.Step()
		total += time.Since(start)
		res.peakPending = max(res.peakPending, world.LastStats().Pending)

		if rays > 0 && tick%10 == 9 {
			exact := spatial.NewTree(w, h, 0)
			exact.Build(world.Grid())
			for i := 0; i < rays; i++ {
				o := geom.V(rng.Float64()*float64(w), rng.Float64()*float64(h))
				if world.Grid().ClassAt(int(o.X), int(o.Y)) != dust.FamilyNothing {
					// a ray starting inside an occluder reports the
					// entry of whatever region holds it
					continue
				}
				a := rng.Float64() * 2 * math.Pi
				d := geom.V(math.Cos(a), math.Sin(a))
				got := world.Grid().TraceRay(o, d, stop)
				want := exact.TraceRay(o, d, stop)
				res.rays++
				if got == want || math.Abs(got-want) < 1e-9 {
					res.agree++
				}
			}
		}
	}
	if steps > 0 {
		res.meanStep = total / time.Duration(steps)
	}
	res.nodes = world.Grid().Tree().Nodes()
	return res
}
