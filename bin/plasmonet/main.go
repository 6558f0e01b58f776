package main

import (
	"flag"
	"log"
	"math/rand"
	"runtime"
	"time"

	"github.com/kentwait/plasmonet"
)

func main() {
	numCPUPtr := flag.Int("threads", runtime.NumCPU(), "number of CPU threads")
	loggerOverride := flag.String("logger", "", "override the configured output backend (csv|sqlite)")
	seedNum := flag.Int64("seed", time.Now().UTC().UnixNano(), "random seed. Uses Unix time in nanoseconds as default")
	debugGraph := flag.Bool("debug-graph", false, "assert every chain's dependency graph stays acyclic after construction")
	flag.Parse()

	rand.Seed(*seedNum)
	runtime.GOMAXPROCS(*numCPUPtr)

	configPath := flag.Arg(0)
	if configPath == "" {
		log.Fatal("usage: plasmonet <config.toml>")
	}

	conf, err := plasmonet.LoadRunConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	backend := conf.Logging.Backend
	if *loggerOverride != "" {
		backend = *loggerOverride
	}
	logger, err := newLogger(backend, conf.Logging.OutputPath)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Close()

	checkpoint, err := plasmonet.LoadCheckpoint(conf.Logging.OutputPath)
	if err != nil {
		log.Fatal(err)
	}
	if checkpoint.Iteration > 0 {
		log.Printf("resuming from checkpoint at iteration %d", checkpoint.Iteration)
	}

	rootRng := rand.New(rand.NewSource(*seedNum))

	var buildErr error
	ladder := plasmonet.NewLadder(conf.Replica.NumChains, conf.Replica.Ratio, func(k int, beta float64) *plasmonet.Chain {
		chain, err := buildChain(conf, beta, rand.New(rand.NewSource(rootRng.Int63())), checkpoint)
		if err != nil {
			buildErr = err
			return nil
		}
		if *debugGraph || plasmonet.DebugGraphEnabled() {
			plasmonet.AssertAcyclic(chain.Graph)
		}
		return chain
	})
	if buildErr != nil {
		log.Fatalf("building replica ladder: %s", buildErr)
	}

	start := time.Now()
	for iter := checkpoint.Iteration; iter < conf.Run.Iterations; iter++ {
		if err := ladder.AdvanceAll(); err != nil {
			log.Fatal(err)
		}
		if conf.Replica.NumChains > 1 && iter%conf.Replica.SwapEvery == 0 {
			ladder.AttemptSwaps(rootRng)
		}
		if iter%conf.Logging.LogFreq == 0 {
			if err := plasmonet.LogIteration(logger, ladder.ColdModel(), iter); err != nil {
				log.Fatal(err)
			}
		}
	}
	log.Printf("completed %d iterations in %s", conf.Run.Iterations, time.Since(start))
}

// buildChain constructs one replica's model, graph, scheduler, and chain,
// applying any recovered checkpoint state before kernels are registered so
// a hot-restarted run continues from the exact values it last logged.
func buildChain(conf *plasmonet.RunConfig, beta float64, rng *rand.Rand, checkpoint *plasmonet.RunState) (*plasmonet.Chain, error) {
	model, err := plasmonet.BuildChainModel(conf, beta)
	if err != nil {
		return nil, err
	}
	plasmonet.ApplyCheckpoint(model, checkpoint)

	scheduler := plasmonet.NewScheduler(rng, conf.Scheduler.SamplesPerStep)
	plasmonet.RegisterKernels(conf, model, scheduler)

	return plasmonet.NewChainWithModel(model, scheduler), nil
}

// newLogger constructs the configured Logger backend.
func newLogger(backend, outputPath string) (plasmonet.Logger, error) {
	switch backend {
	case "sqlite":
		return plasmonet.NewSQLiteLogger(outputPath)
	default:
		ctx, err := plasmonet.NewOutputContext(outputPath)
		if err != nil {
			return nil, err
		}
		return plasmonet.NewCSVLogger(ctx), nil
	}
}
