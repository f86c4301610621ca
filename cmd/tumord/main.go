package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tumord/internal/config"
	"tumord/internal/supervisor"
	"tumord/internal/telemetry"
	"tumord/internal/worker"
)

const release = "tumord@1.0.0"

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath      string
	addr            string
	modelPath       string
	arch            string
	workers         int
	maxUploadMB     int
	inferTimeoutSec int
	logLevel        string
	corsEnabled     bool
	consoleLog      bool

	// internal: set by the supervisor when spawning children
	workerMode bool
	workerID   string
}

func buildRootCmd() *cobra.Command {
	var f cliFlags
	root := &cobra.Command{
		Use:           "tumord",
		Short:         "Brain-MRI tumor classification service",
		Long:          "tumord serves image-classification predictions from a pretrained convolutional model.\nA supervisor process runs N workers, each with its own loaded copy of the model.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f)
		},
	}
	fl := root.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "Optional config file (.yaml/.json/.toml)")
	fl.StringVar(&f.addr, "addr", "", "HTTP listen address, e.g. :7860")
	fl.StringVar(&f.modelPath, "model", "", "Path to the ONNX model artifact")
	fl.StringVar(&f.arch, "arch", "", "Architecture identifier, e.g. efficientnet_b0")
	fl.IntVar(&f.workers, "workers", 0, "Worker process count (0 = derive from CPU cores)")
	fl.IntVar(&f.maxUploadMB, "max-upload-mb", 0, "Maximum accepted image upload in MiB")
	fl.IntVar(&f.inferTimeoutSec, "infer-timeout-sec", 0, "Per-request inference time limit in seconds")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error|off")
	fl.BoolVar(&f.corsEnabled, "cors", false, "Enable permissive CORS for browser dashboards")
	fl.BoolVar(&f.consoleLog, "console-log", false, "Human-readable log output instead of JSON")

	fl.BoolVar(&f.workerMode, "worker", false, "Run as a single worker process (internal)")
	fl.StringVar(&f.workerID, "worker-id", "", "Worker identifier (internal)")
	_ = fl.MarkHidden("worker")
	_ = fl.MarkHidden("worker-id")
	return root
}

// resolveConfig layers configuration sources: file, then environment, then
// flags, then defaults. Read once at startup, never re-read.
func resolveConfig(f *cliFlags) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg = config.FromEnv(cfg)
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.modelPath != "" {
		cfg.ModelPath = f.modelPath
	}
	if f.arch != "" {
		cfg.Architecture = f.arch
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.maxUploadMB > 0 {
		cfg.MaxUploadBytes = int64(f.maxUploadMB) << 20
	}
	if f.inferTimeoutSec > 0 {
		cfg.InferTimeoutSec = f.inferTimeoutSec
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.corsEnabled {
		cfg.CORSEnabled = true
	}
	cfg = config.ApplyDefaults(cfg)
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, f *cliFlags) error {
	cfg, err := resolveConfig(f)
	if err != nil {
		return err
	}

	log := telemetry.NewLogger(cfg.LogLevel, f.consoleLog)
	if enabled, err := telemetry.InitSentry(cfg.SentryDSN, release); err != nil {
		log.Warn().Err(err).Msg("error tracking disabled")
	} else if enabled {
		log.Info().Msg("error tracking enabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if f.workerMode {
		return worker.Run(ctx, cfg, f.workerID, log)
	}

	count := supervisor.WorkerCount(cfg.Workers, cfg.MaxWorkers)
	if count == 1 {
		// Single-worker deployments skip the fork and serve in-process.
		return worker.Run(ctx, cfg, "0", log)
	}

	log.Info().Int("workers", count).Str("addr", cfg.Addr).Msg("starting worker pool")
	pool := supervisor.New(count, func(id string) []string {
		return append(append([]string(nil), os.Args[1:]...), "--worker", "--worker-id", id)
	}, log)
	return pool.Run(ctx)
}
