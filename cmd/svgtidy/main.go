package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/svgtidy-playground/cache"
	"github.com/wippyai/svgtidy-playground/config"
	"github.com/wippyai/svgtidy-playground/conformance"
	"github.com/wippyai/svgtidy-playground/engine"
	"github.com/wippyai/svgtidy-playground/loader"
	"github.com/wippyai/svgtidy-playground/playground"
	"github.com/wippyai/svgtidy-playground/runtime"
	"github.com/wippyai/svgtidy-playground/server"
)

const version = "0.1.0"

// errFixturesFailed makes `test` exit non-zero without printing twice.
var errFixturesFailed = errors.New("fixtures failed")

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: svgtidy play      [-wasm file] [-file input.svg]")
	fmt.Fprintln(os.Stderr, "       svgtidy test      [-wasm file] [-workers n] [dir]")
	fmt.Fprintln(os.Stderr, "       svgtidy transform [-wasm file] [file]")
	fmt.Fprintln(os.Stderr, "       svgtidy serve     [-wasm file] [-port port]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "play":
		err = runPlay(cfg, args)
	case "test":
		err = runTest(cfg, args)
	case "transform":
		err = runTransform(cfg, args)
	case "serve":
		err = runServe(cfg, args)
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if errors.Is(err, errFixturesFailed) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// optimizerFlags registers the flags every subcommand shares.
func optimizerFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Optimizer.WasmPath, "wasm", cfg.Optimizer.WasmPath, "Path to the optimizer wasm module")
	fs.IntVar(&cfg.Optimizer.PoolSize, "pool", cfg.Optimizer.PoolSize, "Optimizer instance pool size")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
}

// newLogger builds the process logger. quiet discards output unless a log
// file is configured, so nothing draws over the terminal UI.
func newLogger(cfg config.LogConfig, quiet bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if quiet && cfg.File == "" {
		return zap.NewNop(), nil
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	}
	return zc.Build()
}

func setup(cfg *config.Config, quiet bool) (*zap.Logger, error) {
	log, err := newLogger(cfg.Log, quiet)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}
	engine.SetLogger(log.Named("engine"))
	playground.SetLogger(log.Named("playground"))
	return log, nil
}

func loadOptimizer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*runtime.Runtime, *runtime.Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	rt, err := runtime.New(ctx, runtime.Options{
		PoolSize:         cfg.Optimizer.PoolSize,
		MemoryLimitPages: cfg.Optimizer.MemoryPages,
		CacheDir:         cfg.Optimizer.CacheDir,
		Logger:           log.Named("runtime"),
	})
	if err != nil {
		return nil, nil, err
	}
	opt, err := rt.LoadOptimizerFile(ctx, cfg.Optimizer.WasmPath)
	if err != nil {
		rt.Close(ctx)
		return nil, nil, err
	}
	return rt, opt, nil
}

func runTest(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	optimizerFlags(fs, cfg)
	workers := fs.Int("workers", 1, "Fixtures optimized concurrently")
	fs.Parse(args)

	dir := "test-cases"
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	log, err := setup(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	rt, opt, err := loadOptimizer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	report, err := conformance.Run(ctx, opt, dir, conformance.Options{
		Workers: *workers,
		Logger:  log.Named("conformance"),
	})
	if err != nil {
		return err
	}
	if err := report.Write(os.Stdout); err != nil {
		return err
	}
	if !report.OK() {
		return errFixturesFailed
	}
	return nil
}

func runTransform(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	optimizerFlags(fs, cfg)
	fs.Parse(args)

	log, err := setup(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	var in io.Reader = os.Stdin
	path := "<stdin>"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	ctx := context.Background()
	rt, opt, err := loadOptimizer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	lc := loader.Context{ResourcePath: path, Logger: log.Named("loader")}
	return loader.TransformStream(ctx, lc, opt, in, os.Stdout)
}

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	optimizerFlags(fs, cfg)
	fs.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP listen port")
	fs.StringVar(&cfg.Cache.RedisAddr, "redis", cfg.Cache.RedisAddr, "Redis address for the result cache (empty disables it)")
	fs.Parse(args)

	log, err := setup(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, opt, err := loadOptimizer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	deps := server.RouterDeps{
		ServiceName:   "svgtidy-playground",
		Version:       version,
		Optimizer:     opt,
		Logger:        log.Named("http"),
		MaxInputBytes: cfg.Server.MaxInputBytes,
		AllowOrigins:  cfg.Server.AllowOrigins,
	}
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, cache calls will fall through",
				zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		}
		deps.Cache = cache.New(client, cfg.Cache.TTL)
	}

	return server.Serve(ctx, ":"+cfg.Server.Port, server.BuildRouter(deps), log)
}
