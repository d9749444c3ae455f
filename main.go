package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cloudinv/aws-dep-mapper/collector"
	ec2collector "github.com/cloudinv/aws-dep-mapper/collector/ec2"
	"github.com/cloudinv/aws-dep-mapper/collector/elasticache"
	"github.com/cloudinv/aws-dep-mapper/collector/elbv2"
	rdscollector "github.com/cloudinv/aws-dep-mapper/collector/rds"
	"github.com/cloudinv/aws-dep-mapper/config"
	"github.com/cloudinv/aws-dep-mapper/export"
	"github.com/cloudinv/aws-dep-mapper/inventory"
	"github.com/cloudinv/aws-dep-mapper/snapshot"
	"github.com/cloudinv/aws-dep-mapper/topology"
)

func init() {
	// Register collectors
	collector.Register(elbv2.NewLoadBalancerCollector())
	collector.Register(elbv2.NewTargetGroupCollector())
	collector.Register(ec2collector.NewInstanceCollector())
	collector.Register(ec2collector.NewGatewayCollector())
	collector.Register(rdscollector.NewCollector())
	collector.Register(elasticache.NewCollector())
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "collect":
		runCollect(os.Args[2:])
	case "map":
		runMap(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`awsdepmap - AWS inventory collection and dependency mapping

Usage:
  awsdepmap collect -config <run-config.yaml> -output <inventory.xlsx>
  awsdepmap map [flags] <inventory.xlsx> <output.xlsx>

Common flags:
  -log-level   Log level (debug, info, warn, error), default info`)
}

func setupLogger(level string) error {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", level)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return nil
}

func runCollect(args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to run configuration file")
	outputPath := fs.String("output", "", "Path of the inventory workbook to write")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Parse(args)

	if err := setupLogger(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	if *configPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config and -output options are required")
		fs.Usage()
		os.Exit(1)
	}

	if err := collect(context.Background(), *configPath, *outputPath); err != nil {
		slog.Error("collection failed", "error", err)
		os.Exit(1)
	}
}

func collect(ctx context.Context, configPath, outputPath string) error {
	slog.Info("loading run configuration", "config_path", configPath)
	cfg, err := config.LoadRunConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load run config: %w", err)
	}

	collectors := make([]collector.Collector, 0, len(cfg.Services))
	for _, service := range cfg.Services {
		c, err := collector.Get(service)
		if err != nil {
			return fmt.Errorf("unknown service %q in run config: %w", service, err)
		}
		collectors = append(collectors, c)
	}

	runner := collector.NewRunner(collectors)
	tables, err := runner.Run(ctx, cfg.Regions, collector.Options{TagFilters: cfg.Filters.Tags})
	if err != nil {
		return fmt.Errorf("collection aborted: %w", err)
	}

	if err := snapshot.Write(outputPath, tables); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	slog.Info("inventory written", "path", outputPath)
	return nil
}

func runMap(args []string) {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Parse(args)

	if err := setupLogger(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: map requires an input and an output path")
		fs.Usage()
		os.Exit(1)
	}

	if err := mapDependencies(fs.Arg(0), fs.Arg(1)); err != nil {
		slog.Error("dependency mapping failed", "error", err)
		os.Exit(1)
	}
}

func mapDependencies(inputPath, outputPath string) error {
	tables, err := snapshot.Read(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read inventory: %w", err)
	}

	catalog, err := inventory.Load(tables)
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	builder := topology.NewBuilder(catalog)
	topologies := builder.Build()
	stats := builder.Stats()
	slog.Info("topology build finished",
		"load_balancers", stats.LoadBalancers,
		"missing_vpc", stats.MissingVPC,
		"unresolved_targets", stats.UnresolvedTargets)

	if err := export.WriteWorkbook(outputPath, topologies); err != nil {
		return fmt.Errorf("failed to write dependency workbook: %w", err)
	}
	slog.Info("dependency mapping written", "path", outputPath)
	return nil
}
