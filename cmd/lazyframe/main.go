package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/config"
	"github.com/harshithgowdakt/lazyframe/internal/format"
	"github.com/harshithgowdakt/lazyframe/internal/logging"
	"github.com/harshithgowdakt/lazyframe/internal/operator"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/processor"
)

type flags struct {
	configPath string
	start, end int64
	limit      int64
	repeat     bool
	blockSize  int
	partitions int
	explain    bool
	planOut    string
	outFormat  string
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "YAML config file")
	flag.Int64Var(&f.start, "start", 0, "First value of the sequence")
	flag.Int64Var(&f.end, "end", 10, "End of the sequence (exclusive)")
	flag.Int64Var(&f.limit, "limit", -1, "Keep only the first N rows (-1 for all)")
	flag.BoolVar(&f.repeat, "repeat", false, "Append the sequence to itself")
	flag.IntVar(&f.blockSize, "block-size", 0, "Rows per block (overrides config)")
	flag.IntVar(&f.partitions, "partitions", 0, "Split the sequence across N workers (overrides config)")
	flag.BoolVar(&f.explain, "explain", false, "Print the plan and exit")
	flag.StringVar(&f.planOut, "plan-out", "", "Write the serialized plan to this file")
	flag.StringVar(&f.outFormat, "format", "tsv", "Output format: tsv, csv or json")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "lazyframe: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return err
		}
	}
	if f.blockSize != 0 {
		cfg.BlockSize = f.blockSize
	}
	if f.partitions != 0 {
		cfg.Partitions = f.partitions
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	root, err := buildPlan(f)
	if err != nil {
		return err
	}

	if f.planOut != "" {
		codec, err := cfg.Codec()
		if err != nil {
			return err
		}
		data, err := plan.Marshal(root, codec)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.planOut, data, 0o644); err != nil {
			return errors.Wrap(err, "write plan")
		}
		log.Info("plan written", zap.String("path", f.planOut), zap.Int("bytes", len(data)))
	}

	if f.explain {
		s, err := operator.Explain(root)
		if err != nil {
			return err
		}
		fmt.Println(s)
		return nil
	}

	outFormat, err := format.Parse(f.outFormat)
	if err != nil {
		return err
	}

	// Cancel the run on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("interrupted, cancelling")
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := cfg.ProcessorOptions(log)
	schema, err := operator.InferType(root)
	if err != nil {
		return err
	}
	w := format.NewWriter(os.Stdout, outFormat, format.ColumnNames(nil, len(schema)), schema)
	sink := func(b *column.Block) error { return w.WriteBlock(b) }

	if cfg.Partitions > 1 && root.Kind() == plan.KindSequence {
		err = processor.RunPartitioned(ctx, root, cfg.Partitions, opts, sink)
	} else {
		var p *processor.Pipeline
		if p, err = processor.Compile(root, opts); err != nil {
			return err
		}
		err = p.Run(ctx, sink)
	}
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Debug("query finished", zap.Int("rows", w.Rows()))
	return nil
}

// buildPlan assembles Sequence, optionally Append(seq, seq), then Limit.
func buildPlan(f flags) (*plan.Node, error) {
	root, err := operator.NewSequenceNode(f.start, f.end)
	if err != nil {
		return nil, err
	}
	if f.repeat {
		if root, err = operator.NewAppendNode(root, root); err != nil {
			return nil, err
		}
	}
	if f.limit >= 0 {
		if root, err = operator.NewLimitNode(root, f.limit); err != nil {
			return nil, err
		}
	}
	return root, nil
}
