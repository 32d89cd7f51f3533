package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/entropool/entropool/internal/config"
	"github.com/entropool/entropool/pool"
	"github.com/entropool/entropool/quality"
)

func cmdCollect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "entropool.yaml", "config file")
	sourceKind := fs.String("source", "system-rng", "source kind")
	bits := fs.Int("bits", 256, "target entropy bits")
	noiseDevice := fs.String("noise-device", "", "hardware noise device path")
	challengeDevice := fs.String("challenge-device", "", "challenge-response device path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	kind, err := pool.ParseSourceKind(*sourceKind)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	reg, closeDevices, err := buildRegistry(*noiseDevice, *challengeDevice, os.Stdin, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer closeDevices()

	e, cleanup, err := openEngine(cfg, reg, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer cleanup()

	ctx, cancel := interruptibleContext()
	defer cancel()

	p, err := e.CollectEntropy(ctx, kind, *bits)
	if err != nil {
		fmt.Fprintf(errOut, "collect: %v\n", err)
		return 1
	}

	fmt.Fprintf(errOut, "collected %d bits from %s into pool %s (%s)\n",
		p.EntropyBits, p.Source, p.ID, p.Metrics.Tier)
	if err := printJSON(out, pool.DescriptorOf(p, time.Now().UTC())); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

// poolList implements flag.Value for repeated --pool.
type poolList []string

func (p *poolList) String() string { return fmt.Sprint([]string(*p)) }

func (p *poolList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func cmdCombine(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("combine", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "entropool.yaml", "config file")
	var pools poolList
	fs.Var(&pools, "pool", "contributing pool id (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if len(pools) == 0 {
		fmt.Fprintln(errOut, "combine requires at least one --pool")
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	e, cleanup, err := openEngine(cfg, nil, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer cleanup()

	ctx, cancel := interruptibleContext()
	defer cancel()

	p, err := e.CombineAndValidate(ctx, pools)
	if err != nil {
		fmt.Fprintf(errOut, "combine: %v\n", err)
		return 1
	}

	fmt.Fprintf(errOut, "combined %d pools into %s (%d bits, %s); contributors are now consumed\n",
		len(p.Lineage), p.ID, p.EntropyBits, p.Metrics.Tier)
	if err := printJSON(out, pool.DescriptorOf(p, time.Now().UTC())); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdAnalyze(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "entropool.yaml", "config file")
	poolID := fs.String("pool", "", "stored pool id")
	filePath := fs.String("file", "", "analyze a raw file instead of a pool")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (*poolID == "") == (*filePath == "") {
		fmt.Fprintln(errOut, "analyze requires exactly one of --pool or --file")
		return 2
	}

	var report quality.Report
	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		report = quality.Evaluate(data)
		pool.Zero(data)
	} else {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		e, cleanup, err := openEngine(cfg, nil, errOut)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		defer cleanup()

		ctx, cancel := interruptibleContext()
		defer cancel()
		report, err = e.ValidatePool(ctx, *poolID)
		if err != nil {
			fmt.Fprintf(errOut, "analyze: %v\n", err)
			return 1
		}
	}

	fmt.Fprintf(errOut, "%d bytes: entropy %.4f bits/byte, chi2 p %.4f, tier %s\n",
		report.SizeBytes, report.Entropy, report.ChiPValue, report.Tier)
	if err := printJSON(out, report); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdPools(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("pools", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "entropool.yaml", "config file")
	unconsumed := fs.Bool("unconsumed", false, "list only unconsumed pools")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	e, cleanup, err := openEngine(cfg, nil, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer cleanup()

	ctx, cancel := interruptibleContext()
	defer cancel()

	descriptors, err := e.Pools(ctx, *unconsumed)
	if err != nil {
		fmt.Fprintf(errOut, "pools: %v\n", err)
		return 1
	}
	if err := printJSON(out, descriptors); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}
