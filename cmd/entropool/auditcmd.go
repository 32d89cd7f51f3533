package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/entropool/entropool/audit"
	"github.com/entropool/entropool/internal/config"
	"github.com/entropool/entropool/label"
)

func cmdLabel(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "usage: entropool label (fmt|parse) <label>")
		return 2
	}

	switch args[0] {
	case "fmt":
		canonical, err := label.Canonicalize(args[1])
		if err != nil {
			fmt.Fprintf(errOut, "label: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, canonical)
		return 0
	case "parse":
		l, err := label.Parse(args[1])
		if err != nil {
			fmt.Fprintf(errOut, "label: %v\n", err)
			return 1
		}
		params := map[string]string{}
		for _, p := range l.Params {
			params[p.Key] = p.Value
		}
		if err := printJSON(out, map[string]any{
			"category":  l.Category,
			"type":      l.Type,
			"algorithm": l.Algorithm,
			"data":      l.Data,
			"date":      l.Date,
			"params":    params,
		}); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		return 0
	default:
		fmt.Fprintln(errOut, "usage: entropool label (fmt|parse) <label>")
		return 2
	}
}

func cmdAudit(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: entropool audit (verify|show|export|verify-export) ...")
		return 2
	}

	sub := args[0]
	fs := flag.NewFlagSet("audit "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "entropool.yaml", "config file")
	trailPath := fs.String("path", "", "trail file (default from config)")
	outPath := fs.String("out", "", "export archive path")
	inPath := fs.String("in", "", "archive to verify")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	if *trailPath == "" && sub != "verify-export" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if cfg.Audit.Path == "" {
			fmt.Fprintln(errOut, "no trail configured; pass --path or set audit.path")
			return 2
		}
		*trailPath = cfg.Audit.Path
	}

	switch sub {
	case "verify":
		n, err := audit.Verify(*trailPath)
		if err != nil {
			fmt.Fprintf(errOut, "audit: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "OK %d entries\n", n)
		return 0
	case "show":
		entries, err := audit.ReadAll(*trailPath)
		if err != nil {
			fmt.Fprintf(errOut, "audit: %v\n", err)
			return 1
		}
		type shown struct {
			Seq   uint64      `json:"seq"`
			Op    string      `json:"op"`
			Event audit.Event `json:"event"`
			Prev  string      `json:"prev,omitempty"`
		}
		view := make([]shown, len(entries))
		for i, e := range entries {
			view[i] = shown{Seq: e.Seq, Op: e.Event.Op.String(), Event: e.Event, Prev: e.Prev}
		}
		if err := printJSON(out, view); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		return 0
	case "export":
		if *outPath == "" {
			fmt.Fprintln(errOut, "export requires --out")
			return 2
		}
		f, err := os.OpenFile(*outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if err := audit.Export(f, *trailPath); err != nil {
			_ = f.Close()
			_ = os.Remove(*outPath)
			fmt.Fprintf(errOut, "audit: %v\n", err)
			return 1
		}
		if err := f.Close(); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintf(errOut, "trail exported to %s\n", *outPath)
		return 0
	case "verify-export":
		if *inPath == "" {
			fmt.Fprintln(errOut, "verify-export requires --in")
			return 2
		}
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		defer f.Close()
		if err := audit.VerifyExport(f); err != nil {
			fmt.Fprintf(errOut, "audit: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, "OK")
		return 0
	default:
		fmt.Fprintln(errOut, "usage: entropool audit (verify|show|export|verify-export) ...")
		return 2
	}
}
