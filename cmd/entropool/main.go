// Command entropool is the operator CLI over the entropy pool library:
// collect, combine, analyze, derive, verify, and audit.
//
// Machine-readable output goes to stdout as JSON; human summaries and
// prompts go to stderr. Exit codes: 0 success, 1 operation failure,
// 2 usage error. Secrets are never printed except a derived username
// itself.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/entropool/entropool/audit"
	"github.com/entropool/entropool/derive"
	"github.com/entropool/entropool/engine"
	"github.com/entropool/entropool/internal/config"
	"github.com/entropool/entropool/source"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "collect":
		return cmdCollect(args[1:], out, errOut)
	case "combine":
		return cmdCombine(args[1:], out, errOut)
	case "analyze":
		return cmdAnalyze(args[1:], out, errOut)
	case "pools":
		return cmdPools(args[1:], out, errOut)
	case "salt-init":
		return cmdSaltInit(args[1:], out, errOut)
	case "derive":
		return cmdDerive(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "label":
		return cmdLabel(args[1:], out, errOut)
	case "audit":
		return cmdAudit(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "entropool: entropy pool collection, combination, and derivation")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  entropool collect --source <kind> --bits <n> [--noise-device <path>] [--challenge-device <path>]")
	fmt.Fprintln(w, "  entropool combine --pool <id> [--pool <id> ...]")
	fmt.Fprintln(w, "  entropool analyze (--pool <id> | --file <path>)")
	fmt.Fprintln(w, "  entropool pools [--unconsumed]")
	fmt.Fprintln(w, "  entropool salt-init --pool <id> --out <saltfile> [--force] [--allow-expired] [--accept-below-tier]")
	fmt.Fprintln(w, "  entropool derive --salt <saltfile> --domain <domain> [--length <n>]")
	fmt.Fprintln(w, "  entropool verify --salt <saltfile> --domain <domain> --candidate <username>")
	fmt.Fprintln(w, "  entropool label (fmt|parse) <label>")
	fmt.Fprintln(w, "  entropool audit (verify|show|export --out <tar>|verify-export --in <tar>)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - every subcommand accepts --config <path> (default entropool.yaml)")
	fmt.Fprintln(w, "  - source kinds: system-rng, dice, hardware-noise, hardware-challenge")
	fmt.Fprintln(w, "  - dice rolls are prompted on stdin, one face (1-6) per line; Ctrl-C discards")
	fmt.Fprintln(w, "  - pool JSON goes to stdout; prompts and summaries go to stderr")
	fmt.Fprintln(w, "  - salt files hold secret material; keep them 0600 and backed up")
}

// interruptibleContext cancels on SIGINT/SIGTERM so user-paced
// collection can be abandoned mid-sequence; adapters discard partial
// material on cancellation.
func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openEngine wires the configured repository, audit recorder, policy,
// and the given source registry into an engine. The returned cleanup
// closes whatever was opened.
func openEngine(cfg config.Config, reg *source.Registry, errOut io.Writer) (*engine.Engine, func(), error) {
	repo, closeRepo, err := cfg.OpenRepository()
	if err != nil {
		return nil, nil, err
	}

	var recorders audit.Multi
	var closeTrail func() error
	if cfg.Audit.Path != "" {
		trail, err := audit.OpenTrail(cfg.Audit.Path)
		if err != nil {
			if closeRepo != nil {
				_ = closeRepo()
			}
			return nil, nil, err
		}
		recorders = append(recorders, trail)
		closeTrail = trail.Close
	}
	if cfg.Audit.Slog {
		recorders = append(recorders, audit.NewSlog(slog.New(slog.NewTextHandler(errOut, nil))))
	}
	var recorder audit.Recorder = audit.Noop{}
	if len(recorders) > 0 {
		recorder = recorders
	}

	pol, err := cfg.DerivePolicy()
	if err != nil {
		return nil, nil, err
	}
	xofID, err := cfg.XOFID()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if closeTrail != nil {
			_ = closeTrail()
		}
		if closeRepo != nil {
			_ = closeRepo()
		}
	}
	e := engine.New(repo, engine.Options{
		Sources:  reg,
		Policy:   &pol,
		Recorder: recorder,
		XOF:      xofID,
	})
	return e, cleanup, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadSalt(path string, errOut io.Writer) (*derive.Salt, bool) {
	if path == "" {
		fmt.Fprintln(errOut, "missing --salt")
		return nil, false
	}
	salt, err := derive.FileStore{Path: path}.Load()
	if err != nil {
		fmt.Fprintf(errOut, "load salt: %v\n", err)
		return nil, false
	}
	return salt, true
}
