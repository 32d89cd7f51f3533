package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/entropool/entropool/derive"
	"github.com/entropool/entropool/internal/config"
)

func cmdSaltInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("salt-init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "entropool.yaml", "config file")
	poolID := fs.String("pool", "", "pool to consume")
	outPath := fs.String("out", "", "salt file to write")
	force := fs.Bool("force", false, "overwrite an existing salt file")
	allowExpired := fs.Bool("allow-expired", false, "freshness override: accept an expired pool")
	acceptBelowTier := fs.Bool("accept-below-tier", false, "quality override: accept a below-tier pool")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *poolID == "" || *outPath == "" {
		fmt.Fprintln(errOut, "salt-init requires --pool and --out")
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if *allowExpired {
		cfg.Policy.AllowExpired = true
	}
	if *acceptBelowTier {
		cfg.Policy.AcceptBelowTier = true
	}

	e, cleanup, err := openEngine(cfg, nil, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer cleanup()

	ctx, cancel := interruptibleContext()
	defer cancel()

	salt, err := e.InitializeSalt(ctx, *poolID)
	if err != nil {
		fmt.Fprintf(errOut, "salt-init: %v\n", err)
		return 1
	}
	defer salt.Zero()

	if err := (derive.FileStore{Path: *outPath}).Save(salt, *force); err != nil {
		fmt.Fprintf(errOut, "write salt: %v\n", err)
		return 1
	}

	fmt.Fprintf(errOut, "pool %s consumed; salt written to %s\n", *poolID, *outPath)
	if err := printJSON(out, map[string]string{
		"ownerPool": salt.OwnerPoolID(),
		"algorithm": salt.Algorithm(),
		"label":     salt.Label(),
		"ref":       salt.Ref(),
	}); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "entropool.yaml", "config file")
	saltPath := fs.String("salt", "", "salt file")
	domain := fs.String("domain", "", "target domain")
	length := fs.Int("length", 0, "identifier length (default from config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *domain == "" {
		fmt.Fprintln(errOut, "missing --domain")
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if *length == 0 {
		*length = cfg.Derive.UsernameLength
	}

	salt, ok := loadSalt(*saltPath, errOut)
	if !ok {
		return 2
	}
	defer salt.Zero()

	sc := salt.Context()
	username, err := sc.Username(*domain, *length)
	if err != nil {
		fmt.Fprintf(errOut, "derive: %v\n", err)
		return 1
	}

	// The username is the one derived secret the caller asked to see.
	fmt.Fprintln(out, username)
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	saltPath := fs.String("salt", "", "salt file")
	domain := fs.String("domain", "", "target domain")
	candidate := fs.String("candidate", "", "username to check")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *domain == "" || *candidate == "" {
		fmt.Fprintln(errOut, "verify requires --domain and --candidate")
		return 2
	}

	salt, ok := loadSalt(*saltPath, errOut)
	if !ok {
		return 2
	}
	defer salt.Zero()

	sc := salt.Context()
	match, err := sc.Verify(*domain, *candidate)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	if !match {
		fmt.Fprintln(out, "MISMATCH")
		return 1
	}
	fmt.Fprintln(out, "OK")
	return 0
}
