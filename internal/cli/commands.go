package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/dgellow/mailfold/internal/config"
	"github.com/dgellow/mailfold/internal/emaillist"
	"github.com/dgellow/mailfold/internal/emailutil"
	jsonwriter "github.com/dgellow/mailfold/internal/json"
	"github.com/dgellow/mailfold/internal/log"
	"github.com/dgellow/mailfold/internal/toolserver"
)

func (a *App) runDedupe(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("dedupe", "dedupe [files...]")
	if done, err := parseCommand(fs, args); done {
		return ExitOK, err
	}

	entries, err := a.reader().ReadFiles(ctx, fs.Args())
	if err != nil {
		return ExitFailure, err
	}

	result := emaillist.Dedupe(entries)

	log.LogDebugWithFields("cli", "Deduplicated list", map[string]any{
		"entries": len(entries),
		"valid":   emaillist.CountValid(entries),
		"unique":  len(result),
	})

	if a.format == config.OutputFormatJSON {
		return ExitOK, jsonwriter.Encode(a.Stdout, result)
	}
	for _, e := range result {
		if _, err := fmt.Fprintln(a.Stdout, e); err != nil {
			return ExitFailure, fmt.Errorf("writing output: %w", err)
		}
	}
	return ExitOK, nil
}

func (a *App) runFind(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("find", "find -domain D [files...]")
	domain := fs.String("domain", "", "domain to look for, case-insensitive (default from config find.defaultDomain)")
	if done, err := parseCommand(fs, args); done {
		return ExitOK, err
	}

	domainSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "domain" {
			domainSet = true
		}
	})
	if !domainSet {
		if a.cfg.Find.DefaultDomain == "" {
			fmt.Fprintln(a.Stderr, "Error: -domain is required (or set find.defaultDomain in config)")
			return ExitUsage, errUsage
		}
		*domain = a.cfg.Find.DefaultDomain
	}

	entries, err := a.reader().ReadFiles(ctx, fs.Args())
	if err != nil {
		return ExitFailure, err
	}

	idx, found := emaillist.FirstWithDomain(entries, *domain)

	fields := map[string]any{
		"entries": len(entries),
		"domain":  *domain,
		"found":   found,
	}
	if found {
		fields["index"] = idx
		fields["match"] = emailutil.Fingerprint(entries[idx])
	}
	log.LogDebugWithFields("cli", "Domain lookup", fields)

	if a.format == config.OutputFormatJSON {
		if err := jsonwriter.Encode(a.Stdout, jsonwriter.FindResult{Index: idx, Found: found}); err != nil {
			return ExitFailure, err
		}
	} else if found {
		if _, err := fmt.Fprintln(a.Stdout, idx); err != nil {
			return ExitFailure, fmt.Errorf("writing output: %w", err)
		}
	}

	if !found {
		return ExitFailure, nil
	}
	return ExitOK, nil
}

func (a *App) runCount(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("count", "count [files...]")
	if done, err := parseCommand(fs, args); done {
		return ExitOK, err
	}

	entries, err := a.reader().ReadFiles(ctx, fs.Args())
	if err != nil {
		return ExitFailure, err
	}

	result := emaillist.DomainCounts(entries)

	log.LogDebugWithFields("cli", "Counted domains", map[string]any{
		"entries": len(entries),
		"domains": len(result),
	})

	if a.format == config.OutputFormatJSON {
		return ExitOK, jsonwriter.Encode(a.Stdout, result)
	}
	for _, dc := range result {
		if _, err := fmt.Fprintf(a.Stdout, "%s\t%d\n", dc.Domain, dc.Count); err != nil {
			return ExitFailure, fmt.Errorf("writing output: %w", err)
		}
	}
	return ExitOK, nil
}

func (a *App) runServe(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("serve", "serve [-transport stdio|streamable-http] [-addr :8080]")
	transport := fs.String("transport", string(a.cfg.Server.Transport), "stdio or streamable-http")
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address for streamable-http")
	if done, err := parseCommand(fs, args); done {
		return ExitOK, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.Stderr, "Error: serve takes no arguments, got %q\n", fs.Args())
		return ExitUsage, errUsage
	}

	srv := toolserver.New(a.cfg.Server.Name, a.Version)

	switch config.TransportType(*transport) {
	case config.TransportStdio:
		return ExitOK, srv.ServeStdio(ctx, a.Stdin, a.Stdout)
	case config.TransportStreamable:
		return ExitOK, srv.ListenAndServe(ctx, *addr)
	default:
		fmt.Fprintf(a.Stderr, "Error: invalid -transport %q: must be stdio or streamable-http\n", *transport)
		return ExitUsage, errUsage
	}
}
