package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"ballotgate/internal/adapters/samplestore"
	"ballotgate/internal/modkit/repokit"
	"ballotgate/internal/services/gate/domain"
	gaterepo "ballotgate/internal/services/gate/repo"
)

const usage = `usage: ballotgate-admin <command> [flags]

commands:
  migrate            create the participant tables when missing
  clear              delete participants and their reference images
  list-contestants   print every contestant id with its credential hash
  dump-electors      print every elector row
  sweep              remove stale staging and attempt images
`

var errUsage = errors.New("bad usage")

// admin holds what every command needs
type admin struct {
	db      repokit.TxRunner
	samples *samplestore.Store
	out     io.Writer
}

func (a *admin) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return a.migrate(ctx, rest)
	case "clear":
		return a.clear(ctx, rest)
	case "list-contestants":
		return a.list(ctx, domain.ClassContestant, rest, false)
	case "dump-electors":
		return a.list(ctx, domain.ClassElector, rest, true)
	case "sweep":
		return a.sweep(rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	fmt.Fprintf(a.out, "unknown command %q\n\n%s", cmd, usage)
	return errUsage
}

func (a *admin) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *admin) migrate(ctx context.Context, args []string) error {
	if err := a.flags("migrate").Parse(args); err != nil {
		return errUsage
	}
	if err := gaterepo.Admin(a.db).Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "schema ready")
	return nil
}

func (a *admin) clear(ctx context.Context, args []string) error {
	fs := a.flags("clear")
	fClass := fs.String("class", "all", "elector, contestant or all")
	fYes := fs.Bool("yes", false, "confirm deletion")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	classes := domain.Classes
	if *fClass != "all" {
		c, ok := domain.ParseClass(*fClass)
		if !ok {
			fmt.Fprintf(a.out, "unknown class %q\n", *fClass)
			return errUsage
		}
		classes = []domain.Class{c}
	}
	if !*fYes {
		fmt.Fprintln(a.out, "refusing to clear without -yes")
		return errUsage
	}

	removed := make(map[domain.Class]int64, len(classes))
	err := repokit.WithTx(ctx, a.db, func(q repokit.Queryer) error {
		r := gaterepo.Admin(q)
		for _, c := range classes {
			n, err := r.Clear(ctx, c)
			if err != nil {
				return err
			}
			removed[c] = n
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, c := range classes {
		if err := a.samples.RemoveClass(c.String()); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "cleared %d %s(s)\n", removed[c], c)
	}
	return nil
}

func (a *admin) list(ctx context.Context, class domain.Class, args []string, full bool) error {
	if err := a.flags(string(class)).Parse(args); err != nil {
		return errUsage
	}
	ps, err := gaterepo.Admin(a.db).List(ctx, class)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	if full {
		fmt.Fprintln(tw, "ID\tNAME\tHASH\tFACE")
		for _, p := range ps {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.DisplayName, p.CredentialHash, p.ReferenceImage)
		}
	} else {
		fmt.Fprintln(tw, "ID\tHASH")
		for _, p := range ps {
			fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.CredentialHash)
		}
	}
	return tw.Flush()
}

func (a *admin) sweep(args []string) error {
	fs := a.flags("sweep")
	fAge := fs.Duration("age", time.Hour, "remove files older than this")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	n, err := a.samples.Sweep(*fAge)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "removed %d stale file(s)\n", n)
	return nil
}
