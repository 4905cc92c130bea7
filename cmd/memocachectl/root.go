package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/memocache"
	"github.com/unkn0wn-root/memocache/config"
	zaplog "github.com/unkn0wn-root/memocache/log/zap"
	pr "github.com/unkn0wn-root/memocache/provider"
)

var errLocalOnly = errors.New("no redis configured: set --redis-url, MEMOCACHE_REDIS_URL or REDIS_URL")

type app struct {
	out      io.Writer
	envFiles []string
	redisURL string
	verbose  bool

	sel *memocache.Selector
	p   pr.Provider
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "memocachectl",
		Short:         "Inspect and clear memoized function results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.sel == nil {
				return nil
			}
			return a.sel.Close(cmd.Context())
		},
	}
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.PersistentFlags().StringVar(&a.redisURL, "redis-url", "", "redis URL; overrides the environment")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log connection events")

	root.AddCommand(a.keysCmd(), a.getCmd(), a.clearCmd())
	return root
}

func (a *app) open() error {
	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}
	if a.redisURL != "" {
		cfg.RedisURL = a.redisURL
	}
	if !cfg.Remote() {
		return errLocalOnly
	}

	zl := zap.NewNop()
	if a.verbose {
		if zl, err = zap.NewDevelopment(); err != nil {
			return errors.Wrap(err, "init logger")
		}
	}
	a.sel = memocache.NewSelector(cfg, zaplog.New(zl))
	a.p, err = a.sel.Provider(cfg.DefaultTTL)
	return err
}

func (a *app) scan(ctx context.Context, name string) ([]string, error) {
	if name == "" || strings.Contains(name, "__") {
		return nil, errors.Wrapf(memocache.ErrBadName, "name %q", name)
	}
	keys, err := a.p.Scan(ctx, memocache.KeyCodec{}.Prefix(name))
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	sort.Strings(keys)
	return keys, nil
}

func (a *app) keysCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "keys NAME",
		Short: "List the cached keys of a function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := a.scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit > 0 && len(keys) > limit {
				keys = keys[:limit]
			}
			for _, k := range keys {
				fmt.Fprintln(a.out, k)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "print at most this many keys (0 = all)")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the stored value of one key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, ok, err := a.p.Get(cmd.Context(), args[0])
			if err != nil {
				return errors.Wrap(err, "get")
			}
			if !ok {
				return errors.Newf("key %q not found", args[0])
			}
			fmt.Fprintln(a.out, string(raw))
			return nil
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "clear NAME",
		Short: "Delete every cached entry of a function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := a.scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !dryRun && len(keys) > 0 {
				if err := a.p.Del(cmd.Context(), keys...); err != nil {
					return errors.Wrap(err, "del")
				}
			}
			verb := "cleared"
			if dryRun {
				verb = "would clear"
			}
			fmt.Fprintf(a.out, "%s %d keys\n", verb, len(keys))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count keys without deleting")
	return cmd
}
