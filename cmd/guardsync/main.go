package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/sentinelhq/guardsync/internal/cliconfig"
	"github.com/sentinelhq/guardsync/pkg/client"
	"github.com/sentinelhq/guardsync/pkg/guard"
	"github.com/sentinelhq/guardsync/pkg/kv"
	"github.com/sentinelhq/guardsync/pkg/log"
)

const helpDescription = `
Operator CLI for the guard registry synchronization client.

Mutations issued while the registry is unreachable are queued durably
and replayed by "guardsync sync". The queue survives restarts; inspect
it with "guardsync queue status".
`

var exampleUsage = strings.TrimSpace(`
  guardsync guards --base-url https://registry.example.com --auth-token <api-key>
  guardsync update G-117 zone=east shift=night
  guardsync locate G-117 37.4221 -122.0841 8
  guardsync sync --watch --interval 30s
  guardsync queue status
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var watch bool

	zl := cliconfig.Logger()

	root := &cobra.Command{
		Use:          "guardsync",
		Short:        "Synchronize the remote guard registry with local mutations",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.guardsync/config.toml)")
	root.PersistentFlags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "guard registry base URL")
	root.PersistentFlags().StringVar(&cfg.AuthToken, "auth-token", cfg.AuthToken, "bearer credential for the registry")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-call timeout")
	root.PersistentFlags().IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "delivery attempts per queued mutation")
	root.PersistentFlags().StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "offline queue backend: file, sqlite, or memory")
	root.PersistentFlags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory holding the offline queue")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "debug logging")

	// Resolve config file, env, and flag precedence before any subcommand runs.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
		cmd.Root().PersistentFlags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
		// The sync command exposes the interval under a shorter name.
		if changed["interval"] {
			changed["sync-interval"] = true
		}

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}
		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return err
		}
		return cfg.Validate()
	}

	guardsCmd := &cobra.Command{
		Use:   "guards",
		Short: "Fetch and print the canonical guard list",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := buildClient(cfg, zl)
			if err != nil {
				return err
			}
			defer closeFn()
			guards, err := c.FetchGuards(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range guards {
				fmt.Printf("%-12s %-24s %-14s zone=%-10s (%.5f, %.5f ±%.0fm)\n",
					g.ID, g.Name, g.Status, g.Zone, g.Location.Latitude, g.Location.Longitude, g.Location.Accuracy)
			}
			return nil
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update <guard-id> <field=value>...",
		Short: "Apply a partial update to one guard",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args[1:])
			if err != nil {
				return err
			}
			c, closeFn, err := buildClient(cfg, zl)
			if err != nil {
				return err
			}
			defer closeFn()
			g, err := c.UpdateGuard(cmd.Context(), args[0], fields)
			if err != nil {
				return reportWriteOutcome(c, err)
			}
			fmt.Printf("updated %s: status=%s zone=%s\n", g.ID, g.Status, g.Zone)
			return nil
		},
	}

	locateCmd := &cobra.Command{
		Use:   "locate <guard-id> <lat> <lng> [accuracy]",
		Short: "Report a new location fix for one guard",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := parseLocation(args[1:])
			if err != nil {
				return err
			}
			c, closeFn, err := buildClient(cfg, zl)
			if err != nil {
				return err
			}
			defer closeFn()
			g, err := c.UpdateGuardLocation(cmd.Context(), args[0], loc)
			if err != nil {
				return reportWriteOutcome(c, err)
			}
			fmt.Printf("located %s at (%.5f, %.5f)\n", g.ID, g.Location.Latitude, g.Location.Longitude)
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Drain the offline queue against the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return watchLoop(cmd.Context(), &cfg, cfgPath, zl, func(c cliconfig.Config) (*client.Client, func(), error) {
					return buildClient(c, zl)
				})
			}
			c, closeFn, err := buildClient(cfg, zl)
			if err != nil {
				return err
			}
			defer closeFn()
			printSyncResult(c.SyncOfflineQueue(cmd.Context()))
			return nil
		},
	}
	syncCmd.Flags().BoolVar(&watch, "watch", false, "keep draining on an interval")
	syncCmd.Flags().DurationVar(&cfg.SyncInterval, "interval", cfg.SyncInterval, "pause between drains in watch mode")

	queueStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show offline queue backlog size and age",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := buildClient(cfg, zl)
			if err != nil {
				return err
			}
			defer closeFn()
			st := c.OfflineQueueStatus()
			if st.Length == 0 {
				fmt.Println("offline queue empty")
				return nil
			}
			fmt.Printf("%d pending mutation(s), oldest queued %s ago\n",
				st.Length, time.Since(st.OldestTimestamp).Round(time.Second))
			return nil
		},
	}

	queueClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard all pending mutations without attempting delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := buildClient(cfg, zl)
			if err != nil {
				return err
			}
			defer closeFn()
			st := c.OfflineQueueStatus()
			c.ClearOfflineQueue()
			fmt.Printf("discarded %d pending mutation(s)\n", st.Length)
			return nil
		},
	}

	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect or clear the offline queue",
	}
	queueCmd.AddCommand(queueStatusCmd, queueClearCmd)

	root.AddCommand(guardsCmd, updateCmd, locateCmd, syncCmd, queueCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		zl.Error().Err(err).Msg("guardsync failed")
		os.Exit(1)
	}
}

// buildClient assembles a client from the resolved CLI configuration.
// The returned func releases the store for backends that hold a handle.
func buildClient(cfg cliconfig.Config, zl zerolog.Logger) (*client.Client, func(), error) {
	if cfg.Verbose {
		zl = zl.Level(zerolog.DebugLevel)
	} else {
		zl = zl.Level(zerolog.InfoLevel)
	}
	logger := log.NewZerologAdapterWithLogger(zl)

	var store kv.Store
	closeFn := func() {}
	switch cfg.StoreBackend {
	case cliconfig.StoreFile:
		store = kv.NewFileStore(cfg.StateDir)
	case cliconfig.StoreSQLite:
		s, err := kv.OpenSQLite(filepath.Join(cfg.StateDir, "guardsync.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("open queue database: %w", err)
		}
		store = s
		closeFn = func() { s.Close() }
	case cliconfig.StoreMemory:
		store = kv.NewMemory()
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	c, err := client.New(client.Config{
		BaseURL:    cfg.BaseURL,
		AuthToken:  cfg.AuthToken,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	},
		client.WithStore(store),
		client.WithLogger(logger),
		client.WithConnectivity(connectivityProbe(cfg.BaseURL)),
	)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}

// connectivityProbe reports reachability of the registry host with a
// short TCP dial. Cheap enough to run before every call.
func connectivityProbe(baseURL string) client.ConnectivityFunc {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return func() bool { return true }
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host = net.JoinHostPort(u.Hostname(), "443")
		} else {
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	return func() bool {
		conn, err := net.DialTimeout("tcp", host, 2*time.Second)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}

// watchLoop drains the queue on an interval until the context ends.
// Failed drains back off exponentially. The config file is watched so a
// rotated credential or changed base URL reaches the registry: a reload
// marks the configuration stale and the loop rebuilds its client before
// the next drain. The old client is released only after a replacement
// was built, so a broken update leaves the previous one draining.
func watchLoop(ctx context.Context, cfg *cliconfig.Config, cfgPath string, zl zerolog.Logger, build func(cliconfig.Config) (*client.Client, func(), error)) error {
	if cfgPath == "" {
		cfgPath = cliconfig.DefaultConfigPath()
	}

	c, closeFn, err := build(*cfg)
	if err != nil {
		return err
	}
	defer func() { closeFn() }()

	var mu sync.Mutex
	stale := false
	if cfgPath != "" && cliconfig.FileExists(cfgPath) {
		watcher := cliconfig.NewWatcher(cfgPath, func(fc cliconfig.FileConfig) {
			mu.Lock()
			defer mu.Unlock()
			if err := cliconfig.ApplyFileConfig(cfg, fc, nil); err != nil {
				zl.Warn().Err(err).Msg("ignoring invalid config update")
				return
			}
			stale = true
		})
		go watcher.Run(ctx)
	}

	back := newBackoff(time.Second, 2*time.Minute)
	for {
		mu.Lock()
		reload := stale
		stale = false
		snapshot := *cfg
		mu.Unlock()

		if reload {
			nc, nclose, err := build(snapshot)
			if err != nil {
				zl.Warn().Err(err).Msg("config update not applied")
			} else {
				closeFn()
				c, closeFn = nc, nclose
				zl.Info().Msg("config reloaded, client rebuilt")
			}
		}

		res := c.SyncOfflineQueue(ctx)
		printSyncResult(res)

		pause := snapshot.SyncInterval
		if res.Failed > 0 || (res.Total > 0 && res.Synced == 0) {
			pause = back.Next()
		} else {
			back.Reset()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(pause):
		}
	}
}

func printSyncResult(res client.SyncResult) {
	fmt.Printf("sync: total=%d synced=%d failed=%d\n", res.Total, res.Synced, res.Failed)
	for _, e := range res.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}

// reportWriteOutcome distinguishes a queued mutation from a hard error.
// A queued write exits zero: the mutation is safe and will replay.
func reportWriteOutcome(c *client.Client, err error) error {
	if errors.Is(err, client.ErrQueued) {
		st := c.OfflineQueueStatus()
		fmt.Printf("registry unreachable; mutation queued for sync (%d pending)\n", st.Length)
		return nil
	}
	return err
}

// parseFields converts key=value arguments into an update payload.
// Values that parse as numbers or booleans are sent typed.
func parseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		switch {
		case v == "true" || v == "false":
			fields[k] = v == "true"
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				fields[k] = f
			} else {
				fields[k] = v
			}
		}
	}
	return fields, nil
}

func parseLocation(args []string) (guard.Location, error) {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return guard.Location{}, fmt.Errorf("parse latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return guard.Location{}, fmt.Errorf("parse longitude: %w", err)
	}
	loc := guard.Location{Latitude: lat, Longitude: lng, Accuracy: guard.DefaultAccuracy}
	if len(args) == 3 {
		acc, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return guard.Location{}, fmt.Errorf("parse accuracy: %w", err)
		}
		loc.Accuracy = acc
	}
	return loc, nil
}
