package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nstehr/colony/colony-core/agent"
	"github.com/nstehr/colony/colony-core/config"
	"github.com/nstehr/colony/colony-core/ipc"
	"github.com/nstehr/colony/colony-core/journal"
	"github.com/nstehr/colony/colony-core/memory"
	"github.com/nstehr/colony/colony-core/rules"
)

const banner = `
  ___  ___  _     ___  _ __   _   _
 / __|/ _ \| |   / _ \| '_ \ | | | |
| (__| (_) | |__| (_) | | | || |_| |
 \___|\___/|____|\___/|_| |_| \__, |
                               |___/
Per-tick colony decisions`

var (
	configPath string
	overrides  config.Config
	memoryOnly bool
)

var rootCmd = &cobra.Command{
	Use:          "colony",
	Short:        "Colony decision sidecar",
	Long:         "Serves per-tick colony decisions to a game host over a unix socket or websocket.",
	SilenceUsage: true,
	RunE:         serve,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and compile the population plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if _, err := rules.NewScheduler(cfg.Population.Compile(), cfg.Population.Foundational); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "foundational role: %s\n", cfg.Population.Foundational)
		for _, q := range cfg.Population.Roles {
			fmt.Fprintf(out, "  %-10s count %-2d priority %-4d %s\n", q.Role, q.Count, q.Priority, q.When)
		}
		return nil
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal <file.jsonl.zst>",
	Short: "Print a tick journal as plain JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return journal.Read(args[0], func(e journal.Entry) error {
			return enc.Encode(e)
		})
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", "colony.yaml", "configuration file")
	f.StringVar(&overrides.Log.Level, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&overrides.Log.Format, "log-format", "", "log format (text, json)")
	f.StringVar(&overrides.Listen.Socket, "socket", "", "unix socket path")
	f.StringVar(&overrides.Listen.WSAddr, "ws-addr", "", "websocket listen address, e.g. :8787")
	f.StringVar(&overrides.Store.Path, "db", "", "sqlite state database path")
	f.BoolVar(&memoryOnly, "memory", false, "keep state records in memory only")
	f.StringVar(&overrides.Journal.Dir, "journal-dir", "", "tick journal directory")

	rootCmd.AddCommand(validateCmd, journalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = overrides.Log.Level
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = overrides.Log.Format
	}
	if flags.Changed("socket") {
		cfg.Listen.Socket = overrides.Listen.Socket
	}
	if flags.Changed("ws-addr") {
		cfg.Listen.WSAddr = overrides.Listen.WSAddr
	}
	if flags.Changed("db") {
		cfg.Store.Driver = "sqlite"
		cfg.Store.Path = overrides.Store.Path
	}
	if memoryOnly {
		cfg.Store.Driver = "memory"
	}
	if flags.Changed("journal-dir") {
		cfg.Journal.Enabled = overrides.Journal.Dir != ""
		cfg.Journal.Dir = overrides.Journal.Dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(w io.Writer, lc config.LogConfig) error {
	level, err := lc.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if lc.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// sidecar holds what every host session shares. The config is swapped on
// reload; sessions opened afterwards see the new one.
type sidecar struct {
	scheduler *rules.Scheduler

	mu  sync.RWMutex
	cfg *config.Config
}

func (s *sidecar) current() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// reload re-reads the configuration and swaps the population plan in place.
// A plan that fails to compile leaves the running one untouched.
func (s *sidecar) reload(cmd *cobra.Command) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		slog.Error("config reload failed", "error", err)
		return
	}
	if err := s.scheduler.Swap(cfg.Population.Compile(), cfg.Population.Foundational); err != nil {
		slog.Error("population reload failed", "error", err)
		return
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	slog.Info("configuration reloaded", "roles", len(cfg.Population.Roles))
}

// openColony builds the colony for one session's room.
func (s *sidecar) openColony(sess *agent.Session, room string) (*agent.Colony, error) {
	cfg := s.current()

	var store memory.Store = memory.NewMemStore()
	if cfg.Store.Driver == "sqlite" {
		db, err := memory.OpenSQLite(cfg.Store.Path, room)
		if err != nil {
			return nil, err
		}
		store = db
	}

	c := agent.NewColony(sess, s.scheduler, store)
	c.Options = cfg.Behavior.Options()
	if cfg.Journal.Enabled {
		c.Journal = journal.NewWriter(filepath.Join(cfg.Journal.Dir, room), "ticks", sess.ID)
	}
	return c, nil
}

func (s *sidecar) handleConn(c *ipc.Connection) {
	sess := agent.New(c, s.openColony)
	c.RegisterHandler(ipc.TypeHello, sess.HandleHello)
	c.RegisterHandler(ipc.TypeTick, sess.HandleTick)
	c.ReadLoop()
	if err := sess.Close(); err != nil {
		slog.Warn("closing session", "session", sess.ID, "error", err)
	}
	slog.Info("session ended", "session", sess.ID, "room", sess.Room)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogger(os.Stdout, cfg.Log); err != nil {
		return err
	}
	fmt.Println(banner)
	slog.Info("starting colony")

	sched, err := rules.NewScheduler(cfg.Population.Compile(), cfg.Population.Foundational)
	if err != nil {
		return fmt.Errorf("compile population: %w", err)
	}
	sc := &sidecar{scheduler: sched, cfg: cfg}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if path := cfg.Listen.Socket; path != "" {
		// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clean up socket %s: %w", path, err)
		}
		listener, err := net.Listen("unix", path)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", path, err)
		}
		defer os.Remove(path)
		slog.Info("listening on domain socket", "path", path)

		g.Go(func() error {
			<-ctx.Done()
			return listener.Close()
		})
		g.Go(func() error {
			for {
				conn, err := listener.Accept()
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					slog.Error("failed to accept connection", "error", err)
					continue
				}
				slog.Info("new connection accepted")
				go sc.handleConn(ipc.NewConnection(conn, nil))
			}
		})
	}

	if addr := cfg.Listen.WSAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", ipc.WSHandler(sc.handleConn))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		slog.Info("listening for websocket hosts", "addr", addr)

		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("websocket listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				sc.reload(cmd)
			}
		}
	})

	err = g.Wait()
	slog.Info("shutting down")
	return err
}
