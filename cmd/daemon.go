package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/daemon"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background ledger daemon with HTTP, SSE and Prometheus endpoints",
	Example: `  fincompass daemon --detach
  curl -s localhost:8797/v1/status
  curl -N localhost:8797/v1/stream`,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(config.DataDir(), "fincompassd.pid"), "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.DataDir(), "fincompassd.log"), "Log file path for detached mode")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// applyDaemonDefaults fills unset daemon flags from the [daemon] config section.
func applyDaemonDefaults() {
	if flagDaemonAddr == "" {
		flagDaemonAddr = cfg.Daemon.Addr
	}
	if flagDaemonInterval == 0 {
		flagDaemonInterval = time.Duration(cfg.Daemon.IntervalSec) * time.Second
	}
	if flagDaemonEventsBuffer == 0 {
		flagDaemonEventsBuffer = cfg.Daemon.EventsLimit
	}
}

func pidFile() daemon.PIDFile {
	return daemon.PIDFile{Path: flagDaemonPIDFile}
}

func runDaemon(c *cobra.Command, _ []string) error {
	applyDaemonDefaults()
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground(c)
}

// startDaemonDetached re-executes this binary with --child, output going to
// the daemon log file.
func startDaemonDetached() error {
	if err := pidFile().EnsureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	args := append(withoutDetach(os.Args[1:]), "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API:      http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log:      %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground(c *cobra.Command) error {
	pf := pidFile()
	pid := os.Getpid()
	err := pf.Acquire(daemon.RuntimeState{
		PID:       pid,
		Addr:      flagDaemonAddr,
		StartedAt: time.Now(),
		DBPath:    cfg.DBPath(),
	})
	if err != nil {
		return err
	}
	defer pf.Release()

	st, err := openStore(c.Context())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	svc := daemon.New(st, daemon.Config{
		DBPath:       cfg.DBPath(),
		Params:       cfg.Params(),
		Interval:     flagDaemonInterval,
		Addr:         flagDaemonAddr,
		EventsBuffer: flagDaemonEventsBuffer,
	})

	fmt.Printf("  fincompass daemon listening on http://%s\n", flagDaemonAddr)
	fmt.Printf("  Polling every %s from %s\n", flagDaemonInterval, cfg.DBPath())
	fmt.Printf("  Stop with: fincompass daemon stop --pid-file %s\n", flagDaemonPIDFile)
	log.Info().Int("pid", pid).Str("db", cfg.DBPath()).Str("addr", flagDaemonAddr).Msg("daemon starting")

	ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("daemon stopped")
	return nil
}

func runDaemonStatus(c *cobra.Command, _ []string) error {
	applyDaemonDefaults()
	pf := pidFile()

	pid, err := pf.Running()
	if err != nil {
		if pid > 0 {
			fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		} else {
			fmt.Println("  Daemon: not running")
		}
		return nil
	}

	addr := flagDaemonAddr
	if rs, err := pf.State(); err == nil && rs.Addr != "" {
		addr = rs.Addr
	}
	fmt.Println(cli.RenderTitle("Daemon"))
	fmt.Printf("  PID:               %d\n", pid)
	fmt.Printf("  Address:           http://%s\n", addr)

	st, err := fetchDaemonStatus(c.Context(), addr)
	if err != nil {
		fmt.Printf("  API status:        %v\n", err)
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Println("  Last poll:         pending")
	} else {
		fmt.Printf("  Last poll:         %s (%d polls)\n", st.LastPollAt.Local().Format(time.RFC3339), st.PollCount)
	}
	sum := st.Summary
	if sum.CutOff == "" {
		fmt.Println("  Ledger:            empty")
	} else {
		fmt.Printf("  Ledger:            %d days through %s\n", sum.LedgerDays, sum.CutOff)
		fmt.Printf("  Bank balance:      %s\n", cli.FormatMoney(sum.BankBalance))
		fmt.Printf("  Cumulative profit: %s\n", cli.FormatMoney(sum.CumulativeProfit))
		fmt.Printf("  Forecast:          %s\n", forecastLine(sum))
	}
	if st.LastError != "" {
		fmt.Println("  " + cli.Warn("Last error: "+st.LastError))
	}
	return nil
}

func fetchDaemonStatus(ctx context.Context, addr string) (daemon.Status, error) {
	var st daemon.Status

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func forecastLine(sum daemon.Snapshot) string {
	p := sum.Prediction
	if !p.OK() {
		return p.Message
	}
	return fmt.Sprintf("+1 order/day around %s (%s)",
		cli.FormatPredictedDate(p.PredictedDate), cli.FormatDays(p.DaysToNextIncrement))
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := pidFile().Stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}

func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
