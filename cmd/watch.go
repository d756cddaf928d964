package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/daemon"
)

var (
	flagWatchAddr         string
	flagWatchInterval     time.Duration
	flagWatchEventsBuffer int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the projection on an interval and serve it over HTTP/SSE",
	RunE:  runWatch,
}

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running watcher",
	RunE:  runWatchStatus,
}

func init() {
	watchCmd.PersistentFlags().StringVar(&flagWatchAddr, "addr", "127.0.0.1:8787", "HTTP listen address")
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 30*time.Second, "Polling interval")
	watchCmd.Flags().IntVar(&flagWatchEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	watchCmd.AddCommand(watchStatusCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	opts, err := engineOptions()
	if err != nil {
		return err
	}
	path, err := inputPath()
	if err != nil {
		return err
	}

	svc := daemon.New(daemon.Config{
		InputPath:    path,
		BalancesPath: flagBalances,
		Engine:       opts,
		Interval:     flagWatchInterval,
		Addr:         flagWatchAddr,
		EventsBuffer: flagWatchEventsBuffer,
	})

	fmt.Printf("  runway watch listening on http://%s\n", flagWatchAddr)
	fmt.Printf("  Polling %s every %s\n", path, flagWatchInterval)
	fmt.Println("  Stop with Ctrl+C")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runWatchStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+flagWatchAddr+"/v1/status", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("  Watcher: unreachable at %s (%v)\n", flagWatchAddr, err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  Watcher: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  Watcher: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Address:    http://%s\n", flagWatchAddr)
	fmt.Printf("  Input:      %s\n", st.InputPath)
	fmt.Printf("  Modes:      %s weighting, %s projection, scenario %s\n", st.Weighting, st.Projection, st.Scenario)
	fmt.Printf("  Started:    %s\n", humanize.Time(st.StartedAt))
	if st.LastPollAt.IsZero() {
		fmt.Println("  Last poll:  pending")
	} else {
		fmt.Printf("  Last poll:  %s (%d polls)\n", humanize.Time(st.LastPollAt), st.PollCount)
	}
	if s := st.Summary; s != nil {
		fmt.Printf("  Periods:    %d (%d items, %d excluded)\n", s.Periods, s.Items, s.Excluded)
		fmt.Printf("  Balance:    %s, mean delta %s\n", amountOpt(s.StartBalance), cli.FormatSigned(s.MeanDelta))
		fmt.Printf("  Runway:     %s\n", cli.FormatMonths(s.RunwayMonths))
		fmt.Printf("  Verdict:    %s  %s\n", s.Tier, s.Message)
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}
