package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/posmatch/backend/internal/domain"
	"github.com/posmatch/backend/internal/logger"
	"github.com/posmatch/backend/internal/session"
)

const settleTimeout = 30 * time.Second

func newInteractiveCommand(opts *globalOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Type queries line by line and watch the session state",
		Long: `Each line read from stdin replaces the query text, as if typed into a search
box. Queries are resolved after the debounce period and only the latest query's
result is shown. An empty line clears the search, "/quit" exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, a, log, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer a.Close()

			if debounce <= 0 {
				debounce = cfg.Session.Debounce
			}

			out := &syncWriter{w: cmd.OutOrStdout()}
			ctrl := session.NewController(a.Service, session.Options{
				Debounce: debounce,
				OnChange: func(s session.Snapshot) { printSnapshot(out, s) },
				Logger:   logger.Component(log, "session"),
			})
			defer ctrl.Close()

			fmt.Fprintln(out, session.Placeholder())
			if err := feed(cmd.InOrStdin(), ctrl); err != nil {
				return err
			}

			waitSettled(ctrl, debounce, settleTimeout)
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before a query is resolved (default from config)")
	return cmd
}

// feed forwards stdin lines to the controller until EOF or /quit
func feed(in io.Reader, ctrl *session.Controller) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "/quit" {
			return nil
		}
		ctrl.Input(line)
	}
	return scanner.Err()
}

// waitSettled blocks until the last debounced query has settled
func waitSettled(ctrl *session.Controller, debounce, timeout time.Duration) {
	deadline := time.Now().Add(timeout)

	time.Sleep(debounce + 50*time.Millisecond)
	for ctrl.State().Status == session.StatusLoading && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
}

func printSnapshot(w io.Writer, s session.Snapshot) {
	switch s.Status {
	case session.StatusIdle:
		fmt.Fprintf(w, "[idle] %s\n", session.Placeholder())
	case session.StatusLoading:
		fmt.Fprintf(w, "[loading] %q\n", s.Query)
	case session.StatusError:
		fmt.Fprintf(w, "[error] %s\n", s.Error)
	case session.StatusResults:
		fmt.Fprintf(w, "[results] ")
		printResult(w, &domain.RecommendationResult{
			Query:           s.Query,
			Items:           s.Items,
			AdvisoryMessage: s.AdvisoryMessage,
			SourceTier:      s.SourceTier,
		})
	}
}

// syncWriter serializes writes from the debounce goroutines
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
