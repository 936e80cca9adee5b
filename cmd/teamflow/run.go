package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/protocol"
	"github.com/hupe1980/teamflow/runner"
)

type runFlags struct {
	debug                bool
	deepThinking         bool
	searchBeforePlanning bool
	teamMembers          []string
	output               string
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [message]",
		Short: "Run the team on a single request",
		Long:  `Runs the team on one user message and writes the event stream to stdout. Interrupting the command cancels the run.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch f.output {
			case "events", "text":
			default:
				return fmt.Errorf("unsupported output %q (events, text)", f.output)
			}

			t, err := buildTeam(a.cfg, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			messages := []core.Message{core.NewUserMessage(strings.Join(args, " "))}

			_, eventsCh, errorsCh, err := t.flow.Stream(ctx, messages, func(o *runner.RunOptions) {
				o.Debug = f.debug
				o.DeepThinking = f.deepThinking
				o.SearchBeforePlanning = f.searchBeforePlanning
				o.TeamMembers = f.teamMembers
			})
			if err != nil {
				return err
			}

			return writeRun(cmd.OutOrStdout(), f.output, eventsCh, errorsCh)
		},
	}

	cmd.Flags().BoolVar(&f.debug, "debug", false, "Log the run at debug level")
	cmd.Flags().BoolVar(&f.deepThinking, "deep-thinking", false, "Use the reasoning model")
	cmd.Flags().BoolVar(&f.searchBeforePlanning, "search-before-planning", false, "Search the web before planning")
	cmd.Flags().StringSliceVar(&f.teamMembers, "team-members", nil, "Restrict the run to these workers")
	cmd.Flags().StringVarP(&f.output, "output", "o", "events", "Output format: events (JSON lines) or text")

	return cmd
}

// writeRun drains a run. "events" writes one JSON object per event, "text"
// writes only the streamed message content.
func writeRun(w io.Writer, output string, eventsCh <-chan protocol.Event, errorsCh <-chan error) error {
	enc := json.NewEncoder(w)

	var writeErr error
	for ev := range eventsCh {
		if writeErr != nil {
			continue
		}
		switch output {
		case "text":
			if data, ok := ev.Data.(protocol.MessageData); ok && data.Delta.Content != "" {
				_, writeErr = io.WriteString(w, data.Delta.Content)
			}
			if ev.Event == protocol.EndOfAgent {
				_, writeErr = io.WriteString(w, "\n")
			}
		default:
			writeErr = enc.Encode(ev)
		}
	}

	if err := <-errorsCh; err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("run cancelled: %w", err)
		}
		return err
	}
	return writeErr
}
