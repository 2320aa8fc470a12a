package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alfredjeanlab/trackline/internal/events"
	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print routes as they are recorded",
	Long: `Streams route creation events. Uses NATS when --nats (or
TRACKLINE_NATS_URL, or the active remote's nats_url) is set, otherwise the
server's SSE stream over --http-url.`,
	GroupID:           "routing",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		out := cmd.OutOrStdout()
		if natsURL != "" {
			return watchNATS(ctx, natsURL, out)
		}
		return watchSSE(ctx, httpURL, authToken, out)
	},
}

// watchNATS prints route events received on NATS until ctx is done.
func watchNATS(ctx context.Context, natsURL string, out io.Writer) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("nats reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	return streamRoutes(ctx, sub, out)
}

// streamRoutes prints route events from sub until ctx is done or the
// subscription channel closes.
func streamRoutes(ctx context.Context, sub events.Subscriber, out io.Writer) error {
	ch, cancel, err := sub.Subscribe(events.TopicRouteCreated)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			printRouteEvent(out, data)
		}
	}
}

// watchSSE prints route events from the server's SSE stream until ctx is
// done or the server closes the stream.
func watchSSE(ctx context.Context, baseURL, token string, out io.Writer) error {
	u := strings.TrimRight(baseURL, "/") + "/v1/events/stream?topics=" + url.QueryEscape(events.TopicRouteCreated)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connecting to event stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream: HTTP %d", resp.StatusCode)
	}

	err = readSSE(resp.Body, func(topic string, data []byte) {
		if topic == events.TopicRouteCreated {
			printRouteEvent(out, data)
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readSSE calls fn for every event in an SSE stream. Multi-line data
// fields are joined with newlines.
func readSSE(r io.Reader, fn func(topic string, data []byte)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var (
		topic string
		data  []string
	)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if len(data) > 0 {
				fn(topic, []byte(strings.Join(data, "\n")))
			}
			topic, data = "", nil
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			topic = value
		case "data":
			data = append(data, value)
		}
	}
	return sc.Err()
}

func printRouteEvent(w io.Writer, data []byte) {
	route, err := events.DecodeRouteCreated(data)
	if err != nil {
		slog.Warn("skipping malformed event", "err", err)
		return
	}
	if jsonOutput {
		b, _ := json.Marshal(route)
		fmt.Fprintln(w, string(b))
		return
	}
	fmt.Fprintln(w, formatRouteLine(route))
}

func formatRouteLine(r *model.Route) string {
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		ui.RenderMuted(r.CreatedAt.UTC().Format("15:04:05")),
		ui.RenderPath(r.Path),
		ui.RenderDistance(r.TotalDistance),
		ui.RenderAccent(r.AnalyticTag),
		ui.RenderMuted(r.ID),
	)
}

func init() {
	watchCmd.Flags().String("nats", os.Getenv("TRACKLINE_NATS_URL"), "NATS URL (empty uses the SSE stream)")
}
