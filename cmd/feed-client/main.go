// feed-client tails the TCP event feed and prints tracking events as
// they happen. Useful for watching a run from another terminal.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"scantrack/internal/tracking"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP feed address")
	raw := flag.Bool("json", false, "print raw JSON lines instead of formatted events")
	only := flag.String("type", "", "comma-separated event types to show (e.g. chapter.new,run.finished)")
	flag.Parse()

	filter := parseTypeFilter(*only)

	for {
		if err := tail(*addr, *raw, filter); err != nil {
			log.Printf("[feed-client] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func parseTypeFilter(s string) map[string]bool {
	if s == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			filter[t] = true
		}
	}
	return filter
}

func tail(addr string, raw bool, filter map[string]bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[feed-client] connected to %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()

		var ev tracking.TrackingEvent
		if err := json.Unmarshal(line, &ev); err != nil || ev.Type == "" {
			// welcome message or anything else non-event
			continue
		}
		if filter != nil && !filter[ev.Type] {
			continue
		}

		if raw {
			fmt.Println(string(line))
			continue
		}
		fmt.Println(formatEvent(ev))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func formatEvent(ev tracking.TrackingEvent) string {
	ts := ev.At.Local().Format("15:04:05")

	switch ev.Type {
	case tracking.EventRunStarted:
		return fmt.Sprintf("%s  run started: %d pairs", ts, ev.Pairs)
	case tracking.EventChapterNew:
		return fmt.Sprintf("%s  NEW  %s/%s chapter %s  %s",
			ts, ev.ItemID, ev.Adapter, ev.ChapterKey, ev.ChapterURL)
	case tracking.EventPairDone:
		status := "ok"
		if ev.Failed {
			status = "FAILED"
		}
		return fmt.Sprintf("%s  pair %d (%s/%s): %s, %d new",
			ts, ev.PairID, ev.ItemID, ev.Adapter, status, ev.NewChapters)
	case tracking.EventRunFinished:
		return fmt.Sprintf("%s  run finished: %d new chapters", ts, ev.NewChapters)
	}

	b, _ := json.Marshal(ev)
	return fmt.Sprintf("%s  %s", ts, string(b))
}
