// Command wstail connects to a WebSocket endpoint, tails every message to
// stdout, and reports client metrics on an interval. It demonstrates the
// stream consumption surface against a live endpoint, for example a Binance
// market data stream:
//
//	wstail -uri wss://stream.binance.com:9443/ws/btcusdt@trade
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"github.com/aonyx/wsclient"
)

func main() {
	uri := flag.String("uri", "", "endpoint URI (ws:// or wss://)")
	heartbeat := flag.Duration("heartbeat", 30*time.Second, "keepalive ping interval")
	receiveTimeout := flag.Duration("receive-timeout", 60*time.Second, "idle read deadline")
	reconnects := flag.Int("reconnects", -1, "consecutive failed attempts before giving up (-1=forever)")
	sessionTimeout := flag.Duration("session-timeout", 0, "recycle the connection after this long (0=never)")
	queueSize := flag.Int("queue-size", 1024, "outbound send queue capacity")
	compression := flag.Int("compression", 0, "permessage-deflate level (0=off)")
	insecure := flag.Bool("insecure", false, "skip TLS certificate verification")
	statsInterval := flag.Duration("stats-interval", 15*time.Second, "metrics report interval (0=disable)")
	profile := flag.Bool("pyroscope", false, "ship profiles to a local pyroscope server")
	flag.Parse()

	if *uri == "" {
		fmt.Fprintln(os.Stderr, "wstail: -uri is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "wsclient/wstail",
			ServerAddress:   "http://localhost:4040",
			Tags: map[string]string{
				"env": "local",
			},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	client, err := wsclient.New(wsclient.Config{
		URI:                *uri,
		Heartbeat:          *heartbeat,
		ReceiveTimeout:     *receiveTimeout,
		SessionTimeout:     *sessionTimeout,
		ReconnectAttempts:  *reconnects,
		SendQueueSize:      *queueSize,
		Compression:        *compression,
		InsecureSkipVerify: *insecure,
	})
	if err != nil {
		log.Fatalf("client init failed: %v", err)
	}
	if err := client.Start(ctx); err != nil {
		log.Fatalf("client start failed: %v", err)
	}

	stream, err := client.CreateStream(256)
	if err != nil {
		log.Fatalf("create stream failed: %v", err)
	}

	if *statsInterval > 0 {
		go reportMetrics(ctx, client, *statsInterval)
	}

	go func() {
		for msg := range client.Stream(stream) {
			fmt.Printf("%s %s\n", msg.Type, msg.Data)
		}
	}()

	select {
	case <-ctx.Done():
	case <-client.Done():
	}
	if err := client.Stop(); err != nil {
		logs.Warnf("stop: %v", err)
	}
	if err := client.Err(); err != nil {
		logs.Errorf("client closed: %v", err)
		os.Exit(1)
	}
}

func reportMetrics(ctx context.Context, client *wsclient.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := client.Metrics()
			logs.Infof("state=%s recv=%d sent=%d bytes_in=%d bytes_out=%d dropped=%d errors=%d reconnects=%d",
				snap.State, snap.MessagesReceived, snap.MessagesSent,
				snap.BytesReceived, snap.BytesSent,
				snap.Dropped, snap.Errors, snap.ReconnectAttempts)
		}
	}
}
