package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

func main() {
	// コマンドライン解析 (BLEに触る前に弾く)
	cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n%s", err, usage)
		os.Exit(2)
	}
	if cmd.cHelp {
		fmt.Print(usage)
		return
	}

	if cmd.oVerbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// BLEデバイス初期化
	if err := initBleDevice(); err != nil {
		slog.Error("failed to init device", "error", err)
		os.Exit(1)
	}

	r := &runner{
		dialer:  &bleDialer{name: deviceName, timeout: cmd.oTimeout},
		metrics: newMetrics(),
		out:     os.Stdout,
		now:     time.Now,
	}

	ctx := ble.WithSigHandler(signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM))
	err = run(ctx, cmd, r)

	// 失敗時もメトリクスは残す
	if cmd.oMetrics != "" {
		if err := r.metrics.writeFile(cmd.oMetrics); err != nil {
			slog.Error("metrics error", "error", err)
		}
	}

	switch errors.Cause(err) {
	case nil:
	case context.Canceled:
		slog.Info("中断")
		os.Exit(130)
	default:
		slog.Error("failed", "error", err)
		os.Exit(1)
	}
}

// 選ばれたアクションを実行
func run(ctx context.Context, cmd *command, r *runner) error {
	switch {
	case cmd.cSetTime:
		return r.setTime(ctx)
	case cmd.cTestNixies:
		return r.testNixies(ctx, cmd.oDwellTime)
	default:
		return errors.New("no action selected")
	}
}
