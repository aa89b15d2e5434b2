package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// 両アクションで使うもの
type runner struct {
	dialer  Dialer
	metrics *metrics
	out     io.Writer
	now     func() time.Time
}

// ホストの現在時刻(時・分)を書き込む
func (r *runner) setTime(ctx context.Context) error {
	err := withSession(ctx, r.dialer, r.metrics, func(s *Session) error {
		// 時計を読むのは1回だけ
		now := r.now()
		return s.WriteTime(uint8(now.Hour()), uint8(now.Minute()))
	})
	return r.handleNotFound(err)
}

// 1回の接続でテストパターンを順に書き込む (書き込みの間にdwellだけ待つ)
func (r *runner) testNixies(ctx context.Context, dwell time.Duration) error {
	err := withSession(ctx, r.dialer, r.metrics, func(s *Session) error {
		for i, t := range testPattern() {
			if i > 0 {
				if err := sleep(ctx, dwell); err != nil {
					return err
				}
			}
			if err := s.WriteTime(t.Hour, t.Minute); err != nil {
				return err
			}
		}
		return nil
	})
	return r.handleNotFound(err)
}

// 見つからない場合は通知だけして正常終了扱い
func (r *runner) handleNotFound(err error) error {
	if errors.Cause(err) != errNotFound {
		return err
	}
	slog.Warn("デバイスが見つからない", "name", deviceName)
	fmt.Fprintln(r.out, "Could not connect to Arduino")
	return nil
}

// 割り込みで中断できるスリープ
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
