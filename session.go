package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

// スキャン期限内に時計が見つからなかった
var errNotFound = errors.New("device not found")

// セッションが書き込みに使う ble.Client の一部
type Link interface {
	WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error
	CancelConnection() error
}

// 時計を探して接続し、時刻キャラクタリスティックを解決する
// 期限内に見つからなければ errNotFound を返す
type Dialer interface {
	Dial(ctx context.Context) (Link, *ble.Characteristic, error)
}

// 接続済みの時計 (withSession の中でだけ有効)
type Session struct {
	link    Link
	char    *ble.Characteristic
	metrics *metrics
}

// 時・分を書き込み、応答を待つ
func (s *Session) WriteTime(hour, minute uint8) error {
	err := s.link.WriteCharacteristic(s.char, encodeTime(hour, minute), false)
	if err != nil {
		s.metrics.writeFailed()
		return errors.Wrap(err, "can't write time")
	}

	s.metrics.writeDone(hour, minute, time.Now())
	slog.Info("時刻書き込み", "hour", hour, "minute", minute)
	return nil
}

// 接続してfnを実行し、どの経路で抜けても切断する
func withSession(ctx context.Context, d Dialer, m *metrics, fn func(s *Session) error) error {
	link, char, err := d.Dial(ctx)
	if errors.Cause(err) == errNotFound {
		m.session("not_found")
		return err
	} else if err != nil {
		m.session("error")
		return err
	}
	m.session("connected")

	defer func() {
		if err := link.CancelConnection(); err != nil {
			slog.Warn("disconnect error", "error", err)
			return
		}
		slog.Debug("切断")
	}()

	return fn(&Session{link: link, char: char, metrics: m})
}

// デフォルトのBLEデバイス経由で接続する
type bleDialer struct {
	name    string
	timeout time.Duration
}

func (d *bleDialer) Dial(ctx context.Context) (Link, *ble.Characteristic, error) {
	a, err := d.find(ctx)
	if err != nil {
		return nil, nil, err
	}

	cln, err := ble.Dial(ctx, a.Addr())
	if err != nil {
		return nil, nil, errors.Wrap(err, "can't dial")
	}
	slog.Info("接続", "address", cln.Addr().String())

	char, err := resolveTimeChar(cln)
	if err != nil {
		_ = cln.CancelConnection()
		return nil, nil, err
	}

	return cln, char, nil
}

// 名前が一致する最初のアドバタイズまでスキャン
func (d *bleDialer) find(ctx context.Context) (ble.Advertisement, error) {
	var scanCtx context.Context
	var cancel context.CancelFunc
	if d.timeout > 0 {
		scanCtx, cancel = context.WithTimeout(ctx, d.timeout)
	} else {
		scanCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	slog.Info("スキャン開始", "name", d.name, "timeout", d.timeout)

	found := make(chan ble.Advertisement, 1)
	err := ble.Scan(scanCtx, false, func(a ble.Advertisement) {
		select {
		case found <- a:
			slog.Info("デバイス検出", "name", a.LocalName(), "address", a.Addr().String(), "rssi", a.RSSI())
		default:
		}
		cancel()
	}, func(a ble.Advertisement) bool {
		return a.LocalName() == d.name
	})

	select {
	case a := <-found:
		return a, nil
	default:
	}

	// 割り込みはそのまま返す
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	switch errors.Cause(err) {
	case nil, context.DeadlineExceeded, context.Canceled:
		return nil, errNotFound
	default:
		return nil, errors.Wrap(err, "can't scan")
	}
}

// 時刻キャラクタリスティックのハンドルを取得
func resolveTimeChar(cln ble.Client) (*ble.Characteristic, error) {
	svcs, err := cln.DiscoverServices([]ble.UUID{timeServiceUUID})
	if err != nil {
		return nil, errors.Wrap(err, "can't discover services")
	}
	if len(svcs) != 1 {
		return nil, errors.Errorf("unexpected number of services: %d", len(svcs))
	}

	chars, err := cln.DiscoverCharacteristics([]ble.UUID{timeCharUUID}, svcs[0])
	if err != nil {
		return nil, errors.Wrap(err, "can't discover characteristics")
	}
	if len(chars) != 1 {
		return nil, errors.Errorf("unexpected number of characteristics: %d", len(chars))
	}

	return chars[0], nil
}
