package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
)

type recordedWrite struct {
	char  *ble.Characteristic
	value []byte
	noRsp bool
	at    time.Time
}

// 無線の代わりに書き込みを記録する
type fakeLink struct {
	mutex    sync.Mutex
	writes   []recordedWrite
	failAt   int // 1始まり、0なら失敗しない
	failErr  error
	closed   int
	closedAt time.Time
}

func (l *fakeLink) WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.failAt > 0 && len(l.writes)+1 == l.failAt {
		return l.failErr
	}

	l.writes = append(l.writes, recordedWrite{
		char:  c,
		value: append([]byte(nil), value...),
		noRsp: noRsp,
		at:    time.Now(),
	})
	return nil
}

func (l *fakeLink) CancelConnection() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.closed++
	l.closedAt = time.Now()
	return nil
}

func (l *fakeLink) values() [][]byte {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var list [][]byte
	for _, w := range l.writes {
		list = append(list, w.value)
	}
	return list
}

type fakeDialer struct {
	link  *fakeLink
	char  *ble.Characteristic
	err   error
	dials int
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		link: &fakeLink{},
		char: ble.NewCharacteristic(timeCharUUID),
	}
}

func (d *fakeDialer) Dial(ctx context.Context) (Link, *ble.Characteristic, error) {
	d.dials++
	if d.err != nil {
		return nil, nil, d.err
	}
	return d.link, d.char, nil
}

// 名前とアドレスだけのアドバタイズ
type fakeAdv struct {
	ble.Advertisement
	name string
	addr string
}

func (a *fakeAdv) LocalName() string { return a.name }
func (a *fakeAdv) Addr() ble.Addr     { return ble.NewAddr(a.addr) }
func (a *fakeAdv) RSSI() int          { return -60 }

// 固定のサービスとキャラクタリスティックを返すクライアント
type fakeClient struct {
	ble.Client
	svcs    []*ble.Service
	chars   []*ble.Characteristic
	cancels int
}

func (c *fakeClient) Addr() ble.Addr { return ble.NewAddr("aa:bb:cc:dd:ee:ff") }

func (c *fakeClient) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	return c.svcs, nil
}

func (c *fakeClient) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	return c.chars, nil
}

func (c *fakeClient) CancelConnection() error {
	c.cancels++
	return nil
}

// ble.Scan にアドバタイズを流し、ble.Dial でクライアントを返すデバイス
type fakeDevice struct {
	ble.Device
	ads     []ble.Advertisement
	scanErr error
	client  *fakeClient
	dials   int
}

func (d *fakeDevice) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	if d.scanErr != nil {
		return d.scanErr
	}
	for _, a := range d.ads {
		if ctx.Err() != nil {
			break
		}
		h(a)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *fakeDevice) Dial(ctx context.Context, a ble.Addr) (ble.Client, error) {
	d.dials++
	return d.client, nil
}

func newFakeDevice(names ...string) *fakeDevice {
	d := &fakeDevice{
		client: &fakeClient{
			svcs:  []*ble.Service{ble.NewService(timeServiceUUID)},
			chars: []*ble.Characteristic{ble.NewCharacteristic(timeCharUUID)},
		},
	}
	for i, name := range names {
		d.ads = append(d.ads, &fakeAdv{
			name: name,
			addr: fmt.Sprintf("00:00:00:00:00:%02x", i),
		})
	}
	ble.SetDefaultDevice(d)
	return d
}
