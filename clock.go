package main

import (
	"github.com/go-ble/ble"
	"github.com/samber/lo"
)

// 時計が広告するローカル名
const deviceName = "Nixie-Clock"

// 時刻サービスと時刻キャラクタリスティック (ファームウェア側で固定)
var (
	timeServiceUUID = ble.MustParse("19B10000-E8F2-537E-4F6C-D104768A1214")
	timeCharUUID    = ble.MustParse("19B10001-E8F2-537E-4F6C-D104768A1215")
)

// 時計に表示する時刻
// 範囲外の値もそのまま送る (解釈はファームウェア側)
type Time struct {
	Hour   uint8
	Minute uint8
}

// 書き込むペイロードを作る: [時, 分] の2バイト
func encodeTime(hour, minute uint8) []byte {
	return []byte{hour, minute}
}

// 全ての管の全ての数字を点灯させるテストパターン
// 00:00, 11:11, ..., 99:99
func testPattern() []Time {
	return lo.Times(10, func(i int) Time {
		v := uint8(10*i + i)
		return Time{Hour: v, Minute: v}
	})
}
