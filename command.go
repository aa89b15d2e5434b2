package main

import (
	"math"
	"strconv"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var usage = `nixie - set the time of a Nixie-Clock over BLE

Usage:
  nixie (--set-time | --test-nixies) [--dwell-time=<s> --timeout=<d> --metrics=<path> --verbose]
  nixie -h | --help

Options:
  --set-time            Set the time.
  --test-nixies         Test each digit of each tube.
  -d --dwell-time=<s>   How long to spend on each digit in seconds [default: 10].
  -t --timeout=<d>      How long to scan for the clock [default: 10s].
  -m --metrics=<path>   Write Prometheus metrics to a textfile after the run.
  -v --verbose          Enable debug logging.
  -h --help             Show this screen.
`

type command struct {
	// commands
	cSetTime    bool
	cTestNixies bool
	cHelp       bool

	// options
	oDwellTime time.Duration
	oTimeout   time.Duration
	oMetrics   string
	oVerbose   bool
}

func parseCommand(argv []string) (*command, error) {
	p := &docopt.Parser{
		HelpHandler:   docopt.NoHelpHandler,
		SkipHelpFlags: true,
	}
	a, err := p.ParseArgs(usage, argv, "")
	if err != nil {
		// 不正な引数と一緒でもヘルプ指定があればヘルプを出す
		if lo.Contains(argv, "-h") || lo.Contains(argv, "--help") {
			return &command{cHelp: true}, nil
		}
		return nil, err
	}
	if getBool(a["--help"]) {
		return &command{cHelp: true}, nil
	}

	dwell, err := getSeconds(a["--dwell-time"])
	if err != nil {
		return nil, errors.Wrap(err, "invalid dwell time")
	}

	timeout, err := time.ParseDuration(getString(a["--timeout"]))
	if err != nil {
		return nil, errors.Wrap(err, "invalid timeout")
	}

	return &command{
		// commands
		cSetTime:    getBool(a["--set-time"]),
		cTestNixies: getBool(a["--test-nixies"]),

		// options
		oDwellTime: dwell,
		oTimeout:   timeout,
		oMetrics:   getString(a["--metrics"]),
		oVerbose:   getBool(a["--verbose"]),
	}, nil
}

func getBool(field interface{}) bool {
	val, _ := field.(bool)
	return val
}

func getString(field interface{}) string {
	str, _ := field.(string)
	return str
}

// time.Duration に収まらない値は弾く
var maxSeconds = float64(math.MaxInt64) / float64(time.Second)

func getSeconds(field interface{}) (time.Duration, error) {
	sec, err := strconv.ParseFloat(getString(field), 64)
	if err != nil {
		return 0, err
	}
	if sec < 0 || sec >= maxSeconds || math.IsNaN(sec) {
		return 0, errors.Errorf("out of range: %v", sec)
	}
	return time.Duration(sec * float64(time.Second)), nil
}
