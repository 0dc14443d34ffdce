package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/linefollower/pkg/serialport"
	"github.com/tigerbot-team/linefollower/pkg/vision"
)

var CLI struct {
	Device string  `help:"Serial device to write to." default:"/dev/ttyUSB0"`
	Baud   int     `help:"Baud rate." default:"115200"`
	FPS    float64 `name:"fps" help:"Messages per second." default:"30"`
	Count  int     `help:"Stop after this many messages; 0 runs forever." default:"0"`

	Lk      float64 `help:"Lookahead to report, 0..1." default:"0.5"`
	Invalid bool    `help:"Report the lookahead as invalid."`
	Stdin   bool    `help:"Read '<lk> <valid>' pairs from stdin instead, one per line, sent at the same rate."`
}

func main() {
	fmt.Println("---- visionsend ----")
	kong.Parse(&CLI, kong.Description("Bench substitute for the vision computer."))

	if err := run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run() error {
	if CLI.FPS <= 0 {
		return errors.Errorf("fps must be positive, got %v", CLI.FPS)
	}
	port, err := serialport.Open(CLI.Device, serialport.Options{BaudRate: CLI.Baud})
	if err != nil {
		return err
	}
	defer port.Close()
	sender := vision.NewSender(port)

	next := fixed(CLI.Lk, !CLI.Invalid)
	if CLI.Stdin {
		next = fromReader(bufio.NewScanner(os.Stdin))
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / CLI.FPS))
	defer ticker.Stop()
	for sent := 0; CLI.Count == 0 || sent < CLI.Count; sent++ {
		lk, valid, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := sender.Send(lk, valid); err != nil {
			return err
		}
		if sent%int(CLI.FPS+1) == 0 {
			fmt.Printf("Sent %d: %s", sent+1, vision.FormatLine(lk, valid))
		}
		<-ticker.C
	}
	return nil
}

type source func() (lk float64, valid, ok bool, err error)

func fixed(lk float64, valid bool) source {
	return func() (float64, bool, bool, error) {
		return lk, valid, true, nil
	}
}

func fromReader(scanner *bufio.Scanner) source {
	return func() (float64, bool, bool, error) {
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			lk, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return 0, false, false, errors.Wrapf(err, "bad lookahead %q", fields[0])
			}
			valid := true
			if len(fields) > 1 {
				valid = fields[1] == "1" || fields[1] == "true"
			}
			return lk, valid, true, nil
		}
		return 0, false, false, scanner.Err()
	}
}
