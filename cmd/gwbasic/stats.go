package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tklauser/go-sysconf"

	"gwbasic/internal/interp"
)

// cpuTime is user and system CPU time in seconds.
type cpuTime struct {
	utime, stime int64
	err          error
}

func readCPU() cpuTime {

	utime, stime, err := getCPUInfo()

	return cpuTime{utime: utime, stime: stime, err: err}
}

func printStatistics(w io.Writer, ip *interp.Interpreter, start time.Time, before cpuTime) {

	fmt.Fprintf(w, "Statements executed: %d\n", ip.Statements)

	after := readCPU()
	if after.err != nil || before.err != nil {
		fmt.Fprintf(w, "CPU Usage: elapsed = %s\n", formatCPUTime(int64(time.Since(start).Seconds())))
		return
	}

	fmt.Fprintf(w, "CPU Usage: elapsed = %s / user = %s / system = %s\n",
		formatCPUTime(int64(time.Since(start).Seconds())),
		formatCPUTime(after.utime-before.utime), formatCPUTime(after.stime-before.stime))
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

//
// User and system time come from fields 14 and 15 of /proc/self/stat,
// counted in clock ticks. Only Linux has it; elsewhere the error makes
// the statistics fall back to elapsed time
//

func getCPUInfo() (int64, int64, error) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		return 0, 0, errors.Wrap(err, "sysconf")
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}

	//
	// The command name in field 2 may hold blanks, so count from the
	// parenthesis that closes it
	//

	stat := string(contents)
	fields := strings.Fields(stat[strings.LastIndexByte(stat, ')')+1:])
	if len(fields) < 13 {
		return 0, 0, errors.New("short /proc/self/stat")
	}

	utime, err := strconv.ParseInt(fields[11], 10, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "utime")
	}

	stime, err := strconv.ParseInt(fields[12], 10, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "stime")
	}

	return utime / clktck, stime / clktck, nil
}
