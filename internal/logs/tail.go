package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// TailOptions controls one Tail call. A negative Offset reads the last
// Limit lines; a non-negative Offset reads forward from that byte.
// Component and MinLevel filter lines by the structured fields rotulo's
// console and JSON handlers emit; filtered-out lines still advance the
// returned offset.
type TailOptions struct {
	Offset    int64
	Limit     int
	Follow    bool
	Wait      time.Duration
	Component string
	MinLevel  string
}

// TailResult carries the matched lines and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads from the log file at path according to opts. A missing file
// is not an error; it reports no lines and offset zero so a follower can
// pick the file up once the first command creates it.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}
	filter := newLineFilter(opts.Component, opts.MinLevel)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	wait := opts.Wait
	if wait < 0 {
		wait = 0
	}

	if opts.Offset < 0 {
		lines, offset, err := readTail(path, opts.Limit, filter)
		if err != nil {
			return result, err
		}
		result.Lines = lines
		result.Offset = offset
		if opts.Follow && wait > 0 && len(lines) == 0 {
			return awaitLines(ctx, path, offset, wait, filter)
		}
		return result, nil
	}

	offset := opts.Offset
	if offset > info.Size() {
		offset = info.Size()
	}
	lines, newOffset, err := readFrom(path, offset, filter)
	if err != nil {
		return result, err
	}
	result.Lines = lines
	result.Offset = newOffset
	if opts.Follow && wait > 0 && len(lines) == 0 {
		return awaitLines(ctx, path, newOffset, wait, filter)
	}
	return result, nil
}

const scanBufferSize = 1024 * 1024

// readTail collects the last limit matching lines, keeping a ring so the
// file is scanned once regardless of size.
func readTail(path string, limit int, filter lineFilter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if limit <= 0 {
		return nil, info.Size(), nil
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	ring := make([]string, limit)
	count := 0
	next := 0
	for scanner.Scan() {
		line := scanner.Text()
		if !filter.match(line) {
			continue
		}
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(next+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, info.Size(), nil
}

// readFrom scans forward from offset and returns the matching lines plus
// the offset past everything scanned.
func readFrom(path string, offset int64, filter lineFilter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)
	var lines []string
	for scanner.Scan() {
		if line := scanner.Text(); filter.match(line) {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	newOffset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, newOffset, nil
}

// awaitLines polls for matching lines appended after offset until wait
// elapses or the context ends.
func awaitLines(ctx context.Context, path string, offset int64, wait time.Duration, filter lineFilter) (TailResult, error) {
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		lines, newOffset, err := readFrom(path, result.Offset, filter)
		if err != nil {
			return result, err
		}
		if newOffset > 0 {
			result.Offset = newOffset
		}
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

// lineFilter matches log lines in either of the formats the logging
// package writes: the console form
//
//	2026-03-14T10:00:00Z INFO syncer: sync run started queued=2
//
// or slog's JSON form carrying "level" and "component" fields.
type lineFilter struct {
	component string
	minLevel  int
}

func newLineFilter(component, minLevel string) lineFilter {
	f := lineFilter{component: strings.TrimSpace(component), minLevel: -1}
	if rank, ok := levelRank[strings.ToUpper(strings.TrimSpace(minLevel))]; ok {
		f.minLevel = rank
	}
	return f
}

func (f lineFilter) match(line string) bool {
	if f.component == "" && f.minLevel < 0 {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		return f.matchJSON(line)
	}
	return f.matchConsole(line)
}

func (f lineFilter) matchJSON(line string) bool {
	if f.component != "" && !strings.Contains(line, `"component":`+strconv.Quote(f.component)) {
		return false
	}
	if f.minLevel >= 0 {
		rank := -1
		for label, r := range levelRank {
			if strings.Contains(line, `"level":"`+strings.ToLower(label)+`"`) {
				rank = r
				break
			}
		}
		if rank < f.minLevel {
			return false
		}
	}
	return true
}

func (f lineFilter) matchConsole(line string) bool {
	fields := strings.Fields(stripANSI(line))
	if len(fields) < 2 {
		return false
	}
	if f.minLevel >= 0 {
		rank, ok := levelRank[fields[1]]
		if !ok || rank < f.minLevel {
			return false
		}
	}
	if f.component != "" {
		if len(fields) < 3 || fields[2] != f.component+":" {
			return false
		}
	}
	return true
}

// stripANSI drops color escape sequences so level labels parse the same
// whether or not the handler wrote to a terminal.
func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
