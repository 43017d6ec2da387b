package logtail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultMaxBytes bounds how much of the file tail Read looks at.
const DefaultMaxBytes int64 = 256 * 1024

// Read returns at most maxLines from the end of the file at path, looking
// only at the last maxBytes of it. maxLines <= 0 returns every line in that
// window; maxBytes <= 0 uses DefaultMaxBytes. A missing file yields nil.
func Read(path string, maxLines int, maxBytes int64) ([]string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}

	offset := info.Size() - maxBytes
	if offset < 0 {
		offset = 0
	}
	window := make([]byte, info.Size()-offset)
	n, err := file.ReadAt(window, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read log: %w", err)
	}
	window = window[:n]

	// The window started mid-line; the fragment before the first newline
	// is not a whole line.
	if offset > 0 {
		idx := bytes.IndexByte(window, '\n')
		if idx < 0 {
			return nil, nil
		}
		window = window[idx+1:]
	}

	return lastLines(window, maxLines)
}

func lastLines(data []byte, maxLines int) ([]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
