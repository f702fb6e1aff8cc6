package client

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"
)

// SubscribeToInput streams non-empty lines read from r. With follow set,
// reaching EOF waits for more data instead of closing the stream, like
// `tail -f`. The lines channel is closed when reading stops; a read error
// is sent on the error channel first.
func SubscribeToInput(ctx context.Context, r io.Reader, follow bool) (<-chan string, <-chan error) {
	reader := bufio.NewReader(r)
	lines := make(chan string)
	errChan := make(chan error, 1)
	go func() {
		defer close(lines)
		var line []byte
		send := func() bool {
			s := strings.TrimSpace(string(line))
			line = line[:0]
			if s == "" {
				return true
			}
			select {
			case lines <- s:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for {
			part, err := reader.ReadBytes('\n')
			line = append(line, part...)
			switch {
			case err == nil:
				if !send() {
					return
				}
			case err != io.EOF:
				errChan <- err
				return
			case !follow:
				send()
				return
			default:
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
		}
	}()

	return lines, errChan
}
