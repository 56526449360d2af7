package mcp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readMessage reads either a Content-Length framed payload or a single line
// of JSON. framed reports which form was seen so replies can match it.
func readMessage(r *bufio.Reader) (payload []byte, framed bool, err error) {
	for {
		line, err := r.ReadString('\n')
		if err != nil && len(line) == 0 {
			return nil, false, err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(trimmed), "{") {
			return []byte(trimmed), false, nil
		}

		contentLength, err := parseContentLength(trimmed, 0)
		if err != nil {
			return nil, true, err
		}
		for {
			headerLine, readErr := r.ReadString('\n')
			if readErr != nil && len(headerLine) == 0 {
				return nil, true, readErr
			}
			header := strings.TrimRight(headerLine, "\r\n")
			if header == "" {
				break
			}
			if contentLength, err = parseContentLength(header, contentLength); err != nil {
				return nil, true, err
			}
		}

		if contentLength <= 0 {
			return nil, true, fmt.Errorf("missing Content-Length")
		}
		payload := make([]byte, contentLength)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, true, err
		}
		return payload, true, nil
	}
}

// parseContentLength returns the header value, or current for other headers.
func parseContentLength(header string, current int) (int, error) {
	name, value, ok := strings.Cut(header, ":")
	if !ok || !strings.EqualFold(strings.TrimSpace(name), "content-length") {
		return current, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("bad Content-Length %q: %w", value, err)
	}
	return n, nil
}

func writeMessage(w *bufio.Writer, payload []byte, framed bool) error {
	if framed {
		if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
	} else {
		if _, err := w.Write(payload); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
