// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// =============================================================================
// STREAM READER
// =============================================================================

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1 << 20

// StreamReader handles line-by-line JSON parsing of streaming responses.
type StreamReader struct {
	scanner *bufio.Scanner
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &StreamReader{scanner: scanner}
}

// Next returns the next chunk. Blank and malformed lines are skipped. A
// stream that ends before a done chunk returns io.ErrUnexpectedEOF.
func (s *StreamReader) Next() (StreamChunk, error) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw chatChunk
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}
		if raw.Error != "" {
			return StreamChunk{}, &ClientError{Type: ErrTypeInvalidResponse, Message: raw.Error}
		}

		return StreamChunk{Content: raw.Message.Content, Done: raw.Done, Model: raw.Model}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return StreamChunk{}, &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
	}
	return StreamChunk{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "stream ended early", Cause: io.ErrUnexpectedEOF}
}
