// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// Only the pieces the business assistant needs are implemented: a health
// check and streamed chat completions over /api/chat.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role and content
//   - StreamReader: NDJSON reader for streamed replies
//
// # Usage
//
//	client := ollama.NewClientWithConfig(nil)
//	for fragment, err := range client.Stream(ctx, "", messages) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(fragment)
//	}
package ollama
