package providerclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/boxed-run/sdk/internal/sandbox"
)

// FrameReader reads an SSE/NDJSON stream, splitting on '\n', stripping a
// "data: " prefix when present, and yielding one decoded record per
// frame. It stops (closing the returned channel) on EOF, stream error,
// or context cancellation.
func FrameReader(ctx context.Context, r io.ReadCloser) <-chan []byte {
	out := make(chan []byte)
	go func() {
		defer close(out)
		defer r.Close()

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			line = bytes.TrimPrefix(line, []byte("data: "))
			line = bytes.TrimPrefix(line, []byte("data:"))

			select {
			case out <- append([]byte(nil), line...):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// FrameDecoder maps one WebSocket text frame to a ProcessChunk, per the
// provider's own framing convention (Cloudflare: {stream,data} JSON;
// Daytona: raw stdout bytes).
type FrameDecoder func(frame []byte) (sandbox.ProcessChunk, bool)

// WSConn is the minimal surface WSChunkReader needs from a websocket
// connection (satisfied by *gorilla/websocket.Conn's ReadMessage).
type WSConn interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// WSChunkReader reads text frames from conn, decodes each with decode,
// and emits the resulting ProcessChunks in arrival order until the
// connection closes or ctx is canceled.
func WSChunkReader(ctx context.Context, conn WSConn, decode FrameDecoder) <-chan sandbox.ProcessChunk {
	out := make(chan sandbox.ProcessChunk)
	go func() {
		defer close(out)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			chunk, ok := decode(data)
			if !ok {
				continue
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// RawStdoutDecoder treats every frame as raw stdout bytes (Daytona's
// convention).
func RawStdoutDecoder(frame []byte) (sandbox.ProcessChunk, bool) {
	return sandbox.ProcessChunk{Channel: sandbox.ChannelStdout, Data: frame}, true
}

// sseChunkEnvelope is the wire shape an SSE exec-stream frame decodes
// into: one JSON object per line naming which channel the payload
// belongs to, matching the {channel,data} convention used across the
// SSE-based providers (Modal, Vercel, E2B, Blaxel).
type sseChunkEnvelope struct {
	Channel string `json:"channel"`
	Data    string `json:"data"`
}

// DecodeSSEChunk decodes one FrameReader frame into a ProcessChunk using
// the {channel,data} envelope. Malformed or empty frames are skipped
// (ok=false) rather than surfaced as stream errors.
func DecodeSSEChunk(frame []byte) (sandbox.ProcessChunk, bool) {
	var env sseChunkEnvelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Data == "" {
		return sandbox.ProcessChunk{}, false
	}
	channel := sandbox.ChannelStdout
	if env.Channel == "stderr" {
		channel = sandbox.ChannelStderr
	}
	return sandbox.ProcessChunk{Channel: channel, Data: []byte(env.Data)}, true
}

// TrimmedLines splits a buffered stderr blob into non-empty lines, used
// by adapters parsing clone/install progress out of a command's stderr
// stream.
func TrimmedLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
