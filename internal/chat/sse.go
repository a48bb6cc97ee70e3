package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/glassroot/glassroot/internal/apperr"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// Assembler reconstructs assistant text from a chat completions event stream.
type Assembler struct {
	// OnText receives the full accumulated text after every non-empty delta.
	OnText func(string)
	Logger *zap.Logger
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// ReadStream is a convenience wrapper around Assembler.Read without logging.
func ReadStream(ctx context.Context, r io.Reader, onText func(string)) (string, error) {
	a := &Assembler{OnText: onText}
	return a.Read(ctx, r)
}

// Read consumes r line by line until EOF and returns the accumulated text. Lines are only
// decoded once complete, so chunk boundaries may fall anywhere, including inside a UTF-8
// sequence. A trailing fragment without a newline is discarded. Malformed lines are logged
// and skipped. On a read error the text accumulated so far is returned with the error;
// cancellation of ctx is reported as ctx.Err().
func (a *Assembler) Read(ctx context.Context, r io.Reader) (string, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	br := bufio.NewReader(r)
	var text strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return text.String(), err
		}
		line, err := br.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return text.String(), nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return text.String(), ctxErr
			}
			return text.String(), err
		}

		delta, perr := parseLine(line)
		if perr != nil {
			var upstream *apperr.UpstreamError
			if errors.As(perr, &upstream) {
				return text.String(), perr
			}
			logger.Warn("skipping malformed stream chunk", zap.Error(perr))
			continue
		}
		if delta == "" {
			continue
		}
		text.WriteString(delta)
		if a.OnText != nil {
			a.OnText(text.String())
		}
	}
}

// parseLine returns the content delta carried by one complete SSE line. Blank lines,
// comments, other fields and the done sentinel yield "". An error chunk sent mid-stream
// is returned as an *apperr.UpstreamError.
func parseLine(line []byte) (string, error) {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return "", nil
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if len(payload) == 0 || string(payload) == doneSentinel {
		return "", nil
	}
	var chunk streamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", &apperr.StreamParseError{Line: string(payload), Err: err}
	}
	if chunk.Error != nil && chunk.Error.Message != "" {
		return "", &apperr.UpstreamError{Dependency: "chat completions", Err: errors.New(chunk.Error.Message)}
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}
