package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassroot/glassroot/internal/apperr"
)

func sseChunk(content string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
}

var deltas = []string{"Hel", "lo, ", "wörld ", "🌍", " · ", "日本語", "!"}

func sampleStream() []byte {
	var b strings.Builder
	b.WriteString(": OPENROUTER PROCESSING\n\n")
	b.WriteString("data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
	for _, d := range deltas {
		b.WriteString(sseChunk(d))
	}
	b.WriteString("data: [DONE]\n\n")
	return []byte(b.String())
}

// recorder collects republished states and checks that each one extends the last.
type recorder struct {
	t      *testing.T
	states []string
}

func (r *recorder) onText(text string) {
	if n := len(r.states); n > 0 {
		prev := r.states[n-1]
		assert.True(r.t, len(text) > len(prev) && strings.HasPrefix(text, prev),
			"state %q does not strictly extend %q", text, prev)
	}
	r.states = append(r.states, text)
}

func TestReadStream(t *testing.T) {
	rec := &recorder{t: t}
	text, err := ReadStream(context.Background(), bytes.NewReader(sampleStream()), rec.onText)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(deltas, ""), text)
	assert.Len(t, rec.states, len(deltas))
	assert.Equal(t, text, rec.states[len(rec.states)-1])
}

func TestReadStream_OneByteChunks(t *testing.T) {
	rec := &recorder{t: t}
	text, err := ReadStream(context.Background(), iotest.OneByteReader(bytes.NewReader(sampleStream())), rec.onText)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(deltas, ""), text)
	assert.Len(t, rec.states, len(deltas))
}

func TestReadStream_HalfAndDataErrReaders(t *testing.T) {
	for name, wrap := range map[string]func(io.Reader) io.Reader{
		"half":    iotest.HalfReader,
		"dataErr": iotest.DataErrReader,
	} {
		t.Run(name, func(t *testing.T) {
			text, err := ReadStream(context.Background(), wrap(bytes.NewReader(sampleStream())), nil)
			require.NoError(t, err)
			assert.Equal(t, strings.Join(deltas, ""), text)
		})
	}
}

func TestReadStream_EverySplitPoint(t *testing.T) {
	stream := sampleStream()
	want := strings.Join(deltas, "")
	for i := 0; i <= len(stream); i++ {
		rec := &recorder{t: t}
		r := io.MultiReader(bytes.NewReader(stream[:i]), bytes.NewReader(stream[i:]))
		text, err := ReadStream(context.Background(), r, rec.onText)
		require.NoError(t, err)
		if !assert.Equal(t, want, text, "split at byte %d", i) {
			return
		}
	}
}

func TestReadStream_SkipsMalformedLines(t *testing.T) {
	stream := sseChunk("a") + "data: {not json}\n" + "data: {\"choices\":[]}\n" +
		"event: ping\n" + "data:{\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n" + sseChunk("c")
	text, err := ReadStream(context.Background(), strings.NewReader(stream), nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", text)
}

func TestReadStream_CRLF(t *testing.T) {
	stream := strings.ReplaceAll(sseChunk("x")+sseChunk("y"), "\n", "\r\n")
	text, err := ReadStream(context.Background(), strings.NewReader(stream), nil)
	require.NoError(t, err)
	assert.Equal(t, "xy", text)
}

func TestReadStream_DiscardsIncompleteTail(t *testing.T) {
	stream := sseChunk("kept") + `data: {"choices":[{"delta":{"content":"lost"}}]}`
	text, err := ReadStream(context.Background(), strings.NewReader(stream), nil)
	require.NoError(t, err)
	assert.Equal(t, "kept", text)
}

func TestReadStream_ReadErrorKeepsPartialText(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader(sseChunk("partial")), iotest.ErrReader(boom))
	text, err := ReadStream(context.Background(), r, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", text)
}

func TestReadStream_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadStream(ctx, bytes.NewReader(sampleStream()), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadStream_ErrorChunk(t *testing.T) {
	stream := sseChunk("a") + `data: {"error":{"message":"Rate limit exceeded","code":429}}` + "\n\n" + sseChunk("b")
	text, err := ReadStream(context.Background(), strings.NewReader(stream), nil)
	var ue *apperr.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), "Rate limit exceeded")
	assert.Equal(t, "a", text)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{": comment", "", false},
		{"data: [DONE]", "", false},
		{"data:", "", false},
		{`data: {"choices":[{"delta":{"content":"hi"}}]}`, "hi", false},
		{`data: {"choices":[{"delta":{}}]}`, "", false},
		{`data: {"choices":`, "", true},
	}
	for _, tt := range tests {
		got, err := parseLine([]byte(tt.line))
		if tt.wantErr {
			var pe *apperr.StreamParseError
			assert.ErrorAs(t, err, &pe, "line %q", tt.line)
			continue
		}
		assert.NoError(t, err, "line %q", tt.line)
		assert.Equal(t, tt.want, got, "line %q", tt.line)
	}
}
