package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/sketchroom/internal"
)

// trickleReader hands out at most one byte per Read to exercise short reads.
type trickleReader struct {
	r io.Reader
}

func (t trickleReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return t.r.Read(p[:1])
}

func TestEncode_PadsHeaderToFixedLength(t *testing.T) {
	c := NewCodec(64, 0)

	buf, err := c.Encode(internal.ChatMessageBc{Author: "alice", Message: "hi"})
	require.NoError(t, err)

	header := buf[:64]
	assert.True(t, strings.HasSuffix(string(header), " "))
	assert.Contains(t, string(header), `"name":"ChatMessageBc"`)
	assert.JSONEq(t, `{"author":"alice","message":"hi"}`, string(buf[64:]))
}

func TestEncode_HeaderTooLong(t *testing.T) {
	c := NewCodec(10, 0)

	_, err := c.Encode(internal.ChatMessageBc{Author: "alice"})
	assert.ErrorIs(t, err, ErrHeaderTooLong)
}

func TestWriteFrame_SingleWrite(t *testing.T) {
	c := NewCodec(64, 0)
	w := &countingWriter{}

	require.NoError(t, c.WriteFrame(w, internal.WordHintBc{WordHint: "c__"}))
	assert.Equal(t, 1, w.writes)
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestReadFrame_ShortReads(t *testing.T) {
	c := NewCodec(64, 0)
	var stream bytes.Buffer
	require.NoError(t, c.WriteFrame(&stream, internal.JoinRoomResp{Status: internal.StatusOK, Owner: "alice"}))
	require.NoError(t, c.WriteFrame(&stream, internal.WordHintBc{WordHint: "c a_"}))

	r := trickleReader{r: &stream}

	first, err := c.ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, internal.NameJoinRoomResp, first.Name)
	var resp internal.JoinRoomResp
	require.NoError(t, first.Decode(&resp))
	assert.Equal(t, "alice", resp.Owner)

	second, err := c.ReadFrame(r)
	require.NoError(t, err)
	var hint internal.WordHintBc
	require.NoError(t, second.Decode(&hint))
	assert.Equal(t, "c a_", hint.WordHint)

	_, err = c.ReadFrame(r)
	assert.ErrorIs(t, err, internal.ErrConnectionClosed)
}

func TestReadFrame_TruncatedBody(t *testing.T) {
	c := NewCodec(64, 0)
	buf, err := c.Encode(internal.ChatMessageBc{Author: "bob", Message: "a long enough message"})
	require.NoError(t, err)

	_, err = c.ReadFrame(bytes.NewReader(buf[:len(buf)-3]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFrame_MalformedHeader(t *testing.T) {
	c := NewCodec(16, 0)
	garbage := []byte("not json at all!")

	_, err := c.ReadFrame(bytes.NewReader(garbage))
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestReadFrame_BodyLimit(t *testing.T) {
	c := NewCodec(64, 8)
	header := `{"length":1000,"name":"ChatMessageReq"}`
	raw := header + strings.Repeat(" ", 64-len(header))

	_, err := c.ReadFrame(strings.NewReader(raw))
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestParseRequest_FromFrame(t *testing.T) {
	c := NewCodec(64, 0)
	var stream bytes.Buffer
	require.NoError(t, c.WriteFrame(&stream, internal.DrawStrokeReq{
		UserName:          "alice",
		RoomCode:          "abcdefgh",
		StrokeCoordinates: internal.Stroke{{1, 2}, {3, 4}},
	}))

	frame, err := c.ReadFrame(&stream)
	require.NoError(t, err)

	req, err := internal.ParseRequest(frame.Name, frame.Body)
	require.NoError(t, err)
	draw, ok := req.(internal.DrawStrokeReq)
	require.True(t, ok)
	assert.Equal(t, internal.Stroke{{1, 2}, {3, 4}}, draw.StrokeCoordinates)
}
