// Package wire frames messages over a byte stream.
//
// A frame is a fixed size header holding the JSON record
// {"length": N, "name": "MsgName"} right padded with spaces, followed by
// exactly N bytes of JSON body.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/scythe504/sketchroom/internal"
)

var (
	ErrHeaderTooLong   = errors.New("serialized header exceeds header length")
	ErrMalformedHeader = errors.New("malformed frame header")
	ErrBodyTooLarge    = errors.New("frame body exceeds limit")
)

type Header struct {
	Length int    `json:"length"`
	Name   string `json:"name"`
}

type Frame struct {
	Name string
	Body []byte
}

type Codec struct {
	HeaderLen  int
	MaxBodyLen int
}

func NewCodec(headerLen, maxBodyLen int) Codec {
	if headerLen <= 0 {
		headerLen = internal.DefaultHeaderLen
	}
	if maxBodyLen <= 0 {
		maxBodyLen = internal.DefaultMaxBodyLen
	}
	return Codec{HeaderLen: headerLen, MaxBodyLen: maxBodyLen}
}

// Encode serializes msg into one contiguous header+body buffer.
func (c Codec) Encode(msg internal.Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", msg.MsgName(), err)
	}
	if len(body) > c.MaxBodyLen {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrBodyTooLarge, msg.MsgName(), len(body))
	}

	header, err := json.Marshal(Header{Length: len(body), Name: msg.MsgName()})
	if err != nil {
		return nil, fmt.Errorf("encode %s header: %w", msg.MsgName(), err)
	}
	if len(header) > c.HeaderLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrHeaderTooLong, len(header), c.HeaderLen)
	}

	buf := make([]byte, 0, c.HeaderLen+len(body))
	buf = append(buf, header...)
	buf = append(buf, bytes.Repeat([]byte{' '}, c.HeaderLen-len(header))...)
	buf = append(buf, body...)
	return buf, nil
}

// WriteFrame writes msg with a single Write call so concurrent writers that
// share a lock never interleave a header with another frame's body.
func (c Codec) WriteFrame(w io.Writer, msg internal.Message) error {
	buf, err := c.Encode(msg)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadFrame blocks until one whole frame is read. A stream that ends cleanly
// before the first header byte yields internal.ErrConnectionClosed.
func (c Codec) ReadFrame(r io.Reader) (Frame, error) {
	headerBuf := make([]byte, c.HeaderLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, internal.ErrConnectionClosed
		}
		return Frame{}, err
	}

	var header Header
	if err := json.Unmarshal(bytes.TrimRight(headerBuf, " \x00"), &header); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if header.Length < 0 || header.Name == "" {
		return Frame{}, fmt.Errorf("%w: length=%d name=%q", ErrMalformedHeader, header.Length, header.Name)
	}
	if header.Length > c.MaxBodyLen {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, header.Length)
	}

	body := make([]byte, header.Length)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
	return Frame{Name: header.Name, Body: body}, nil
}

// Decode unmarshals a frame body into v.
func (f Frame) Decode(v any) error {
	return json.Unmarshal(f.Body, v)
}
