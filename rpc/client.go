package inventoryrpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// RemoteError is a non-zero response code with its message.
type RemoteError struct {
	Code    int32
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

// Client sends one request at a time over a connection.
type Client struct {
	conn    net.Conn
	buf     PacketBuffer
	pending []*Packet
}

func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Call sends fn with arg and decodes the result into out.
func (c *Client) Call(ctx context.Context, fn string, arg, out any) error {
	req, id, err := NewRequest(fn, arg)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}
	if err := writePacket(c.conn, req); err != nil {
		return err
	}

	resp, err := c.await(id)
	if err != nil {
		return err
	}
	code, ok := resp.Code()
	if !ok {
		return errors.New("response without code")
	}
	if code != CodeOK {
		return &RemoteError{Code: code, Message: string(resp.B["error"])}
	}
	if out == nil {
		return nil
	}
	return msgpack.Unmarshal(resp.B["result"], out)
}

func (c *Client) await(id uuid.UUID) (*Packet, error) {
	chunk := make([]byte, 4096)
	for {
		for len(c.pending) > 0 {
			p := c.pending[0]
			c.pending = c.pending[1:]
			if got, ok := p.ID(); !ok || got == id {
				return p, nil
			}
		}
		n, err := c.conn.Read(chunk)
		if n > 0 {
			pkts, ferr := c.buf.Feed(chunk[:n])
			c.pending = append(c.pending, pkts...)
			if ferr != nil {
				return nil, ferr
			}
		}
		if err != nil && len(c.pending) == 0 {
			return nil, err
		}
	}
}
