package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote Shell service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to addr without TLS. Extra options are applied after the
// defaults.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Exec(ctx context.Context, cmd string) (*ExecResponse, error) {
	out := new(ExecResponse)
	if err := c.conn.Invoke(ctx, execMethod, &ExecRequest{Cmd: cmd}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Translate(ctx context.Context, text string) (*TranslateResponse, error) {
	out := new(TranslateResponse)
	if err := c.conn.Invoke(ctx, translateMethod, &TranslateRequest{Text: text}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
