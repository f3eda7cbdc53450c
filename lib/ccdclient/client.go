// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package ccdclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tel84/instruments/lib/netutil"
	"github.com/tel84/instruments/protocol"
)

// Defaults for Options fields left zero.
const (
	DefaultDialTimeout    = 5 * time.Second
	DefaultRequestTimeout = 5 * time.Second
)

// maxResponseLength bounds one response line. The longest legitimate
// response is an exposure token line.
const maxResponseLength = 1024

// Options configures a Client.
type Options struct {
	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration

	// RequestTimeout bounds one write plus the matching read. A
	// deadline on the call's context, if sooner, wins.
	RequestTimeout time.Duration

	// Logger receives connection lifecycle events at Debug. Defaults
	// to slog.Default().
	Logger *slog.Logger
}

// Client talks to one instrument server. Methods are safe for
// concurrent use; requests are sent one at a time.
type Client struct {
	address        string
	dialTimeout    time.Duration
	requestTimeout time.Duration
	logger         *slog.Logger

	mu         sync.Mutex
	connection net.Conn
	reader     *bufio.Reader
}

// New returns a Client for the server at address. No connection is
// made until the first request.
func New(address string, options Options) *Client {
	if options.DialTimeout <= 0 {
		options.DialTimeout = DefaultDialTimeout
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = DefaultRequestTimeout
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Client{
		address:        address,
		dialTimeout:    options.DialTimeout,
		requestTimeout: options.RequestTimeout,
		logger:         options.Logger.With("ccd_address", address),
	}
}

// Address returns the server address the client dials.
func (c *Client) Address() string {
	return c.address
}

// Do sends request and returns the raw response line without its
// terminator.
func (c *Client) Do(ctx context.Context, request protocol.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if c.connection == nil {
		if err := c.dialLocked(ctx); err != nil {
			return "", err
		}
	}

	response, err := c.exchangeLocked(ctx, request.String())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.dropLocked(ctxErr)
			return "", fmt.Errorf("%s: %w", request.Keyword, ctxErr)
		}
		c.dropLocked(err)
		return "", fmt.Errorf("%s: %w", request.Keyword, err)
	}
	return response, nil
}

func (c *Client) dialLocked(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	connection, err := dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.address, err)
	}
	c.connection = connection
	c.reader = bufio.NewReaderSize(connection, maxResponseLength)
	c.logger.Debug("connected to instrument server")
	return nil
}

func (c *Client) exchangeLocked(ctx context.Context, line string) (string, error) {
	deadline := time.Now().Add(c.requestTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	c.connection.SetDeadline(deadline)

	// Cancellation unblocks the read by expiring the deadline.
	connection := c.connection
	stop := context.AfterFunc(ctx, func() { connection.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	if _, err := io.WriteString(c.connection, line+"\n"); err != nil {
		return "", fmt.Errorf("writing request: %w", err)
	}

	response, err := c.reader.ReadSlice('\n')
	if err != nil {
		if err == bufio.ErrBufferFull {
			return "", fmt.Errorf("response longer than %d bytes", maxResponseLength)
		}
		return "", fmt.Errorf("reading response: %w", err)
	}
	return strings.TrimRight(string(response), "\r\n"), nil
}

func (c *Client) dropLocked(cause error) {
	if c.connection == nil {
		return
	}
	c.connection.Close()
	c.connection = nil
	c.reader = nil
	switch {
	case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
		c.logger.Debug("dropped instrument connection", "error", cause)
	case netutil.IsExpectedCloseError(cause):
		c.logger.Debug("instrument server closed the connection")
	default:
		c.logger.Warn("dropped instrument connection", "error", cause)
	}
}

// Close closes the current connection, if any. The client stays usable:
// the next request dials again.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connection == nil {
		return nil
	}
	err := c.connection.Close()
	c.connection = nil
	c.reader = nil
	return err
}

// Init sets the binning.
func (c *Client) Init(ctx context.Context, binX, binY int) error {
	response, err := c.Do(ctx, protocol.Request{Keyword: protocol.KeywordInit, BinX: binX, BinY: binY})
	if err != nil {
		return err
	}
	return protocol.DecodeReady(response)
}

// Expose starts an exposure and returns its token.
func (c *Client) Expose(ctx context.Context, seconds int) (string, error) {
	response, err := c.Do(ctx, protocol.Request{Keyword: protocol.KeywordExpose, Seconds: seconds})
	if err != nil {
		return "", err
	}
	return protocol.DecodeExposureID(response)
}

// Progress returns the progress of the exposure with token id.
func (c *Client) Progress(ctx context.Context, id string) (int, error) {
	response, err := c.Do(ctx, protocol.Request{Keyword: protocol.KeywordProgress, ExposureID: id})
	if err != nil {
		return 0, err
	}
	return protocol.DecodeProgress(response)
}

// Status returns the instrument status literal.
func (c *Client) Status(ctx context.Context) (string, error) {
	response, err := c.Do(ctx, protocol.Request{Keyword: protocol.KeywordStatus})
	if err != nil {
		return "", err
	}
	return protocol.DecodeStatus(response)
}

// Temperature returns the sensor reading in degrees Celsius.
func (c *Client) Temperature(ctx context.Context) (float64, error) {
	response, err := c.Do(ctx, protocol.Request{Keyword: protocol.KeywordTemp})
	if err != nil {
		return 0, err
	}
	return protocol.DecodeTemperature(response)
}
