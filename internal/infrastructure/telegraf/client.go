package telegraf

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"homiegraf/internal/infrastructure/config"
)

// Default timeouts for socket operations.
const (
	defaultDialTimeout  = 10 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// Client writes InfluxDB line protocol records to a telegraf
// socket_listener input over UDP or TCP.
//
// UDP records are sent immediately, one datagram per record, so a record
// never straddles a datagram boundary. TCP records are batched internally
// and flushed either when the batch reaches the configured size or when
// the flush interval timer fires; the flush is a single write of
// newline-delimited lines.
//
// Write failures are reported through the error callback and the affected
// records are dropped; the pipeline is never blocked on a slow or dead
// collector. On TCP the connection is re-dialled on the next flush.
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	transport string
	addr      string

	conn   net.Conn
	connMu sync.Mutex

	connected bool
	mu        sync.RWMutex

	// Batching (TCP only)
	batch     []string
	batchMu   sync.Mutex
	batchSize int
	flushTick *time.Ticker
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	// Error callback for async write failures.
	onError func(err error)
}

// Connect dials the telegraf socket listener.
//
// For UDP the "connection" only resolves the remote address; delivery
// failures surface per-write, as usual for datagrams. For TCP the dial
// verifies the listener is reachable.
func Connect(cfg config.TelegrafConfig) (*Client, error) {
	if cfg.Transport != "udp" && cfg.Transport != "tcp" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransport, cfg.Transport)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 1
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := net.DialTimeout(cfg.Transport, addr, defaultDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		transport: cfg.Transport,
		addr:      addr,
		conn:      conn,
		connected: true,
		batch:     make([]string, 0, batchSize),
		batchSize: batchSize,
		flushTick: time.NewTicker(time.Duration(flushInterval) * time.Second),
		done:      make(chan struct{}),
	}

	c.wg.Add(1)
	go c.flushLoop()

	return c, nil
}

// flushLoop periodically flushes the batch on timer or when done is signalled.
func (c *Client) flushLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.flushTick.C:
			c.Flush()
		case <-c.done:
			return
		}
	}
}

// WriteRecord queues one newline-terminated line protocol record.
//
// The write is non-blocking: UDP sends the datagram right away, TCP adds
// the record to the batch and triggers a flush when the batch is full.
func (c *Client) WriteRecord(line string) {
	if !c.IsConnected() {
		return
	}

	if c.transport == "udp" {
		c.sendDatagram(line)
		return
	}

	c.batchMu.Lock()
	c.batch = append(c.batch, line)
	shouldFlush := len(c.batch) >= c.batchSize
	c.batchMu.Unlock()

	if shouldFlush {
		c.Flush()
	}
}

// sendDatagram writes one record as a single UDP datagram.
func (c *Client) sendDatagram(line string) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.reportError(fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
}

// Flush sends all pending TCP records in one write.
//
// Called automatically by the flush timer and when the batch is full; can
// also be called manually before shutdown. On failure the batch is
// dropped, the error reported, and the connection re-dialled lazily.
func (c *Client) Flush() {
	if c.transport != "tcp" {
		return
	}

	c.batchMu.Lock()
	if len(c.batch) == 0 {
		c.batchMu.Unlock()
		return
	}
	// Swap batch out under lock
	lines := c.batch
	c.batch = make([]string, 0, c.batchSize)
	c.batchMu.Unlock()

	// Records are newline-terminated already.
	body := []byte(strings.Join(lines, ""))

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		if !c.redialLocked() {
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if _, err := c.conn.Write(body); err != nil {
		c.reportError(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		// Drop the connection; the next flush re-dials.
		_ = c.conn.Close()
		c.conn = nil
	}
}

// redialLocked re-establishes the TCP connection after a write failure.
// Caller must hold connMu. Returns true if a connection is available.
func (c *Client) redialLocked() bool {
	conn, err := net.DialTimeout(c.transport, c.addr, defaultDialTimeout)
	if err != nil {
		c.reportError(fmt.Errorf("%w: %w", ErrConnectionFailed, err))
		return false
	}
	c.conn = conn
	return true
}

// Close gracefully shuts down the socket client: stops the flush timer,
// flushes any remaining batched records, and closes the connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		c.flushTick.Stop()
		close(c.done)
		c.wg.Wait()

		c.Flush()

		c.connMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()
	})

	return nil
}

// HealthCheck verifies the client is usable.
//
// UDP sockets cannot be probed without sending data, so this reflects
// dial-time state plus liveness of the connection handle.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("telegraf health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetOnError sets a callback invoked when async write errors occur.
//
// Since writes are fire-and-forget, errors are delivered via this
// callback rather than returned from WriteRecord.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// reportError delivers an error to the onError callback if set.
func (c *Client) reportError(err error) {
	c.mu.RLock()
	callback := c.onError
	c.mu.RUnlock()

	if callback != nil {
		callback(err)
	}
}
