package mcu

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/jmylchreest/lightsd/internal/metrics"
)

// RetryPolicy controls peer address resolution at startup.
type RetryPolicy struct {
	// Interval is the fixed wait between attempts
	Interval time.Duration
	// MaxAttempts of zero retries until the context is cancelled
	MaxAttempts int
}

// Options configures a Channel.
type Options struct {
	LocalAddress string
	LocalPort    int
	PeerHost     string
	PeerPort     int
	Retry        RetryPolicy
	QueueSize    int
}

// OptionsFromConfig maps the daemon's MCU config onto channel options.
func OptionsFromConfig(cfg config.MCUConfig) Options {
	return Options{
		LocalAddress: cfg.LocalAddress,
		LocalPort:    cfg.LocalPort,
		PeerHost:     cfg.PeerHost,
		PeerPort:     cfg.PeerPort,
		Retry: RetryPolicy{
			Interval:    cfg.ResolveInterval,
			MaxAttempts: cfg.ResolveMaxAttempts,
		},
		QueueSize: cfg.QueueSize,
	}
}

// lookupPeer resolves the MCU host to an IPv4 UDP address.
var lookupPeer = func(ctx context.Context, host string, port int) (*net.UDPAddr, error) {
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no IPv4 address for %s", host)
	}
	return net.UDPAddrFromAddrPort(netip.AddrPortFrom(addrs[0].Unmap(), uint16(port))), nil
}

// Channel is a fire-and-forget datagram link to the MCU. Frames are queued
// and written by a single goroutine so Send never blocks the caller.
type Channel struct {
	conn   *net.UDPConn
	peer   *net.UDPAddr
	queue  chan []byte
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Open resolves the peer (retrying per opts.Retry), binds the local socket
// with address reuse and starts the writer.
// Errors wrap ErrAddressResolution or ErrBindFailure.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Channel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Retry.Interval = config.ValidateResolveInterval(opts.Retry.Interval)
	opts.QueueSize = config.ValidateQueueSize(opts.QueueSize)

	peer, err := resolvePeer(ctx, opts, logger)
	if err != nil {
		return nil, errors.LogErrorAndReturn(logger, err, "mcu: resolve peer failed", "host", opts.PeerHost)
	}

	local := net.JoinHostPort(opts.LocalAddress, strconv.Itoa(opts.LocalPort))
	lc := net.ListenConfig{Control: reuseAddrControl}
	pc, err := lc.ListenPacket(ctx, "udp4", local)
	if err != nil {
		return nil, errors.LogErrorAndReturn(logger,
			errors.BindFailuref("bind %s: %v", local, err), "mcu: create socket failed", "local", local)
	}
	conn := pc.(*net.UDPConn)
	// send-only; no receive deadline
	_ = conn.SetReadDeadline(time.Time{})

	c := &Channel{
		conn:   conn,
		peer:   peer,
		queue:  make(chan []byte, opts.QueueSize),
		logger: logger,
	}
	c.wg.Go(c.run)

	logger.Info("mcu: link ready", "local", conn.LocalAddr().String(), "peer", peer.String())
	return c, nil
}

func resolvePeer(ctx context.Context, opts Options, logger *slog.Logger) (*net.UDPAddr, error) {
	for attempt := 1; ; attempt++ {
		peer, err := lookupPeer(ctx, opts.PeerHost, opts.PeerPort)
		if err == nil {
			return peer, nil
		}
		logger.Debug("mcu: peer not resolvable yet", "host", opts.PeerHost, "attempt", attempt, "error", err)

		if opts.Retry.MaxAttempts > 0 && attempt >= opts.Retry.MaxAttempts {
			return nil, errors.AddressResolutionf("%s after %d attempts: %v", opts.PeerHost, attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil, errors.AddressResolutionf("%s: %v", opts.PeerHost, ctx.Err())
		case <-time.After(opts.Retry.Interval):
		}
	}
}

// Send queues a frame for delivery. It never blocks and never fails: a full
// queue or a closed channel drops the frame with a log line.
func (c *Channel) Send(frame []byte) {
	buf := make([]byte, len(frame))
	copy(buf, frame)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		metrics.RecordFrame(metrics.FrameDropped)
		c.logger.Debug("mcu: link closed, dropping frame", "frame", ToHex(buf))
		return
	}

	select {
	case c.queue <- buf:
		metrics.RecordFrame(metrics.FrameQueued)
	default:
		metrics.RecordFrame(metrics.FrameDropped)
		c.logger.Warn("mcu: send queue full, dropping frame", "frame", ToHex(buf))
	}
}

func (c *Channel) run() {
	for frame := range c.queue {
		if _, err := c.conn.WriteToUDP(frame, c.peer); err != nil {
			metrics.RecordFrame(metrics.FrameFailed)
			c.logger.Warn("mcu: send packet failed",
				"peer", c.peer.String(), "error", errors.SendFailuref("%v", err))
			continue
		}
		metrics.RecordFrame(metrics.FrameSent)
		c.logger.Debug("mcu: frame sent", "frame", ToHex(frame))
	}
}

// LocalAddr returns the bound local address.
func (c *Channel) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// PeerAddr returns the resolved MCU address.
func (c *Channel) PeerAddr() *net.UDPAddr {
	return c.peer
}

// Close drains queued frames and releases the socket. Safe to call more than once.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.queue)
		c.mu.Unlock()

		c.wg.Wait()
		err = c.conn.Close()
	})
	return err
}
