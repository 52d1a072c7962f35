// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"io"
	"sync"
	"time"

	applog "audiointel/internal/log"
	"audiointel/internal/transport"
)

// PacketSender writes one datagram. *Sender is the production implementation.
type PacketSender interface {
	Send(data []byte) error
}

// Publisher is a transport that keeps the latest state message and sends it
// as a binary packet on every tick, decoupling the packet rate from the
// analysis rate. Ticks before the first state message send nothing.
type Publisher struct {
	sender   PacketSender
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	stateMu  sync.Mutex
	latest   transport.StateMessage
	hasState bool

	sequenceNum uint32
	packet      []byte
}

// NewPublisher wraps sender. Intervals <= 0 default to 16ms.
func NewPublisher(interval time.Duration, sender PacketSender) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("UDPPublisher: UDP sender cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}
	applog.Infof("UDPPublisher: Initializing (Interval: %s, Packet: %d bytes)", interval, PacketSize)

	return &Publisher{
		sender:   sender,
		interval: interval,
		now:      time.Now,
		packet:   make([]byte, 0, PacketSize),
	}, nil
}

// Send records the latest state message. Other messages are ignored.
func (p *Publisher) Send(data any) error {
	msg, ok := data.(transport.StateMessage)
	if !ok {
		return nil
	}
	p.stateMu.Lock()
	p.latest = msg
	p.hasState = true
	p.stateMu.Unlock()
	return nil
}

// Start launches the tick goroutine. Calling Start twice is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}
	ticker, doneChan := p.ticker, p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop ends the tick goroutine and waits for it. Safe to call repeatedly.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()
	p.wg.Wait()
	applog.Debugf("UDPPublisher: Publisher goroutine finished.")
}

// publish packs and sends the latest state. It reports whether a packet
// was sent.
func (p *Publisher) publish() bool {
	p.stateMu.Lock()
	if !p.hasState {
		p.stateMu.Unlock()
		return false
	}
	p.sequenceNum++
	pkt := NewPacket(p.sequenceNum, p.now().UnixNano(), &p.latest.State)
	p.stateMu.Unlock()

	p.packet = pkt.AppendBinary(p.packet[:0])
	if err := p.sender.Send(p.packet); err != nil {
		applog.Debugf("UDPPublisher: Packet %d dropped: %v", pkt.Sequence, err)
		return false
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", pkt.Sequence, len(p.packet))
	return true
}

// Close stops publishing and closes the sender when it is closable.
func (p *Publisher) Close() error {
	p.Stop()
	if c, ok := p.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ transport.Transport = (*Publisher)(nil)
