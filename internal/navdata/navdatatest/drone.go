package navdatatest

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Drone listens on a loopback UDP socket and answers like the drone's navdata port:
// it records request signals and sends frames back to whoever sent the last one.
type Drone struct {
	conn     net.PacketConn
	requests atomic.Int64

	mu   sync.Mutex
	peer net.Addr

	wg sync.WaitGroup
}

// NewDrone starts a drone on 127.0.0.1 and closes it when the test ends
func NewDrone(t testing.TB) *Drone {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("navdatatest: listen: %v", err)
	}

	d := &Drone{conn: conn}
	d.wg.Add(1)
	go d.serve()

	t.Cleanup(d.Close)
	return d
}

func (d *Drone) serve() {
	defer d.wg.Done()

	buf := make([]byte, 64)
	for {
		n, addr, err := d.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		if n == 1 && buf[0] == 1 {
			d.mu.Lock()
			d.peer = addr
			d.mu.Unlock()
			d.requests.Add(1)
		}
	}
}

func (d *Drone) Addr() net.Addr {
	return d.conn.LocalAddr()
}

// Requests returns how many request-telemetry signals were received
func (d *Drone) Requests() int64 {
	return d.requests.Load()
}

// WaitForRequests blocks until at least n requests arrived or timeout elapsed
func (d *Drone) WaitForRequests(n int64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if d.Requests() >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return d.Requests() >= n
}

// Send delivers a datagram to the last peer that requested telemetry
func (d *Drone) Send(frame []byte) error {
	d.mu.Lock()
	peer := d.peer
	d.mu.Unlock()

	if peer == nil {
		return errors.New("navdatatest: no telemetry request received yet")
	}

	_, err := d.conn.WriteTo(frame, peer)
	return err
}

func (d *Drone) Close() {
	_ = d.conn.Close()
	d.wg.Wait()
}
