// Package signal receives seat-selection datagrams from the chamber's
// console hardware and fans them out to in-process subscribers. A dropped
// signal never interrupts the proceeding: malformed or out-of-range payloads
// are logged and discarded here, at the boundary.
package signal

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"sabhahub/logging"
)

var ErrAlreadyRunning = errors.New("signal receiver already running")

// Handler is called with a validated seat number for every accepted signal.
type Handler func(seatNo int)

type Receiver struct {
	host    string
	port    int
	maxSeat int

	mu       sync.Mutex
	conn     *net.UDPConn
	running  bool
	handlers []Handler
	wg       sync.WaitGroup
}

func NewReceiver(host string, port, maxSeat int) *Receiver {
	return &Receiver{host: host, port: port, maxSeat: maxSeat}
}

// Subscribe registers a handler. Must be called before Start.
func (r *Receiver) Subscribe(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// Start binds the UDP socket and begins listening. Exactly one listener owns
// the address at a time; a second Start without an intervening Stop fails.
func (r *Receiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}

	addr := &net.UDPAddr{IP: net.ParseIP(r.host), Port: r.port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}

	r.conn = conn
	r.running = true
	r.wg.Add(1)
	go r.listen(conn)

	logging.Log.Infof("Signal receiver started on %s", conn.LocalAddr())
	return nil
}

// Stop tears the listener down completely: the socket is closed and the
// listen loop joined before Stop returns, so a restart can rebind the
// same address without leaking the transport.
func (r *Receiver) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	conn.Close()
	r.wg.Wait()
	logging.Log.Info("Signal receiver stopped")
}

// Addr reports the bound address while the receiver is running.
func (r *Receiver) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

func (r *Receiver) listen(conn *net.UDPConn) {
	defer r.wg.Done()
	buf := make([]byte, 1024)

	for {
		// Short read deadline so Stop is observed promptly.
		conn.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if !r.isRunning() {
					return
				}
				continue
			}
			if errors.Is(err, net.ErrClosed) || !r.isRunning() {
				return
			}
			logging.Log.Errorf("Signal receive error: %v", err)
			continue
		}

		r.dispatch(string(buf[:n]))
	}
}

func (r *Receiver) dispatch(payload string) {
	raw := strings.TrimSpace(payload)
	seatNo, err := strconv.Atoi(raw)
	if err != nil {
		logging.Log.WithField("payload", raw).Warn("Dropped undecodable seat signal")
		return
	}
	if seatNo < 1 || seatNo > r.maxSeat {
		logging.Log.WithField("seat_no", seatNo).Warn("Dropped out-of-range seat signal")
		return
	}

	logging.Log.Infof("Received seat signal: %d", seatNo)
	r.mu.Lock()
	handlers := make([]Handler, len(r.handlers))
	copy(handlers, r.handlers)
	r.mu.Unlock()
	for _, h := range handlers {
		h(seatNo)
	}
}

func (r *Receiver) isRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
