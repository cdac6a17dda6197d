package replex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeDeadline = 2 * time.Second
	readDeadline  = 2 * time.Second
)

var upgrader = websocket.Upgrader{}

// WSTransport is a Transport over a single gorilla websocket connection.
// Reads and writes are serialized through semaphore channels rather than a
// mutex, since *websocket.Conn permits only one concurrent reader and one
// concurrent writer.
type WSTransport struct {
	conn     *websocket.Conn
	readSem  chan struct{}
	writeSem chan struct{}
}

func newWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{
		conn:     conn,
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
	}
}

// DialTransport connects to a peer replica's exchange endpoint as the
// client side of the rendezvous.
func DialTransport(url string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("replex: dial %s: %w", url, err)
	}
	return newWSTransport(conn), nil
}

// AcceptTransport upgrades an incoming HTTP request to the server side of
// the rendezvous.
func AcceptTransport(w http.ResponseWriter, r *http.Request) (*WSTransport, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("replex: upgrade: %w", err)
	}
	return newWSTransport(conn), nil
}

// RequestExchange writes local and reads the peer's reply, serialized so
// that concurrent exchange rounds (there should never be more than one in
// flight, but the driver's caller is not required to enforce that) never
// interleave reads or writes on the same connection.
func (t *WSTransport) RequestExchange(ctx context.Context, local ExchangeInfo) (ExchangeInfo, error) {
	if err := t.write(ctx, local); err != nil {
		return ExchangeInfo{}, err
	}
	return t.read(ctx)
}

func (t *WSTransport) write(ctx context.Context, info ExchangeInfo) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case t.writeSem <- struct{}{}:
		defer func() { <-t.writeSem }()
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return fmt.Errorf("replex: set write deadline: %w", err)
	}
	if err := t.conn.WriteJSON(info); err != nil {
		return fmt.Errorf("replex: write: %w", err)
	}
	return nil
}

func (t *WSTransport) read(ctx context.Context) (ExchangeInfo, error) {
	select {
	case <-ctx.Done():
		return ExchangeInfo{}, ctx.Err()
	case t.readSem <- struct{}{}:
		defer func() { <-t.readSem }()
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return ExchangeInfo{}, fmt.Errorf("replex: set read deadline: %w", err)
	}
	var info ExchangeInfo
	if err := t.conn.ReadJSON(&info); err != nil {
		return ExchangeInfo{}, fmt.Errorf("replex: read: %w", err)
	}
	return info, nil
}

func (t *WSTransport) Close() error {
	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return t.conn.Close()
}
