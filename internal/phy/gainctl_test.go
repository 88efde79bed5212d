package phy

import (
	"encoding/json"
	"net"
	"testing"
	"time"
)

// stubRadio is a loopback control port answering like the flowgraph.
type stubRadio struct {
	conn     *net.UDPConn
	commands chan command
}

func newStubRadio(t *testing.T) *stubRadio {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatal(err)
	}

	s := &stubRadio{conn: conn, commands: make(chan command, 16)}
	go s.serve()
	t.Cleanup(func() { conn.Close() })
	return s
}

func (s *stubRadio) serve() {
	buf := make([]byte, 512)
	for {
		n, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		var cmd command
		if json.Unmarshal(buf[:n], &cmd) != nil {
			continue
		}
		s.commands <- cmd
		if cmd.Cmd == "ping" {
			s.conn.WriteToUDP([]byte(`{"msg":"pong"}`), remote)
		}
	}
}

func (s *stubRadio) addr() string {
	return s.conn.LocalAddr().String()
}

func (s *stubRadio) next(t *testing.T) command {
	t.Helper()
	select {
	case cmd := <-s.commands:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("no command received")
		return command{}
	}
}

func TestSetGain(t *testing.T) {
	radio := newStubRadio(t)
	ctl, err := NewController(radio.addr(), time.Second)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctl.Close()

	if err := ctl.SetTXGain(0.55); err != nil {
		t.Fatalf("SetTXGain failed: %v", err)
	}
	cmd := radio.next(t)
	if cmd.Cmd != "set_tx_gain" || cmd.Value != 0.55 {
		t.Errorf("wire command = %+v", cmd)
	}

	if err := ctl.SetRXGain(0.3); err != nil {
		t.Fatalf("SetRXGain failed: %v", err)
	}
	cmd = radio.next(t)
	if cmd.Cmd != "set_rx_gain" || cmd.Value != 0.3 {
		t.Errorf("wire command = %+v", cmd)
	}
}

func TestPing(t *testing.T) {
	radio := newStubRadio(t)
	ctl, err := NewController(radio.addr(), time.Second)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctl.Close()

	if err := ctl.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestPingTimeout(t *testing.T) {
	// A bound but silent port: the ping goes out, nothing comes back.
	addr, _ := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	silent, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer silent.Close()

	ctl, err := NewController(silent.LocalAddr().String(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer ctl.Close()

	if err := ctl.Ping(); err != ErrNoPong {
		t.Errorf("expected ErrNoPong, got %v", err)
	}
}
