// Package phy talks to the radio front end over its UDP control side
// channel. The channel carries small JSON commands: gain changes and a
// ping/pong liveness probe.
package phy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// Control errors.
var (
	// ErrNoPong is returned when the radio does not answer a ping within
	// the control timeout.
	ErrNoPong = errors.New("phy: no pong from radio")
)

// command is the wire shape of a control message.
type command struct {
	Cmd   string  `json:"cmd"`
	Value float64 `json:"value,omitempty"`
}

// pongReply is the radio's answer to a ping.
type pongReply struct {
	Msg string `json:"msg"`
}

// Controller is a client for the radio's UDP control port.
type Controller struct {
	conn    *net.UDPConn
	timeout time.Duration
}

// NewController connects to the control port at addr.
func NewController(addr string, timeout time.Duration) (*Controller, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("phy: resolve control address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("phy: dial control port: %w", err)
	}
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	return &Controller{conn: conn, timeout: timeout}, nil
}

// SetTXGain sets the transmit gain (normalized 0..1).
func (c *Controller) SetTXGain(value float64) error {
	return c.sendCommand(command{Cmd: "set_tx_gain", Value: value})
}

// SetRXGain sets the receive gain (normalized 0..1).
func (c *Controller) SetRXGain(value float64) error {
	return c.sendCommand(command{Cmd: "set_rx_gain", Value: value})
}

// Ping probes the control port and waits for the pong reply.
func (c *Controller) Ping() error {
	if err := c.sendCommand(command{Cmd: "ping"}); err != nil {
		return err
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("phy: set control deadline: %w", err)
	}
	buf := make([]byte, 256)
	n, err := c.conn.Read(buf)
	if err != nil {
		return ErrNoPong
	}

	var reply pongReply
	if err := json.Unmarshal(buf[:n], &reply); err != nil || reply.Msg != "pong" {
		return ErrNoPong
	}
	return nil
}

// Close closes the control connection.
func (c *Controller) Close() error {
	return c.conn.Close()
}

func (c *Controller) sendCommand(cmd command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("phy: encode control command: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("phy: send control command: %w", err)
	}
	return nil
}
