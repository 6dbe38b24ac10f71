// Package ipc is the local control channel between ardomis-ctl and the
// running daemon: one JSON command per unix socket connection.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const (
	DefaultSocketPath = "/tmp/ardomis.sock"
	// SocketEnv overrides the socket path for both ends.
	SocketEnv = "CONTROL_SOCKET"
)

// SocketPath returns the socket named by SocketEnv, or the default.
func SocketPath() string {
	if p := os.Getenv(SocketEnv); p != "" {
		return p
	}
	return DefaultSocketPath
}

// Commands the daemon understands.
const (
	CmdWake  = "wake"
	CmdSleep = "sleep"
	CmdChime = "chime"
	CmdQuit  = "quit"
)

var Commands = []string{CmdWake, CmdSleep, CmdChime, CmdQuit}

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func Valid(cmd string) bool {
	for _, c := range Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// Serve listens on path until ctx is done, passing each valid command to
// handler. handler must not block.
func Serve(ctx context.Context, path string, handler func(ControlMessage)) error {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
		os.Remove(path)
	}()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				log.Warn("Control socket accept failed", "err", err)
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	log.Debug("Control socket listening", "path", path)
	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage)) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Debug("Bad control message", "err", err)
		return
	}

	reply := Reply{OK: true}
	if Valid(msg.Cmd) {
		handler(msg)
	} else {
		reply = Reply{Error: fmt.Sprintf("unknown command %q", msg.Cmd)}
	}
	_ = json.NewEncoder(conn).Encode(reply)
}

// SendCommand delivers cmd to the daemon at path and waits for its reply.
func SendCommand(path, cmd string) error {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if !reply.OK {
		return errors.New(reply.Error)
	}
	return nil
}
