// Command asteroids-client is a minimal text-cell consumer of the server's
// wire protocol (spec §6). Rendering and input decoding are explicitly out
// of scope for the authoritative core (spec §1); this client exists so the
// protocol has a real, runnable counterpart.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/nova-ctrl/asteroids-arena/internal/clientio"
	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "server address, HOST:PORT")
	nameFlag := flag.String("name", "", "display name")
	flag.Parse()

	addr := *addrFlag
	if addr == "" {
		addr = net.JoinHostPort(config.DefaultHost, config.DefaultPort)
	}
	addr = config.GetEnv(config.AddrEnvVar, addr)

	name := *nameFlag
	if name == "" {
		name = "player"
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-client: connect %s: %v\n", addr, err)
		return 1
	}
	defer conn.Close()

	if err := protocol.WriteFrame(conn, protocol.Hello{Type: protocol.TypeHello, Name: name}); err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-client: handshake write: %v\n", err)
		return 1
	}

	payload, err := protocol.ReadFrame(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-client: handshake read: %v\n", err)
		return 1
	}
	var welcome protocol.Welcome
	if err := json.Unmarshal(payload, &welcome); err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-client: bad welcome frame: %v\n", err)
		return 1
	}

	restore, err := clientio.EnableRawMode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-client: %v\n", err)
		return 1
	}
	defer restore()
	defer clientio.ShowCursor(os.Stdout)
	clientio.HideCursor(os.Stdout)

	type incoming struct {
		state *protocol.State
		chat  *protocol.ChatOut
		bye   *protocol.Bye
		err   error
	}
	incomingCh := make(chan incoming, 8)
	go func() {
		for {
			payload, err := protocol.ReadFrame(conn)
			if err != nil {
				incomingCh <- incoming{err: err}
				return
			}
			env, err := protocol.DecodeEnvelope(payload)
			if err != nil {
				continue
			}
			switch env.Type {
			case protocol.TypeState:
				var st protocol.State
				if json.Unmarshal(payload, &st) == nil {
					incomingCh <- incoming{state: &st}
				}
			case protocol.TypeChatOut:
				var c protocol.ChatOut
				if json.Unmarshal(payload, &c) == nil {
					incomingCh <- incoming{chat: &c}
				}
			case protocol.TypeBye:
				var b protocol.Bye
				if json.Unmarshal(payload, &b) == nil {
					incomingCh <- incoming{bye: &b}
				}
				return
			}
		}
	}()

	keys := clientio.StartStream(os.Stdin)
	keyState := clientio.NewKeyState()
	grid := clientio.NewGrid(config.ArenaWidth, config.ArenaHeight)

	pollTicker := time.NewTicker(config.TickTime)
	defer pollTicker.Stop()

	var prevIntent clientio.Intent
	var chatLog []string
	const chatLogSize = 5

	for {
		select {
		case msg := <-incomingCh:
			switch {
			case msg.err != nil:
				return 0
			case msg.bye != nil:
				fmt.Fprintf(os.Stdout, "\r\ndisconnected: %s\r\n", msg.bye.Reason)
				return 0
			case msg.chat != nil:
				chatLog = append(chatLog, fmt.Sprintf("%s: %s", msg.chat.From, msg.chat.Text))
				if len(chatLog) > chatLogSize {
					chatLog = chatLog[len(chatLog)-chatLogSize:]
				}
			case msg.state != nil:
				clientio.Render(os.Stdout, grid, msg.state, welcome.PlayerID)
				for _, line := range chatLog {
					fmt.Fprint(os.Stdout, "\r\n", line)
				}
			}

		case <-pollTicker.C:
			intent := keys.Poll(keyState)
			if intent.Quit {
				return 0
			}
			for _, action := range clientio.Actions(prevIntent, intent) {
				_ = protocol.WriteFrame(conn, protocol.Input{Type: protocol.TypeInput, Action: action})
			}
			prevIntent = intent
		}
	}
}
