package host

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"ttsbridge/internal/microservices/tcp"

	"github.com/stretchr/testify/suite"
)

// RelaySuite wires real sockets: a fake TTS engine on the send port, the
// inbound listener on the receive port, and the host dispatch loop.
type RelaySuite struct {
	suite.Suite
	app      *App
	cancel   context.CancelFunc
	engine   net.Listener
	received chan string
	bridge   *Bridge
	events   chan Event
	recvAddr string
	recvPort int
	sendPort int
}

func (s *RelaySuite) SetupTest() {
	s.app = New(16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.app.Run(ctx)

	s.events = make(chan Event, 16)
	s.app.Listen(tcp.EventTTSMessage, func(ev Event) { s.events <- ev })

	// fake TTS engine: records every connection's payload
	engine, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.engine = engine
	s.received = make(chan string, 16)
	go func() {
		for {
			conn, err := engine.Accept()
			if err != nil {
				return
			}
			data, _ := io.ReadAll(conn)
			conn.Close()
			if len(data) > 0 {
				s.received <- string(data)
			}
		}
	}()
	s.sendPort = engine.Addr().(*net.TCPAddr).Port

	// reserve a receive port, then hand it to the listener group
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.recvAddr = probe.Addr().String()
	s.recvPort = probe.Addr().(*net.TCPAddr).Port
	s.Require().NoError(probe.Close())

	s.bridge = &Bridge{
		Sender:  tcp.NewSender(engine.Addr().String(), nil),
		Checker: tcp.NewChecker("127.0.0.1", s.sendPort, s.recvPort, time.Second, nil),
		Listeners: NewListenerGroup(func() TTSListener {
			return tcp.NewListener(s.recvAddr, s.app, tcp.ListenerOptions{MaxMessageSize: 1 << 20})
		}),
	}
	s.bridge.RegisterCommands(s.app)
	s.Require().NoError(s.bridge.Listeners.Start())
}

func (s *RelaySuite) TearDownTest() {
	s.bridge.Listeners.StopAll()
	s.engine.Close()
	s.cancel()
	s.app.Close()
}

func (s *RelaySuite) invoke(name, args string) (any, error) {
	var raw json.RawMessage
	if args != "" {
		raw = json.RawMessage(args)
	}
	return s.app.Invoke(context.Background(), name, raw)
}

func (s *RelaySuite) TestOutboundReachesEngine() {
	_, err := s.invoke(CmdSendToTTS, `{"message":"{\"messageID\":1}"}`)
	s.Require().NoError(err)

	select {
	case got := <-s.received:
		s.Equal(`{"messageID":1}`, got)
	case <-time.After(2 * time.Second):
		s.Fail("engine never received the message")
	}
}

func (s *RelaySuite) TestInboundBecomesHostEvent() {
	conn, err := net.Dial("tcp", s.recvAddr)
	s.Require().NoError(err)
	_, err = conn.Write([]byte("hello"))
	s.Require().NoError(err)
	s.Require().NoError(conn.Close())

	select {
	case ev := <-s.events:
		s.Equal(tcp.EventTTSMessage, ev.Name)
		s.Equal("hello", ev.Payload)
	case <-time.After(2 * time.Second):
		s.Fail("no tts-message event")
	}

	select {
	case ev := <-s.events:
		s.Failf("extra event", "payload %q", ev.Payload)
	case <-time.After(150 * time.Millisecond):
	}
}

func (s *RelaySuite) TestHealthCheckSeesBothPorts() {
	res, err := s.invoke(CmdCheckTTSConnections, "")
	s.Require().NoError(err)

	report := res.(tcp.ConnectionReport)
	s.True(report.Connected(), "send=%s receive=%s", report.SendPort, report.ReceivePort)
	s.Contains(report.SendPort, strconv.Itoa(s.sendPort))
	s.Contains(report.ReceivePort, strconv.Itoa(s.recvPort))

	// the probe must not surface as a message
	select {
	case ev := <-s.events:
		s.Failf("probe produced an event", "payload %q", ev.Payload)
	case <-time.After(150 * time.Millisecond):
	}
}

func (s *RelaySuite) TestRestartListenerFails() {
	_, err := s.invoke(CmdStartTTSListener, "")
	s.Error(err)
	s.Equal(1, s.bridge.Listeners.Running())
}

func (s *RelaySuite) TestEngineDown() {
	s.engine.Close()

	_, err := s.invoke(CmdSendToTTS, `{"message":"x"}`)
	s.ErrorIs(err, tcp.ErrConnect)

	res, err := s.invoke(CmdCheckTTSConnections, "")
	s.Require().NoError(err)
	report := res.(tcp.ConnectionReport)
	s.False(report.SendOK)
	s.True(report.ReceiveOK)
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}
