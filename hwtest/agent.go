package hwtest

import (
	"fmt"
	"net"

	"github.com/MoochMcGee/wiiu-emu/cpu"
	"github.com/MoochMcGee/wiiu-emu/log"
)

// Agent connects to a distributor and executes every case it is sent.
type Agent struct {
	exec cpu.Executor
	opts Options
	conn net.Conn
}

func NewAgent(exec cpu.Executor, opts Options) *Agent {
	return &Agent{exec: exec, opts: opts}
}

// Connect establishes the TCP connection to the distributor.
func (a *Agent) Connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to distributor %s: %w", addr, err)
	}
	a.conn = conn
	return nil
}

// Run serves the connected distributor until it disconnects.
func (a *Agent) Run() (SessionStats, error) {
	if a.conn == nil {
		return SessionStats{}, fmt.Errorf("agent is not connected")
	}
	return a.RunConn(a.conn)
}

// RunConn serves one distributor session over conn. The agent waits for
// requests without a deadline.
func (a *Agent) RunConn(conn net.Conn) (SessionStats, error) {
	s := NewSession(NewResponder(a.exec, a.opts.Version), a.opts.MaxPacketSize)
	err := pump(conn, s, 0)
	log.Info(log.HwTest, "agent finished", "engine", a.exec.Name(), "stats", s.Stats.DumpMetrics())
	return s.Stats, err
}

// Close terminates the connection to the distributor.
func (a *Agent) Close() error {
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
