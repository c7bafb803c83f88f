package hwtest

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doubler is an Executor that doubles r3 and rejects one encoding.
type doubler struct{ reject types.Instruction }

func (doubler) Name() string { return "doubler" }

func (d doubler) Execute(instr types.Instruction, in types.RegisterState) (types.RegisterState, error) {
	if instr == d.reject {
		return in, hwerrors.ErrEUnsupportedInstruction
	}
	out := in
	out.GPR[0] *= 2
	return out, nil
}

func fastOptions() Options {
	opts := DefaultOptions()
	opts.ReplyTimeout = 5 * time.Second
	return opts
}

func TestDistributorAndAgentOverPipe(t *testing.T) {
	corpus := testCorpus()
	w := &memWriter{}
	dist := NewDistributor(corpus, w, fastOptions())
	agent := NewAgent(doubler{reject: 0xFC601090}, fastOptions())

	server, client := net.Pipe()
	var (
		wg         sync.WaitGroup
		agentStats SessionStats
		agentErr   error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		agentStats, agentErr = agent.RunConn(client)
	}()

	stats, err := dist.ServeConn(server)
	require.NoError(t, err)
	wg.Wait()
	require.NoError(t, agentErr)

	assert.Equal(t, 3, stats.CasesSent)
	assert.Equal(t, 3, stats.Replies)
	assert.Equal(t, 3, stats.FilesPersisted)
	assert.Equal(t, 3, agentStats.Replies)
	assert.Equal(t, 1, agentStats.ExecErrors)

	require.Len(t, w.files, 3)
	assert.Equal(t, uint32(2), w.files[0].Tests[0].Output.GPR[0])
	assert.Equal(t, uint32(4), w.files[0].Tests[1].Output.GPR[0])
	// rejected case echoes its input
	assert.Equal(t, corpus.Files[2].Tests[0].Input, w.files[2].Tests[0].Output)
}

func TestDistributorRefusesSecondSession(t *testing.T) {
	dist := NewDistributor(testCorpus(), &memWriter{}, fastOptions())

	first, firstPeer := net.Pipe()
	done := make(chan error, 1)
	go func() {
		_, err := dist.ServeConn(first)
		done <- err
	}()

	// wait for the version packet so the first session holds the corpus
	buf := make([]byte, VersionPacketSize)
	_, err := firstPeer.Read(buf)
	require.NoError(t, err)

	second, secondPeer := net.Pipe()
	defer secondPeer.Close()
	_, err = dist.ServeConn(second)
	assert.ErrorIs(t, err, hwerrors.ErrPCorpusBusy)

	firstPeer.Close()
	require.NoError(t, <-done)

	// the corpus is free again
	third, thirdPeer := net.Pipe()
	go func() {
		_, err := NewAgent(doubler{}, fastOptions()).RunConn(thirdPeer)
		assert.NoError(t, err)
	}()
	stats, err := dist.ServeConn(third)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesPersisted)
}

func TestReplyTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.ReplyTimeout = 50 * time.Millisecond
	w := &memWriter{}
	dist := NewDistributor(testCorpus(), w, opts)

	server, client := net.Pipe()
	defer client.Close()
	go func() {
		// complete the handshake, then go silent
		buf := make([]byte, 256)
		if _, err := client.Read(buf); err != nil {
			return
		}
		if _, err := client.Write(NewVersionPacket(ProtocolVersion).Bytes()); err != nil {
			return
		}
		client.Read(buf)
	}()

	stats, err := dist.ServeConn(server)
	assert.ErrorIs(t, err, hwerrors.ErrPReplyTimeout)
	assert.Equal(t, 1, stats.CasesSent)
	assert.Equal(t, 0, stats.Replies)
	assert.Empty(t, w.files)
}

func TestDistributorOverTCP(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	w := &memWriter{}
	dist := NewDistributor(testCorpus(), w, fastOptions())
	dist.Finished = make(chan SessionStats, 1)
	go dist.Serve(l)
	defer dist.Stop()

	agent := NewAgent(doubler{}, fastOptions())
	require.NoError(t, agent.Connect(l.Addr().String()))
	defer agent.Close()
	agentStats, err := agent.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, agentStats.Replies)

	select {
	case stats := <-dist.Finished:
		assert.Equal(t, 3, stats.FilesPersisted)
	case <-time.After(5 * time.Second):
		t.Fatal("distributor session did not finish")
	}
	assert.Len(t, w.files, 3)
}

// hungUpConn reports a closed pipe when the deadline is armed, as net.Pipe
// does once the peer has gone.
type hungUpConn struct{ net.Conn }

func (hungUpConn) SetReadDeadline(time.Time) error { return io.ErrClosedPipe }

func TestPeerHangupBeforeDeadlineIsClean(t *testing.T) {
	w := &memWriter{}
	dist := NewDistributor(testCorpus(), w, fastOptions())

	server, client := net.Pipe()
	defer client.Close()
	go func() {
		buf := make([]byte, VersionPacketSize)
		client.Read(buf)
	}()

	stats, err := dist.ServeConn(hungUpConn{server})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CasesSent)
	assert.Empty(t, w.files)
}

func TestPeerGone(t *testing.T) {
	assert.True(t, peerGone(io.EOF))
	assert.True(t, peerGone(io.ErrClosedPipe))
	assert.True(t, peerGone(fmt.Errorf("read tcp: %w", net.ErrClosed)))
	assert.False(t, peerGone(os.ErrDeadlineExceeded))
	assert.False(t, peerGone(hwerrors.ErrPMalformedPacket))
}

func TestUndrainedFinishedDoesNotBlockStop(t *testing.T) {
	dist := NewDistributor(testCorpus(), &memWriter{}, fastOptions())
	dist.Finished = make(chan SessionStats)

	server, client := net.Pipe()
	client.Close()

	done := make(chan struct{})
	dist.wg.Add(1)
	go func() {
		dist.handleConnection(server)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConnection blocked on Finished")
	}
	dist.Stop()
}
