package hwtest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	files []types.TestFile
	fail  error
}

func (w *memWriter) WriteTestFile(f *types.TestFile) error {
	if w.fail != nil {
		return w.fail
	}
	cp := types.TestFile{Name: f.Name, Tests: append([]types.TestCase(nil), f.Tests...)}
	w.files = append(w.files, cp)
	return nil
}

func testCorpus() *types.Corpus {
	return &types.Corpus{Files: []*types.TestFile{
		{Name: "addi", Tests: []types.TestCase{
			{Instr: 0x38640001, Input: types.RegisterState{GPR: [4]uint32{1}}},
			{Instr: 0x38640002, Input: types.RegisterState{GPR: [4]uint32{2}}},
		}},
		{Name: "empty"},
		{Name: "fmr", Tests: []types.TestCase{
			{Instr: 0xFC601090, Input: types.RegisterState{FPR: [4]uint64{0x7FF4000000000000}}},
		}},
	}}
}

// reply builds the agent's answer to a request: r3 incremented, f4 copied from f1.
func reply(t *testing.T, req Packet) Packet {
	t.Helper()
	g, err := DecodeGeneralTest(req)
	require.NoError(t, err)
	g.State.GPR[0]++
	g.State.FPR[3] = g.State.FPR[0]
	return NewGeneralTestPacket(g)
}

func wire(pkts ...Packet) []byte {
	var buf bytes.Buffer
	for _, p := range pkts {
		buf.Write(p.Bytes())
	}
	return buf.Bytes()
}

func startStreaming(t *testing.T, corpus *types.Corpus, w CorpusWriter) (*Session, Packet) {
	t.Helper()
	s := NewSession(NewStreamer(corpus, w, ProtocolVersion), MaxPacketSize)
	out, err := s.Start()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, CmdVersion, out[0].Command)
	assert.Equal(t, StateAwaitingVersion, s.State())

	out, err = s.Feed(NewVersionPacket(ProtocolVersion).Bytes())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, StateStreaming, s.State())
	return s, out[0]
}

func TestDistributorStreamsWholeCorpus(t *testing.T) {
	corpus := testCorpus()
	w := &memWriter{}
	s, req := startStreaming(t, corpus, w)

	var sent []types.Instruction
	for s.State() == StateStreaming {
		g, err := DecodeGeneralTest(req)
		require.NoError(t, err)
		sent = append(sent, g.Instr)

		out, err := s.Feed(reply(t, req).Bytes())
		require.NoError(t, err)
		if len(out) == 0 {
			break
		}
		req = out[0]
	}

	assert.Equal(t, StateDraining, s.State())
	assert.True(t, s.Done())
	assert.Equal(t, []types.Instruction{0x38640001, 0x38640002, 0xFC601090}, sent)

	require.Len(t, w.files, 3)
	assert.Equal(t, []string{"addi", "empty", "fmr"}, []string{w.files[0].Name, w.files[1].Name, w.files[2].Name})
	assert.Equal(t, uint32(2), w.files[0].Tests[0].Output.GPR[0])
	assert.Equal(t, uint32(3), w.files[0].Tests[1].Output.GPR[0])
	assert.Equal(t, uint64(0x7FF4000000000000), w.files[2].Tests[0].Output.FPR[3])
	assert.Equal(t, corpus.Files[2].Tests[0].Output, w.files[2].Tests[0].Output)

	assert.Equal(t, 3, s.Stats.CasesSent)
	assert.Equal(t, 3, s.Stats.Replies)
	assert.Equal(t, 3, s.Stats.FilesPersisted)

	s.Close(nil)
	assert.Equal(t, StateClosed, s.State())
}

func TestFeedAtEveryBoundary(t *testing.T) {
	stream := wire(NewVersionPacket(ProtocolVersion))
	full := func() []Packet {
		s := NewSession(NewStreamer(testCorpus(), &memWriter{}, ProtocolVersion), MaxPacketSize)
		_, err := s.Start()
		require.NoError(t, err)
		out, err := s.Feed(stream)
		require.NoError(t, err)
		out2, err := s.Feed(reply(t, out[0]).Bytes())
		require.NoError(t, err)
		return append(out, out2...)
	}()
	require.Len(t, full, 2)

	first := reply(t, full[0]).Bytes()
	whole := append(append([]byte{}, stream...), first...)
	for split := 1; split < len(whole); split++ {
		s := NewSession(NewStreamer(testCorpus(), &memWriter{}, ProtocolVersion), MaxPacketSize)
		_, err := s.Start()
		require.NoError(t, err)

		var got []Packet
		out, err := s.Feed(whole[:split])
		require.NoError(t, err, "split %d", split)
		got = append(got, out...)
		if len(got) == 1 && split < len(stream) {
			t.Fatalf("split %d produced a packet before the version was complete", split)
		}
		if split >= len(stream) {
			// the reply depends on the first request, which is now known
			require.Len(t, got, 1)
		}
		out, err = s.Feed(whole[split:])
		require.NoError(t, err, "split %d", split)
		got = append(got, out...)
		assert.Equal(t, full, got, "split %d", split)
	}
}

func TestFeedByteByByte(t *testing.T) {
	s := NewSession(NewStreamer(testCorpus(), &memWriter{}, ProtocolVersion), MaxPacketSize)
	_, err := s.Start()
	require.NoError(t, err)

	var got []Packet
	for _, b := range NewVersionPacket(ProtocolVersion).Bytes() {
		out, err := s.Feed([]byte{b})
		require.NoError(t, err)
		got = append(got, out...)
	}
	require.Len(t, got, 1)
	g, err := DecodeGeneralTest(got[0])
	require.NoError(t, err)
	assert.Equal(t, types.Instruction(0x38640001), g.Instr)
}

func TestHeaderAndBodyEntryPoints(t *testing.T) {
	s := NewSession(NewStreamer(testCorpus(), &memWriter{}, ProtocolVersion), MaxPacketSize)
	_, err := s.Start()
	require.NoError(t, err)

	b := NewVersionPacket(ProtocolVersion).Bytes()
	n, err := s.OnHeaderBytes(b[:HeaderSize])
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	out, err := s.OnBodyBytes(b[HeaderSize:])
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = s.OnBodyBytes([]byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, hwerrors.ErrPMalformedPacket)
	assert.Equal(t, StateClosed, s.State())
}

func TestUnexpectedCommandsAreIgnored(t *testing.T) {
	w := &memWriter{}
	s := NewSession(NewStreamer(testCorpus(), w, ProtocolVersion), MaxPacketSize)
	_, err := s.Start()
	require.NoError(t, err)

	// a result before the handshake, an unknown command and a paired test
	early := NewGeneralTestPacket(GeneralTest{Instr: 0x38640001})
	unknown := Packet{Header: Header{Size: HeaderSize, Command: 99}}
	paired := Packet{Header: Header{Command: CmdExecutePairedTest}, Payload: []byte{1, 2, 3}}
	out, err := s.Feed(wire(early, unknown, paired))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, StateAwaitingVersion, s.State())
	assert.Equal(t, 2, s.Stats.Ignored)

	out, err = s.Feed(wire(NewVersionPacket(7)))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, StateStreaming, s.State())

	// a second version and a paired test while streaming change nothing
	out, err = s.Feed(wire(NewVersionPacket(1), paired))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, StateStreaming, s.State())
	assert.Empty(t, w.files)
}

func TestMalformedPacketClosesSession(t *testing.T) {
	s := NewSession(NewStreamer(testCorpus(), &memWriter{}, ProtocolVersion), MaxPacketSize)
	_, err := s.Start()
	require.NoError(t, err)

	_, err = s.Feed([]byte{0, 2, 0, 1})
	assert.ErrorIs(t, err, hwerrors.ErrPMalformedPacket)
	assert.Equal(t, StateClosed, s.State())

	_, err = s.Feed(NewVersionPacket(1).Bytes())
	assert.ErrorIs(t, err, hwerrors.ErrPSessionClosed)
}

func TestOversizedPacketClosesSession(t *testing.T) {
	s := NewSession(NewStreamer(testCorpus(), &memWriter{}, ProtocolVersion), 64)
	_, err := s.Start()
	require.NoError(t, err)

	_, err = s.Feed([]byte{0x10, 0x00, 0x00, 0x63})
	assert.ErrorIs(t, err, hwerrors.ErrPPacketTooLarge)
	assert.Equal(t, StateClosed, s.State())
}

func TestReplyMismatchClosesSession(t *testing.T) {
	w := &memWriter{}
	s, _ := startStreaming(t, testCorpus(), w)

	_, err := s.Feed(NewGeneralTestPacket(GeneralTest{Instr: 0x7C000214}).Bytes())
	assert.ErrorIs(t, err, hwerrors.ErrPReplyMismatch)
	assert.Equal(t, StateClosed, s.State())
	assert.Empty(t, w.files)
}

func TestCloseMidFileDiscardsPartialFile(t *testing.T) {
	w := &memWriter{}
	corpus := testCorpus()
	s, req := startStreaming(t, corpus, w)

	_, err := s.Feed(reply(t, req).Bytes())
	require.NoError(t, err)
	s.Close(errors.New("peer went away"))

	assert.Equal(t, StateClosed, s.State())
	assert.Empty(t, w.files)
	_, err = s.Feed(reply(t, req).Bytes())
	assert.ErrorIs(t, err, hwerrors.ErrPSessionClosed)
}

func TestEmptyCorpusDrainsAfterVersion(t *testing.T) {
	s := NewSession(NewStreamer(&types.Corpus{}, &memWriter{}, ProtocolVersion), MaxPacketSize)
	_, err := s.Start()
	require.NoError(t, err)
	out, err := s.Feed(NewVersionPacket(ProtocolVersion).Bytes())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, StateDraining, s.State())
}

func TestWriterFailureClosesSession(t *testing.T) {
	boom := errors.New("disk full")
	corpus := &types.Corpus{Files: []*types.TestFile{{Name: "empty"}}}
	s := NewSession(NewStreamer(corpus, &memWriter{fail: boom}, ProtocolVersion), MaxPacketSize)
	_, err := s.Start()
	require.NoError(t, err)
	_, err = s.Feed(NewVersionPacket(ProtocolVersion).Bytes())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateClosed, s.State())
}
