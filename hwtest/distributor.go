package hwtest

import (
	"net"
	"sync"
	"time"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
)

// Options tune both ends of a session.
type Options struct {
	Version       uint32
	MaxPacketSize int
	ReplyTimeout  time.Duration // 0 waits forever
}

// DefaultOptions match the reference hardware client.
func DefaultOptions() Options {
	return Options{Version: ProtocolVersion, MaxPacketSize: MaxPacketSize, ReplyTimeout: 30 * time.Second}
}

// Distributor owns a corpus and streams it to agents that connect. Only one
// session may hold the corpus at a time; later connections are refused
// until it is released. Every session restarts from the first file.
type Distributor struct {
	corpus *types.Corpus
	writer CorpusWriter
	opts   Options

	mu       sync.Mutex
	busy     bool
	listener net.Listener
	wg       sync.WaitGroup

	// Finished receives the stats of every session that ran, if non-nil.
	// Stats are dropped when nobody is ready to receive them.
	Finished chan SessionStats
}

func NewDistributor(corpus *types.Corpus, writer CorpusWriter, opts Options) *Distributor {
	return &Distributor{corpus: corpus, writer: writer, opts: opts}
}

// ListenAndServe listens on the TCP address addr and serves until Stop.
func (d *Distributor) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return d.Serve(l)
}

// Serve accepts connections on l, one goroutine per connection, until the
// listener is closed.
func (d *Distributor) Serve(l net.Listener) error {
	d.mu.Lock()
	d.listener = l
	d.mu.Unlock()
	log.Info(log.HwTest, "distributor listening", "addr", l.Addr().String(),
		"files", len(d.corpus.Files), "cases", d.corpus.NumCases())

	for {
		conn, err := l.Accept()
		if err != nil {
			return nil // Listener was closed.
		}
		log.Info(log.HwTest, "new connection accepted", "peer", conn.RemoteAddr().String())
		d.wg.Add(1)
		go d.handleConnection(conn)
	}
}

// Stop closes the listener and waits for running sessions to end.
func (d *Distributor) Stop() {
	d.mu.Lock()
	l := d.listener
	d.mu.Unlock()
	if l != nil {
		l.Close()
	}
	d.wg.Wait()
	log.Info(log.HwTest, "distributor stopped")
}

func (d *Distributor) handleConnection(conn net.Conn) {
	defer d.wg.Done()
	stats, err := d.ServeConn(conn)
	if err != nil {
		log.Error(log.HwTest, "session ended with error", "peer", conn.RemoteAddr().String(), "err", err)
	}
	if d.Finished != nil {
		select {
		case d.Finished <- stats:
		default:
			log.Debug(log.HwTest, "session stats dropped", "peer", conn.RemoteAddr().String())
		}
	}
}

// ServeConn runs one distributor session on conn and closes it.
func (d *Distributor) ServeConn(conn net.Conn) (SessionStats, error) {
	defer conn.Close()
	if !d.acquire() {
		return SessionStats{}, hwerrors.ErrPCorpusBusy
	}
	defer d.release()

	s := NewSession(NewStreamer(d.corpus, d.writer, d.opts.Version), d.opts.MaxPacketSize)
	err := pump(conn, s, d.opts.ReplyTimeout)
	log.Info(log.HwTest, "session closed", "peer", conn.RemoteAddr().String(), "stats", s.Stats.DumpMetrics())
	return s.Stats, err
}

func (d *Distributor) acquire() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return false
	}
	d.busy = true
	return true
}

func (d *Distributor) release() {
	d.mu.Lock()
	d.busy = false
	d.mu.Unlock()
}
