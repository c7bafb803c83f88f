package hwtest

import (
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	pkgerrors "github.com/pkg/errors"
)

const readBufferSize = 4096

// pump drives s over conn until the session is done or the connection fails.
// A zero timeout waits for the peer indefinitely.
func pump(conn net.Conn, s *Session, timeout time.Duration) error {
	out, err := s.Start()
	if err != nil {
		return err
	}
	if err := send(conn, out); err != nil {
		s.Close(err)
		return err
	}

	buf := make([]byte, readBufferSize)
	for !s.Done() {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				if peerGone(err) {
					s.Close(nil)
					return nil
				}
				s.Close(err)
				return err
			}
		}
		n, readErr := conn.Read(buf)
		if n > 0 {
			out, err := s.Feed(buf[:n])
			if sendErr := send(conn, out); sendErr != nil && err == nil {
				err = sendErr
			}
			if err != nil {
				s.Close(err)
				return err
			}
		}
		if readErr != nil {
			if peerGone(readErr) {
				s.Close(nil)
				return nil
			}
			if errors.Is(readErr, os.ErrDeadlineExceeded) {
				readErr = pkgerrors.Wrapf(hwerrors.ErrPReplyTimeout, "no data for %v", timeout)
			}
			s.Close(readErr)
			return readErr
		}
	}
	s.Close(nil)
	return nil
}

// peerGone reports whether err means the peer hung up rather than failed.
func peerGone(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}

func send(conn net.Conn, pkts []Packet) error {
	for _, p := range pkts {
		if _, err := conn.Write(p.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
