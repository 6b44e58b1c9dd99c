package inventoryrpc

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

type Server struct {
	dispatcher *Dispatcher
	logger     *logrus.Logger
	wg         sync.WaitGroup
}

func NewServer(d *Dispatcher, logger *logrus.Logger) *Server {
	return &Server{dispatcher: d, logger: logger}
}

// Serve accepts connections until ctx is cancelled or the listener fails,
// then waits for open connections to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	defer s.wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(ctx, conn)
		}()
	}
}

// ServeConn answers requests on one connection in arrival order.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	log := s.logger.WithFields(logrus.Fields{"module": "rpc", "remote": conn.RemoteAddr().String()})
	var pb PacketBuffer
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			pkts, ferr := pb.Feed(chunk[:n])
			for _, req := range pkts {
				resp := s.dispatcher.Process(ctx, req)
				if code, _ := resp.Code(); code != CodeOK {
					log.WithFields(logrus.Fields{"fn": req.Func(), "code": code}).Warn(string(resp.B["error"]))
				}
				if werr := writePacket(conn, resp); werr != nil {
					log.WithError(werr).Error("write response")
					return
				}
			}
			if ferr != nil {
				log.WithError(ferr).Error("malformed packet")
				writePacket(conn, errorResponse(nil, CodeBadRequest, ferr.Error()))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				log.WithError(err).Error("read")
			}
			return
		}
	}
}

func writePacket(w io.Writer, p *Packet) error {
	b, err := msgpack.Marshal(p)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
