// Package httpconfig implements configsurface.Surface as a cooperative
// HTTP responder: a single net.Listener accepted in non-blocking mode,
// one connection served per Poll() call, so it never blocks the main
// loop longer than one request's handling time. This mirrors the
// original firmware's ESP8266WebServer.handleClient() cooperative
// model, which serves at most one pending request per call rather
// than running its own accept loop.
package httpconfig

import (
	"bufio"
	"bytes"
	"html/template"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/nilswitch/rcbridge/internal/configsurface"
)

// Status is the snapshot rendered on the "/" page: pairing state,
// peer address, channel, and link quality, matching the original's
// json["peer.addr"] status field and the ${xxx} substitution points
// of its index.html.
type Status struct {
	Paired      bool
	PeerAddr    string
	Channel     uint8
	LinkQuality float64
}

// StatusProvider is called fresh on every "/" request; bound by the
// caller to read live state off a bridge.Core (via its Sender or
// Receiver role) without httpconfig importing internal/bridge.
type StatusProvider func() Status

// Server is the reference configsurface.Surface implementation.
type Server struct {
	ln     net.Listener
	tmpl   *template.Template
	status StatusProvider
	reset  configsurface.ResetFunc
	logger zerolog.Logger
}

// New binds a listener at addr and returns a Server ready for
// cooperative Poll()ing. status supplies the "/" page's live values;
// reset is invoked by "/reset" and its success/failure rendered back
// to the caller.
func New(addr string, status StatusProvider, reset configsurface.ResetFunc, logger zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("status").Parse(statusPageTemplate)
	if err != nil {
		ln.Close()
		return nil, err
	}
	return &Server{ln: ln, tmpl: tmpl, status: status, reset: reset, logger: logger}, nil
}

// Addr returns the bound listener address, useful when addr was
// passed as ":0" for tests.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close releases the listener.
func (s *Server) Close() error { return s.ln.Close() }

// pollDeadline bounds how long Poll may wait for a pending connection
// before returning, so an idle config surface never stalls the
// cooperative loop.
const pollDeadline = 200 * time.Microsecond

// Poll services at most one pending HTTP request. A timed-out accept
// (nothing pending) is not an error.
func (s *Server) Poll() error {
	if tcpLn, ok := s.ln.(*net.TCPListener); ok {
		if err := tcpLn.SetDeadline(time.Now().Add(pollDeadline)); err != nil {
			return err
		}
	}
	conn, err := s.ln.Accept()
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil
		}
		return err
	}
	defer conn.Close()
	return s.serveOne(conn)
}

func (s *Server) serveOne(conn net.Conn) error {
	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		return err
	}
	defer req.Body.Close()

	switch req.URL.Path {
	case "/reset":
		return s.serveReset(conn)
	default:
		return s.serveStatus(conn)
	}
}

func (s *Server) serveStatus(conn net.Conn) error {
	st := s.status()
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, st); err != nil {
		return writeResponse(conn, http.StatusInternalServerError, "text/plain", []byte("template error"))
	}
	return writeResponse(conn, http.StatusOK, "text/html; charset=utf-8", body.Bytes())
}

func (s *Server) serveReset(conn net.Conn) error {
	msg := "pairing info removed, reboot to re-pair"
	status := http.StatusOK
	if s.reset == nil {
		msg = "reset not available"
		status = http.StatusServiceUnavailable
	} else if err := s.reset(); err != nil {
		s.logger.Warn().Err(err).Msg("reset failed")
		msg = "failed to remove pairing info: " + err.Error()
		status = http.StatusInternalServerError
	}
	return writeResponse(conn, status, "text/plain; charset=utf-8", []byte(msg))
}

func writeResponse(conn net.Conn, status int, contentType string, body []byte) error {
	resp := http.Response{
		StatusCode: status,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header: http.Header{
			"Content-Type":   []string{contentType},
			"Content-Length": []string{strconv.Itoa(len(body))},
		},
		Body: io.NopCloser(bytes.NewReader(body)),
	}
	return resp.Write(conn)
}
