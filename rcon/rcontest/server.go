// Package rcontest provides a remote console server for testing.
package rcontest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/mycoria/whitelist/rcon"
)

// Behavior defines how the server reacts to a command.
type Behavior uint8

// Behaviors.
const (
	// Respond answers the command using the handler.
	Respond Behavior = iota

	// Reset aborts the connection instead of answering.
	Reset

	// Hangup closes the connection gracefully instead of answering.
	Hangup

	// ResetLogin aborts the connection instead of answering the login.
	ResetLogin
)

// Handler returns the response to a command.
type Handler func(command string) string

// Server is a remote console server listening on localhost.
type Server struct {
	Password string
	Handler  Handler
	Behavior Behavior

	ln net.Listener
	wg sync.WaitGroup

	lock     sync.Mutex
	commands []string
	logins   int
}

// NewServer starts a new plain TCP server.
func NewServer(password string, handler Handler) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return start(ln, password, handler), nil
}

// NewTLSServer starts a new TLS server with a self-signed certificate.
func NewTLSServer(password string, handler Handler) (*Server, error) {
	cert, err := selfSignedCert()
	if err != nil {
		return nil, err
	}
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return nil, err
	}
	return start(ln, password, handler), nil
}

func start(ln net.Listener, password string, handler Handler) *Server {
	if handler == nil {
		handler = func(command string) string { return "" }
	}
	s := &Server{
		Password: password,
		Handler:  handler,
		ln:       ln,
	}
	s.wg.Add(1)
	go s.serve()
	return s
}

// Host returns the host the server listens on.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// SetBehavior sets the reaction to following commands.
func (s *Server) SetBehavior(b Behavior) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.Behavior = b
}

// Commands returns all commands received after a successful login.
func (s *Server) Commands() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]string(nil), s.commands...)
}

// Logins returns the amount of successful logins.
func (s *Server) Logins() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.logins
}

// Close stops the server and waits for all connections to end.
func (s *Server) Close() {
	_ = s.ln.Close()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close() //nolint:errcheck
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	authenticated := false
	for {
		p, err := rcon.ReadPacket(conn)
		if err != nil {
			return
		}

		switch {
		case p.Type == rcon.TypeLogin:
			if s.behavior() == ResetLogin {
				abort(conn)
				return
			}
			id := p.ID
			if p.Body == s.Password {
				authenticated = true
				s.lock.Lock()
				s.logins++
				s.lock.Unlock()
			} else {
				id = -1
			}
			if err := rcon.WritePacket(conn, rcon.Packet{ID: id, Type: rcon.TypeLoginResponse}); err != nil {
				return
			}

		case p.Type == rcon.TypeCommand && authenticated:
			s.lock.Lock()
			s.commands = append(s.commands, p.Body)
			behavior := s.Behavior
			s.lock.Unlock()

			switch behavior {
			case Reset:
				abort(conn)
				return
			case Hangup:
				return
			case Respond:
			}
			for _, part := range splitResponse(s.Handler(p.Body)) {
				resp := rcon.Packet{ID: p.ID, Type: rcon.TypeResponse, Body: part}
				if err := rcon.WritePacket(conn, resp); err != nil {
					return
				}
			}

		case p.Type == rcon.TypeResponse && authenticated:
			// Answer like a game server answers unknown requests.
			resp := rcon.Packet{ID: p.ID, Type: rcon.TypeResponse, Body: "Unknown request 0"}
			if err := rcon.WritePacket(conn, resp); err != nil {
				return
			}

		default:
			return
		}
	}
}

func (s *Server) behavior() Behavior {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.Behavior
}

// splitResponse splits a response into parts of at most
// rcon.MaxResponseSize characters.
func splitResponse(response string) []string {
	runes := []rune(response)
	parts := make([]string, 0, len(runes)/rcon.MaxResponseSize+1)
	for len(runes) > rcon.MaxResponseSize {
		parts = append(parts, string(runes[:rcon.MaxResponseSize]))
		runes = runes[rcon.MaxResponseSize:]
	}
	return append(parts, string(runes))
}

// abort closes the connection with a TCP reset.
func abort(conn net.Conn) {
	var tcpConn *net.TCPConn
	switch c := conn.(type) {
	case *net.TCPConn:
		tcpConn = c
	case *tls.Conn:
		tcpConn, _ = c.NetConn().(*net.TCPConn)
	}
	if tcpConn != nil {
		_ = tcpConn.SetLinger(0)
	}
}

func selfSignedCert() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "rcontest"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}, nil
}
