package session

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
	"github.com/charlesng35/remotefs/pkg/filesystem"
	"github.com/charlesng35/remotefs/pkg/logger"
)

const (
	defaultDialTimeout = 30 * time.Second

	// Protocol packets are capped at 32 KiB, the largest size every server
	// is required to accept.
	maxPacketSize = 1 << 15
)

// Config carries everything needed to establish a secure session.
type Config struct {
	// User is the account to authenticate as. Required.
	User string

	// Auth lists the authentication methods to offer, tried in order.
	// Required. See PasswordAuth, PrivateKeyAuth and AgentAuth.
	Auth []ssh.AuthMethod

	// HostKeyCallback verifies the server's identity. Required. See
	// KnownHosts and InsecureIgnoreHostKey.
	HostKeyCallback ssh.HostKeyCallback

	// Timeout bounds the TCP connect and the handshake. Zero means
	// defaultDialTimeout.
	Timeout time.Duration

	// DisconnectMessage is logged when the session closes.
	DisconnectMessage string
}

func (c Config) validate() error {
	if c.User == "" {
		return errors.New("user is required")
	}
	if len(c.Auth) == 0 {
		return errors.New("at least one authentication method is required")
	}
	if c.HostKeyCallback == nil {
		return errors.New("host key verification is required")
	}
	return nil
}

// Session is one authenticated connection to a remote server. It owns the
// guard that serialises every remote operation made through it; filesystems
// obtained from it share that guard.
//
// A session must not be copied after creation.
type Session struct {
	id     string
	guard  Guard
	client *ssh.Client
	log    *zap.Logger

	disconnectMessage string
	closeOnce         sync.Once
}

// Start runs the secure handshake over an already-connected transport. On
// handshake failure the transport is closed before the error is returned;
// the caller never has to clean up a half-started session.
func Start(conn net.Conn, addr string, cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, remoteerr.NewAllocation("session", err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            cfg.Auth,
		HostKeyCallback: cfg.HostKeyCallback,
		Timeout:         cfg.Timeout,
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		_ = conn.Close()
		return nil, remoteerr.NewSessionStartup("handshake", err)
	}

	id := uuid.NewString()
	s := &Session{
		id:                id,
		client:            ssh.NewClient(clientConn, chans, reqs),
		log:               logger.WithSession("session", id),
		disconnectMessage: cfg.DisconnectMessage,
	}

	s.log.Info("session established", zap.String("address", addr))
	return s, nil
}

// Dial connects to addr (host:port) and runs the secure handshake.
func Dial(addr string, cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, remoteerr.NewAllocation("session", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, remoteerr.NewTransport("dial", addr, err)
	}

	return Start(conn, addr, cfg)
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Guard returns the lock serialising operations on this session.
func (s *Session) Guard() *Guard {
	return &s.guard
}

// Filesystem opens the remote filesystem subsystem on this session. The
// returned filesystem shares the session's guard; its operations and the
// session's own interleave safely but never overlap.
func (s *Session) Filesystem(opts ...filesystem.Option) (*filesystem.FileSystem, error) {
	release := s.guard.Acquire()
	client, err := sftp.NewClient(s.client, sftp.MaxPacket(maxPacketSize))
	release()
	if err != nil {
		return nil, remoteerr.NewAllocation("filesystem", err)
	}

	opts = append([]filesystem.Option{filesystem.WithLogger(s.log)}, opts...)
	return filesystem.New(filesystem.NewSFTPConn(client), &s.guard, opts...), nil
}

// Close tears the session down. Teardown failures are logged and swallowed;
// there is nothing actionable once the connection is going away. Closing
// more than once is harmless.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		release := s.guard.Acquire()
		defer release()

		msg := s.disconnectMessage
		if msg == "" {
			msg = "closing session"
		}

		if err := s.client.Close(); err != nil {
			s.log.Debug("session teardown failed", zap.Error(err))
		}
		s.log.Info("session closed", zap.String("message", msg))
	})
	return nil
}
