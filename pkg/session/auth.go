package session

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// PasswordAuth authenticates with a plain password.
func PasswordAuth(password string) ssh.AuthMethod {
	return ssh.Password(password)
}

// PrivateKeyAuth authenticates with a PEM-encoded private key. The
// passphrase is used only when the key is encrypted.
func PrivateKeyAuth(pemBytes []byte, passphrase string) (ssh.AuthMethod, error) {
	var signer ssh.Signer
	var err error
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pemBytes, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(pemBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return ssh.PublicKeys(signer), nil
}

// AgentAuth authenticates with the keys held by the local SSH agent,
// located via SSH_AUTH_SOCK.
func AgentAuth() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, errors.New("SSH_AUTH_SOCK is not set")
	}

	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("connect to ssh agent: %w", err)
	}

	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}

// AuthConfig is a declarative description of how to authenticate, suitable
// for loading from configuration.
type AuthConfig struct {
	Method         string `mapstructure:"method"`
	Password       string `mapstructure:"password"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	Passphrase     string `mapstructure:"passphrase"`
}

// Methods builds the authentication methods an AuthConfig describes.
func Methods(cfg AuthConfig) ([]ssh.AuthMethod, error) {
	switch cfg.Method {
	case "password":
		if cfg.Password == "" {
			return nil, errors.New("password is required for password authentication")
		}
		return []ssh.AuthMethod{PasswordAuth(cfg.Password)}, nil

	case "private_key", "publickey", "key":
		if cfg.PrivateKeyPath == "" {
			return nil, errors.New("private key path is required for key authentication")
		}
		pemBytes, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		method, err := PrivateKeyAuth(pemBytes, cfg.Passphrase)
		if err != nil {
			return nil, err
		}
		methods := []ssh.AuthMethod{method}
		if cfg.Password != "" {
			methods = append(methods, PasswordAuth(cfg.Password))
		}
		return methods, nil

	case "agent":
		method, err := AgentAuth()
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{method}, nil

	default:
		return nil, fmt.Errorf("unsupported auth method %q", cfg.Method)
	}
}
