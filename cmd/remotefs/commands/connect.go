package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/crypto/ssh"

	"github.com/charlesng35/remotefs/internal/config"
	"github.com/charlesng35/remotefs/pkg/filesystem"
	"github.com/charlesng35/remotefs/pkg/logger"
	"github.com/charlesng35/remotefs/pkg/session"
)

// connect loads configuration, establishes the session and opens the remote
// filesystem. The returned cleanup closes both; it never panics on a partial
// failure because it is only returned once everything is up.
func connect(cmd *cobra.Command) (*filesystem.FileSystem, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, nil, err
	}

	auth, err := session.Methods(cfg.Auth)
	if err != nil {
		return nil, nil, err
	}

	hostKeys := session.InsecureIgnoreHostKey()
	if !cfg.HostKeys.InsecureSkipVerify {
		var paths []string
		if cfg.HostKeys.KnownHostsPath != "" {
			paths = append(paths, cfg.HostKeys.KnownHostsPath)
		}
		var callback ssh.HostKeyCallback
		callback, err = session.KnownHosts(paths...)
		if err != nil {
			return nil, nil, err
		}
		hostKeys = callback
	}

	sess, err := session.Dial(cfg.Address(), session.Config{
		User:              cfg.Username,
		Auth:              auth,
		HostKeyCallback:   hostKeys,
		Timeout:           cfg.Client.Timeout,
		DisconnectMessage: cfg.Client.DisconnectMessage,
	})
	if err != nil {
		return nil, nil, err
	}

	fs, err := sess.Filesystem(filesystem.WithBufferSize(cfg.Client.BufferSize))
	if err != nil {
		_ = sess.Close()
		return nil, nil, err
	}

	cleanup := func() error {
		return multierr.Append(fs.Close(), sess.Close())
	}
	return fs, cleanup, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var paths []string
	if dir, _ := cmd.Flags().GetString("config"); dir != "" {
		paths = append(paths, dir)
	}

	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		cfg.Username = user
	}
	if insecure, _ := cmd.Flags().GetBool("insecure"); insecure {
		cfg.HostKeys.InsecureSkipVerify = true
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
