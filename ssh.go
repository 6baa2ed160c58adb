package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHClient runs shell commands on a NAS over plain SSH sessions. Files
// move through cat, so the server needs no SFTP subsystem.
type SSHClient struct {
	conn *ssh.Client
}

// NewSSHClient dials host, given as "user@host:port", "user@host" or "host"
func NewSSHClient(host string) (*SSHClient, error) {
	auth := publicKeyAuth()
	if auth == nil {
		return nil, fmt.Errorf("no SSH authentication methods available - please ensure SSH keys are mounted")
	}

	conn, err := ssh.Dial("tcp", parseHostAddr(host), &ssh.ClientConfig{
		User:            parseUsername(host),
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKeyCallback(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", host, err)
	}
	return &SSHClient{conn: conn}, nil
}

// Close closes the SSH connection
func (c *SSHClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// withSession runs fn on a fresh session, which SSH allows one command per
func (c *SSHClient) withSession(fn func(*ssh.Session) error) error {
	session, err := c.conn.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()
	return fn(session)
}

// run runs cmd and returns its stdout
func (c *SSHClient) run(cmd string) ([]byte, error) {
	var out []byte
	err := c.withSession(func(s *ssh.Session) error {
		var err error
		out, err = s.Output(cmd)
		return err
	})
	return out, err
}

// WalkDirectory lists the regular files below a remote directory, pruning
// Synology metadata directories
func (c *SSHClient) WalkDirectory(dir string) ([]string, error) {
	output, err := c.run(fmt.Sprintf("find %s -type d -name %s -prune -o -type f -print",
		shellescape(dir), shellescape(synologyMetaDir)))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			files = append(files, line)
		}
	}
	return files, scanner.Err()
}

// FileSizes lists the regular files of a remote directory larger than minSize
func (c *SSHClient) FileSizes(dir string, minSize uint64) ([]FileInfo, error) {
	cmd := fmt.Sprintf("find %s -type f -size +%dc -printf '%%s\\t%%p\\n'", shellescape(dir), minSize)

	output, err := c.run(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to run find command: %w", err)
	}

	return parseFileSizes(output)
}

// parseFileSizes parses "size<TAB>path" lines as printed by find -printf
func parseFileSizes(output []byte) ([]FileInfo, error) {
	var files []FileInfo
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sizeStr, path, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("unexpected find output: %q", line)
		}
		size, err := strconv.ParseUint(sizeStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected size in find output %q: %w", line, err)
		}
		files = append(files, FileInfo{Path: path, Size: size})
	}
	return files, scanner.Err()
}

// DownloadFile copies a remote file to localPath
func (c *SSHClient) DownloadFile(remotePath, localPath string) error {
	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer dst.Close()

	err = c.withSession(func(s *ssh.Session) error {
		s.Stdout = dst
		return s.Run("cat " + shellescape(remotePath))
	})
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", remotePath, err)
	}
	return dst.Sync()
}

// UploadFile copies localPath to the remote path, replacing it
func (c *SSHClient) UploadFile(localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer src.Close()

	err = c.withSession(func(s *ssh.Session) error {
		s.Stdin = src
		return s.Run("cat > " + shellescape(remotePath))
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", remotePath, err)
	}
	return nil
}

// RemoveFile deletes a file on the remote server
func (c *SSHClient) RemoveFile(remotePath string) error {
	if _, err := c.run("rm -f " + shellescape(remotePath)); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// parseUsername returns the user part of host, or $USER
func parseUsername(host string) string {
	if user, _, ok := strings.Cut(host, "@"); ok {
		return user
	}
	return os.Getenv("USER")
}

// parseHostAddr returns the host:port part of host, port 22 by default
func parseHostAddr(host string) string {
	if _, addr, ok := strings.Cut(host, "@"); ok {
		host = addr
	}
	if strings.Contains(host, ":") {
		return host
	}
	return host + ":22"
}

// hostKeyCallback verifies hosts against ~/.ssh/known_hosts when it exists
func hostKeyCallback() ssh.HostKeyCallback {
	knownHostsPath := filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts")
	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		logger.Warnf("Not verifying SSH host keys: %v", err)
		return ssh.InsecureIgnoreHostKey()
	}
	return callback
}

// sshKeyNames are the private keys tried, in order, from ~/.ssh
var sshKeyNames = []string{"nas_key", "id_ed25519", "id_rsa"}

// publicKeyAuth offers every readable, unencrypted key in sshKeyNames
func publicKeyAuth() ssh.AuthMethod {
	var signers []ssh.Signer
	for _, name := range sshKeyNames {
		pem, err := os.ReadFile(filepath.Join(os.Getenv("HOME"), ".ssh", name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			logger.Debugf("Skipping SSH key %s: %v", name, err)
			continue
		}
		signers = append(signers, signer)
	}

	if len(signers) == 0 {
		logger.Warn("No SSH keys found")
		return nil
	}
	return ssh.PublicKeys(signers...)
}

// shellescape escapes a string for safe use in shell commands
func shellescape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
