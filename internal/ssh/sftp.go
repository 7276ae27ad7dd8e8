package ssh

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
)

// sftpChannel is the FileChannel backed by an SFTP subsystem session.
type sftpChannel struct {
	client *sftp.Client
}

func (c *sftpChannel) ReadDir(path string) ([]os.FileInfo, error) {
	entries, err := c.client.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	return entries, nil
}

func (c *sftpChannel) Stat(path string) (os.FileInfo, error) {
	return c.client.Stat(path)
}

func (c *sftpChannel) Open(path string) (io.ReadCloser, error) {
	f, err := c.client.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file: %w", err)
	}
	return f, nil
}

func (c *sftpChannel) Create(path string) (io.WriteCloser, error) {
	f, err := c.client.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote file: %w", err)
	}
	return f, nil
}

func (c *sftpChannel) Remove(path string) error {
	if err := c.client.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (c *sftpChannel) Getwd() (string, error) {
	return c.client.Getwd()
}

func (c *sftpChannel) Close() error {
	return c.client.Close()
}
