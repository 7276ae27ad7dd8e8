package config

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSSHConfigPath returns ~/.ssh/config.
func DefaultSSHConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "config")
}

// ParseSSHConfig reads the Host blocks of an OpenSSH client config and turns
// each concrete host into a Profile. Wildcard patterns and the global section
// are skipped. A missing file yields no profiles.
func ParseSSHConfig(path string) ([]Profile, error) {
	file, err := os.Open(ExpandPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var profiles []Profile
	var current *Profile

	flush := func() {
		if current == nil {
			return
		}
		if current.Host == "" {
			current.Host = current.Name
		}
		profiles = append(profiles, *current)
		current = nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// "Key value" and "Key=value" are both valid.
		line = strings.Replace(line, "=", " ", 1)
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		keyword := strings.ToLower(fields[0])
		value := strings.Join(fields[1:], " ")

		switch keyword {
		case "host":
			flush()
			pattern := fields[1]
			if len(fields) > 2 || strings.ContainsAny(pattern, "*?!") {
				continue
			}
			current = &Profile{Name: pattern, Port: 22}
		case "match":
			flush()
		case "hostname":
			if current != nil {
				current.Host = value
			}
		case "port":
			if current != nil {
				if port, err := strconv.Atoi(value); err == nil {
					current.Port = port
				}
			}
		case "user":
			if current != nil {
				current.Username = value
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
