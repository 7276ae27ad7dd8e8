package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
)

const (
	appDirName     = "ssh-x-transfer"
	configFileName = "config"
	envPrefix      = "SXTX"
)

// Setting keys. Flags, environment variables (SXTX_<KEY>) and the config
// file all use these names.
const (
	KeyHost           = "host"
	KeyPort           = "port"
	KeyUser           = "user"
	KeyPassword       = "password"
	KeyProfile        = "profile"
	KeyConnectTimeout = "connect_timeout"
	KeyCommandTimeout = "command_timeout"
	KeyArchiveTimeout = "archive_timeout"
	KeyRemoteTempDir  = "remote_temp_dir"
	KeyBufferSize     = "buffer_size"
	KeyFolderMode     = "folder_mode"
	KeyExtractRemote  = "extract_remote"
	KeyExtractLocal   = "extract_local"
	KeyKnownHosts     = "known_hosts"
	KeyLogLevel       = "log_level"
	KeyLogFile        = "log_file"
	KeyMetricsAddr    = "metrics_addr"
	KeyLocalDir       = "local_dir"
	KeyRemoteDir      = "remote_dir"
)

// Settings is the resolved configuration of one run.
type Settings struct {
	Host     string
	Port     int
	User     string
	Password string
	Profile  string

	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	ArchiveTimeout time.Duration
	RemoteTempDir  string
	BufferSize     int

	FolderMode    bool
	ExtractRemote bool
	ExtractLocal  bool

	KnownHostsPath string
	LogLevel       string
	LogFile        string
	MetricsAddr    string
	LocalDir       string
	RemoteDir      string
}

// Dir returns ~/.config/ssh-x-transfer, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(homeDir, ".config", appDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault(KeyPort, 22)
	v.SetDefault(KeyConnectTimeout, 12*time.Second)
	v.SetDefault(KeyCommandTimeout, 60*time.Second)
	v.SetDefault(KeyArchiveTimeout, 300*time.Second)
	v.SetDefault(KeyRemoteTempDir, "/tmp")
	v.SetDefault(KeyBufferSize, "32KiB")
	v.SetDefault(KeyFolderMode, true)
	v.SetDefault(KeyExtractRemote, true)
	v.SetDefault(KeyExtractLocal, true)
	v.SetDefault(KeyKnownHosts, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyLocalDir, home)
	v.SetDefault(KeyRemoteDir, "")
}

// Init prepares v: defaults, SXTX_ environment variables and the config
// file. An explicit cfgFile must exist; the default one is optional.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	dir, err := Dir()
	if err != nil {
		return err
	}
	v.AddConfigPath(dir)
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		Host:           v.GetString(KeyHost),
		Port:           v.GetInt(KeyPort),
		User:           v.GetString(KeyUser),
		Password:       v.GetString(KeyPassword),
		Profile:        v.GetString(KeyProfile),
		ConnectTimeout: v.GetDuration(KeyConnectTimeout),
		CommandTimeout: v.GetDuration(KeyCommandTimeout),
		ArchiveTimeout: v.GetDuration(KeyArchiveTimeout),
		RemoteTempDir:  v.GetString(KeyRemoteTempDir),
		FolderMode:     v.GetBool(KeyFolderMode),
		ExtractRemote:  v.GetBool(KeyExtractRemote),
		ExtractLocal:   v.GetBool(KeyExtractLocal),
		KnownHostsPath: ExpandPath(v.GetString(KeyKnownHosts)),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFile:        ExpandPath(v.GetString(KeyLogFile)),
		MetricsAddr:    v.GetString(KeyMetricsAddr),
		LocalDir:       ExpandPath(v.GetString(KeyLocalDir)),
		RemoteDir:      v.GetString(KeyRemoteDir),
	}

	size, err := humanize.ParseBytes(v.GetString(KeyBufferSize))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", KeyBufferSize, err)
	}
	if size == 0 || size > 16*1024*1024 {
		return Settings{}, fmt.Errorf("invalid %s: must be between 1B and 16MiB", KeyBufferSize)
	}
	s.BufferSize = int(size)

	if s.Port <= 0 || s.Port > 65535 {
		return Settings{}, fmt.Errorf("invalid %s: %d", KeyPort, s.Port)
	}
	return s, nil
}

// TransferOptions returns the engine settings.
func (s Settings) TransferOptions() transfer.Options {
	return transfer.Options{
		BufferSize:     s.BufferSize,
		CommandTimeout: s.CommandTimeout,
		ArchiveTimeout: s.ArchiveTimeout,
		RemoteTempDir:  s.RemoteTempDir,
	}
}

// Endpoint returns the connection target for host, port and user, falling
// back to the settings for empty values.
func (s Settings) Endpoint(p Profile, password string) ssh.Endpoint {
	ep := ssh.Endpoint{
		Host:     p.Host,
		Port:     p.Port,
		Username: p.Username,
		Password: password,
		Timeout:  s.ConnectTimeout,
	}
	if ep.Host == "" {
		ep.Host = s.Host
	}
	if ep.Port == 0 {
		ep.Port = s.Port
	}
	if ep.Username == "" {
		ep.Username = s.User
	}
	if ep.Password == "" {
		ep.Password = s.Password
	}
	return ep
}
