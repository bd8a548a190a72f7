package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Magic Kingdom on the themeparks.wiki API.
const DefaultVenueID = "75ea578a-adc8-4116-a54d-dccb60765ef9"

type Config struct {
	LogLevel int    `yaml:"log_level"`
	VenueID  string `yaml:"venue_id"`

	Provider  ProviderConfig  `yaml:"provider"`
	Audio     AudioConfig     `yaml:"audio"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Watch     WatchConfig     `yaml:"watch"`
	Mirror    MirrorConfig    `yaml:"mirror"`
}

type ProviderConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type AudioConfig struct {
	// Directory holding the cached show soundtracks
	Dir string `yaml:"dir"`

	// Transcode to Codec/Quality when ffmpeg is available
	Transcode *bool  `yaml:"transcode"`
	Codec     string `yaml:"codec"`
	Quality   string `yaml:"quality"`

	// Upper bound for one soundtrack download
	DownloadTimeout time.Duration `yaml:"download_timeout"`

	// External tools
	Downloader     string `yaml:"downloader"`
	Prober         string `yaml:"prober"`
	Transcoder     string `yaml:"transcoder"`
	Player         string `yaml:"player"`
	FallbackPlayer string `yaml:"fallback_player"`
}

type SchedulerConfig struct {
	MaxSleep        time.Duration `yaml:"max_sleep"`
	SettleTolerance time.Duration `yaml:"settle_tolerance"`
	GraceWindow     time.Duration `yaml:"grace_window"`
}

type WatchConfig struct {
	// Cron expression for the daily run, evaluated in Timezone
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`
}

type MirrorConfig struct {
	// Empty bucket disables the remote mirror
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// TranscodeEnabled reports the transcode toggle, which defaults to on.
func (a AudioConfig) TranscodeEnabled() bool {
	return a.Transcode == nil || *a.Transcode
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.setDefaults()
	return config, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	config := &Config{}
	config.setDefaults()
	return config
}

func (c *Config) setDefaults() {
	if c.VenueID == "" {
		c.VenueID = DefaultVenueID
	}

	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://api.themeparks.wiki/v1"
	}
	if c.Provider.Timeout <= 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Provider.UserAgent == "" {
		c.Provider.UserAgent = "showtime-sync/1.0"
	}

	if c.Audio.Dir == "" {
		c.Audio.Dir = "audio"
	}
	if c.Audio.Codec == "" {
		c.Audio.Codec = "mp3"
	}
	if c.Audio.Quality == "" {
		c.Audio.Quality = "192"
	}
	if c.Audio.DownloadTimeout <= 0 {
		c.Audio.DownloadTimeout = 30 * time.Minute
	}
	if c.Audio.Downloader == "" {
		c.Audio.Downloader = "yt-dlp"
	}
	if c.Audio.Prober == "" {
		c.Audio.Prober = "ffprobe"
	}
	if c.Audio.Transcoder == "" {
		c.Audio.Transcoder = "ffmpeg"
	}
	if c.Audio.Player == "" {
		c.Audio.Player = "ffplay"
	}
	if c.Audio.FallbackPlayer == "" {
		c.Audio.FallbackPlayer = "afplay"
	}

	if c.Scheduler.MaxSleep <= 0 {
		c.Scheduler.MaxSleep = 60 * time.Second
	}
	if c.Scheduler.SettleTolerance <= 0 {
		c.Scheduler.SettleTolerance = 500 * time.Millisecond
	}
	if c.Scheduler.GraceWindow <= 0 {
		c.Scheduler.GraceWindow = 1200 * time.Second
	}

	if c.Watch.Schedule == "" {
		c.Watch.Schedule = "0 16 * * *"
	}
	if c.Watch.Timezone == "" {
		c.Watch.Timezone = "America/New_York"
	}
}
