package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultReadingSpeed is the assumed reading speed in words per minute.
const DefaultReadingSpeed = 200

// Settings are the user preferences read by the tracker. They are owned by
// the configuration collaborator; the core only reads them.
type Settings struct {
	ReadingSpeed           int  `yaml:"reading_speed" json:"readingSpeed"`
	ShowBadge              bool `yaml:"show_badge" json:"showBadge"`
	ShowProgressBar        bool `yaml:"show_progress_bar" json:"showProgressBar"`
	ShowResumeNotification bool `yaml:"show_resume_notification" json:"showResumeNotification"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ReadingSpeed:           DefaultReadingSpeed,
		ShowBadge:              true,
		ShowProgressBar:        true,
		ShowResumeNotification: true,
	}
}

// settingsFile mirrors Settings with pointer fields so absent keys can be
// told apart from explicit false values.
type settingsFile struct {
	ReadingSpeed           *int  `yaml:"reading_speed"`
	ShowBadge              *bool `yaml:"show_badge"`
	ShowProgressBar        *bool `yaml:"show_progress_bar"`
	ShowResumeNotification *bool `yaml:"show_resume_notification"`
}

// ParseSettings decodes YAML settings, applying defaults to absent or
// invalid fields.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	var raw settingsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}
	if raw.ReadingSpeed != nil {
		s.ReadingSpeed = *raw.ReadingSpeed
	}
	if raw.ShowBadge != nil {
		s.ShowBadge = *raw.ShowBadge
	}
	if raw.ShowProgressBar != nil {
		s.ShowProgressBar = *raw.ShowProgressBar
	}
	if raw.ShowResumeNotification != nil {
		s.ShowResumeNotification = *raw.ShowResumeNotification
	}
	return s.WithDefaults(), nil
}

// LoadSettings reads settings from path. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read settings: %w", err)
	}
	return ParseSettings(data)
}

// WithDefaults replaces invalid values with their defaults.
func (s Settings) WithDefaults() Settings {
	if s.ReadingSpeed <= 0 {
		s.ReadingSpeed = DefaultReadingSpeed
	}
	return s
}
