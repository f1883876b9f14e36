package config

import (
	"errors"
	"fmt"
	"strings"

	"postergeist/internal/schedule"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateInstagram(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateVision(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateGeocoder(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ImageDir) == "" {
		return errors.New("paths.image_dir must be set")
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validateInstagram() error {
	if strings.TrimSpace(c.Instagram.Username) == "" || strings.TrimSpace(c.Instagram.Password) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/postergeist/config.toml"
		}
		return fmt.Errorf("instagram.username and instagram.password are required. Edit %s (create with 'postergeist config init')", defaultPath)
	}
	if strings.TrimSpace(c.Instagram.BaseURL) == "" {
		return errors.New("instagram.base_url must be set")
	}
	if c.Instagram.TimeoutSeconds <= 0 {
		return errors.New("instagram.timeout_seconds must be positive")
	}
	if strings.TrimSpace(c.Instagram.DefaultCity) == "" {
		return errors.New("instagram.default_city must be set")
	}
	if c.Instagram.LocationRangeKm < 0 {
		return errors.New("instagram.location_range_km must be >= 0")
	}
	if c.Instagram.PostLimitPerSlot < 1 {
		return errors.New("instagram.post_limit_per_slot must be >= 1")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if len(c.Schedule.Windows) == 0 {
		return errors.New("schedule.windows must include at least one window")
	}
	for i, pair := range c.Schedule.Windows {
		if len(pair) != 2 {
			return fmt.Errorf("schedule.windows[%d] must be a [start, end] pair", i)
		}
		if _, err := schedule.ParseWindow(pair[0], pair[1]); err != nil {
			return fmt.Errorf("schedule.windows[%d]: %w", i, err)
		}
	}
	if c.Schedule.MinDelaySeconds < 0 {
		return errors.New("schedule.min_delay_seconds must be >= 0")
	}
	if c.Schedule.MaxDelaySeconds < c.Schedule.MinDelaySeconds {
		return errors.New("schedule.max_delay_seconds must be >= schedule.min_delay_seconds")
	}
	if c.Schedule.PollIntervalSeconds <= 0 {
		return errors.New("schedule.poll_interval_seconds must be positive")
	}
	return nil
}

// ScheduleWindows parses the configured windows into schedule form.
func (c *Config) ScheduleWindows() ([]schedule.Window, error) {
	windows := make([]schedule.Window, 0, len(c.Schedule.Windows))
	for i, pair := range c.Schedule.Windows {
		if len(pair) != 2 {
			return nil, fmt.Errorf("schedule.windows[%d] must be a [start, end] pair", i)
		}
		window, err := schedule.ParseWindow(pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("schedule.windows[%d]: %w", i, err)
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (c *Config) validateVision() error {
	if !c.Vision.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Vision.APIKey) == "" {
		return errors.New("vision.api_key must be set when vision.enabled is true")
	}
	if c.Vision.MaxResults <= 0 {
		return errors.New("vision.max_results must be positive")
	}
	if c.Vision.TimeoutSeconds <= 0 {
		return errors.New("vision.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if !c.OpenAI.Enabled {
		return nil
	}
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return errors.New("openai.api_key must be set when openai.enabled is true")
	}
	if c.OpenAI.MaxTokens <= 0 {
		return errors.New("openai.max_tokens must be positive")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return errors.New("openai.temperature must be between 0 and 2")
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		return errors.New("openai.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateGeocoder() error {
	if strings.TrimSpace(c.Geocoder.BaseURL) == "" {
		return errors.New("geocoder.base_url must be set")
	}
	if c.Geocoder.TimeoutSeconds <= 0 {
		return errors.New("geocoder.timeout_seconds must be positive")
	}
	return nil
}
