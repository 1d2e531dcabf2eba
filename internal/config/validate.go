package config

import (
	"errors"
	"fmt"

	"rotulo/internal/inventory"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateConnectivity(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/rotulo/config.toml"
		}
		return fmt.Errorf("remote.base_url is required. Edit %s (create with 'rotulo config init')", defaultPath)
	}
	if c.Remote.AppID == "" {
		return errors.New("remote.app_id must be set")
	}
	if c.Remote.RequestTimeout <= 0 {
		return errors.New("remote.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set")
	}
	if c.Storage.URLExpiryHours <= 0 {
		return errors.New("storage.url_expiry_hours must be positive")
	}
	if c.Storage.UploadTimeout <= 0 {
		return errors.New("storage.upload_timeout must be positive")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.MaxImageWidth <= 0 {
		return errors.New("capture.max_image_width must be positive")
	}
	if c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100 {
		return errors.New("capture.jpeg_quality must be between 1 and 100")
	}
	if c.Capture.MaxAttachments < 1 || c.Capture.MaxAttachments > inventory.MaxAttachments {
		return fmt.Errorf("capture.max_attachments must be between 1 and %d", inventory.MaxAttachments)
	}
	return nil
}

func (c *Config) validateConnectivity() error {
	if c.Connectivity.ProbeURL == "" {
		return errors.New("connectivity.probe_url must be set")
	}
	if c.Connectivity.ProbeTimeout <= 0 {
		return errors.New("connectivity.probe_timeout must be positive")
	}
	if c.Connectivity.ProbeInterval <= 0 {
		return errors.New("connectivity.probe_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
