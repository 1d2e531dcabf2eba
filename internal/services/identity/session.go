package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"rotulo/internal/config"
	"rotulo/internal/fileutil"
	"rotulo/internal/services"
)

const sessionSchemaVersion = 1

// Session is the persisted operator session.
type Session struct {
	SchemaVersion int       `json:"schema_version"`
	ActorName     string    `json:"actor_name"`
	IsAdmin       bool      `json:"is_admin"`
	LoggedInAt    time.Time `json:"logged_in_at"`
}

// Provider reads and writes the device session file.
type Provider struct {
	path string
}

// NewProvider builds a provider for the configured session path.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{path: cfg.SessionPath()}
}

// Login records the operator on this device and returns the new session.
func (p *Provider) Login(actorName string, isAdmin bool) (*Session, error) {
	actorName = strings.TrimSpace(actorName)
	if actorName == "" {
		return nil, services.Wrap(services.ErrValidation, "identity", "login", "actor name is required", nil)
	}

	session := &Session{
		SchemaVersion: sessionSchemaVersion,
		ActorName:     actorName,
		IsAdmin:       isAdmin,
		LoggedInAt:    time.Now().UTC(),
	}
	if err := p.write(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout removes the session file. Logging out twice is not an error.
func (p *Provider) Logout() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrStorage, "identity", "logout", "remove session file", err)
	}
	return nil
}

// Current returns the active session, or a not-found fault when nobody is
// logged in on this device.
func (p *Provider) Current() (*Session, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "identity", "current", "no operator is logged in", nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "identity", "current", "read session file", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, services.Wrap(services.ErrStorage, "identity", "current", "decode session file", err)
	}
	if session.SchemaVersion != sessionSchemaVersion {
		migrated, err := migrate(&session)
		if err != nil {
			return nil, err
		}
		if err := p.write(migrated); err != nil {
			return nil, err
		}
		session = *migrated
	}
	if strings.TrimSpace(session.ActorName) == "" {
		return nil, services.Wrap(services.ErrNotFound, "identity", "current", "session file holds no operator", nil)
	}
	return &session, nil
}

// migrate upgrades sessions written by older releases. Version 1 is the
// first on-disk format, so unknown versions are rejected outright.
func migrate(session *Session) (*Session, error) {
	return nil, services.Wrap(services.ErrStorage, "identity", "migrate",
		fmt.Sprintf("unsupported session schema version %d (expected %d)", session.SchemaVersion, sessionSchemaVersion), nil)
}

// write replaces the session file atomically so a crash mid-write never
// leaves a truncated session behind.
func (p *Provider) write(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrStorage, "identity", "write", "encode session", err)
	}
	if err := fileutil.WriteFileAtomic(p.path, append(data, '\n'), 0o600); err != nil {
		return services.Wrap(services.ErrStorage, "identity", "write", "replace session file", err)
	}
	return nil
}
