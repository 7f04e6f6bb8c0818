package cliconfig

import "os"

// ApplyEnvConfig applies GUARDSYNC_* environment variables to the
// Config. Env values override file values but lose to flags set
// explicitly on the command line.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", os.Getenv("GUARDSYNC_BASE_URL"), &cfg.BaseURL)
	s.setString("auth-token", os.Getenv("GUARDSYNC_AUTH_TOKEN"), &cfg.AuthToken)
	s.setString("store", os.Getenv("GUARDSYNC_STORE"), &cfg.StoreBackend)
	s.setString("state-dir", os.Getenv("GUARDSYNC_STATE_DIR"), &cfg.StateDir)

	if err := s.setDuration("timeout", os.Getenv("GUARDSYNC_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("sync-interval", os.Getenv("GUARDSYNC_SYNC_INTERVAL"), &cfg.SyncInterval); err != nil {
		return err
	}
	return nil
}
