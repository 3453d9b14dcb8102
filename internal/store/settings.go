package store

import (
	"fmt"
	"strconv"
)

const (
	SettingThemeMode       = "theme_mode"
	SettingBiometric       = "biometric_enabled"
	SettingCallLogAutoSync = "call_log_auto_sync"
	SettingCallLogLastSync = "call_log_last_sync"
	SettingVaultAutoLock   = "vault_autolock"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (s *Store) ThemeMode() (string, error) {
	return s.GetSetting(SettingThemeMode)
}

func (s *Store) SetThemeMode(mode string) error {
	return s.SetSetting(SettingThemeMode, mode)
}

func (s *Store) getBool(key string) (bool, error) {
	v, err := s.GetSetting(key)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) setBool(key string, b bool) error {
	return s.SetSetting(key, strconv.FormatBool(b))
}

// BiometricEnabled reports the biometric-unlock preference. It is on by default.
func (s *Store) BiometricEnabled() (bool, error) {
	return s.getBool(SettingBiometric)
}

func (s *Store) SetBiometricEnabled(enabled bool) error {
	return s.setBool(SettingBiometric, enabled)
}

func (s *Store) CallLogAutoSync() (bool, error) {
	return s.getBool(SettingCallLogAutoSync)
}

func (s *Store) SetCallLogAutoSync(enabled bool) error {
	return s.setBool(SettingCallLogAutoSync, enabled)
}

// LastCallLogSync returns the unix time of the last call-log sync, 0 if never.
func (s *Store) LastCallLogSync() (int64, error) {
	v, err := s.GetSetting(SettingCallLogLastSync)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", SettingCallLogLastSync, err)
	}
	return n, nil
}

func (s *Store) SetLastCallLogSync(unix int64) error {
	return s.SetSetting(SettingCallLogLastSync, strconv.FormatInt(unix, 10))
}

// VaultAutoLock returns the vault idle timeout in seconds. Zero disables it.
func (s *Store) VaultAutoLock() (int, error) {
	v, err := s.GetSetting(SettingVaultAutoLock)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", SettingVaultAutoLock, err)
	}
	return n, nil
}

func (s *Store) SetVaultAutoLock(seconds int) error {
	return s.SetSetting(SettingVaultAutoLock, strconv.Itoa(seconds))
}
