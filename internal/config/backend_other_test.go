//go:build !darwin

package config

import (
	"testing"
)

func TestFileBackendRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	b := newPlatformBackend()

	if err := b.SetString("log.level", "debug"); err != nil {
		t.Fatal(err)
	}
	if err := b.SetInt("server.port", 5001); err != nil {
		t.Fatal(err)
	}

	// A fresh backend instance reads the persisted file.
	b = newPlatformBackend()
	v, ok, err := b.GetString("log.level")
	if err != nil || !ok || v != "debug" {
		t.Errorf("GetString = %q, %v, %v", v, ok, err)
	}
	i, ok, err := b.GetInt("server.port")
	if err != nil || !ok || i != 5001 {
		t.Errorf("GetInt = %d, %v, %v", i, ok, err)
	}

	if err := b.Delete("log.level"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.GetString("log.level"); ok {
		t.Error("deleted key still present")
	}
}

func TestFileBackendMissingKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	b := newPlatformBackend()

	if _, ok, err := b.GetString("backend.base_url"); ok || err != nil {
		t.Errorf("missing key: ok=%v err=%v", ok, err)
	}
}

func TestSecretRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if err := secretSet("campaignwiz", "api_token", "tok-xyz"); err != nil {
		t.Fatal(err)
	}
	out, err := secretGet("campaignwiz", "api_token")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "tok-xyz" {
		t.Errorf("secret = %q", out)
	}
}
