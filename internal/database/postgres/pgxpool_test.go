package postgres

import (
	"net/url"
	"testing"

	"ats-sync/internal/config"
)

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		DBHost:     "db.internal",
		DBPort:     "5432",
		DBName:     "ats",
		DBUser:     "sync",
		DBPassword: "p@ss:w/rd",
		DBSSLMode:  "require",
	})

	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	if pw, _ := u.User.Password(); pw != "p@ss:w/rd" {
		t.Fatalf("password not preserved: %q", pw)
	}
	if u.Host != "db.internal:5432" || u.Path != "/ats" {
		t.Fatalf("unexpected host/path %q %q", u.Host, u.Path)
	}
	if u.Query().Get("sslmode") != "require" {
		t.Fatalf("expected sslmode=require, got %q", u.RawQuery)
	}
}
