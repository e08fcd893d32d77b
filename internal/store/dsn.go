package store

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"relaybot/internal/config"
)

// buildDSN renders the driver-specific connection string.
//
// The sqlserver form trusts the server certificate, matching the original
// deployment (self-signed certs are common on intranet SQL Server hosts).
func buildDSN(cfg config.StoreConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLServer:
		q := url.Values{}
		q.Set("database", cfg.Database)
		q.Set("TrustServerCertificate", "true")
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     cfg.Server,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Server
		mc.DBName = cfg.Database
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// placeholders renders n bind markers for an IN predicate,
// in the driver's positional style.
func placeholders(driver string, n int) string {
	if n <= 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		if driver == config.DriverSQLServer {
			parts[i] = fmt.Sprintf("@p%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ",")
}
