// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

// DatabaseTypePostgreSQL is the only supported database type.
const DatabaseTypePostgreSQL = "postgresql"

// PostgreSQLConfig represents PostgreSQL connection settings
type PostgreSQLConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	Database           string
	SSLMode            string
	ConnectTimeout     int
	MaxOpenConnections int
	MaxIdleConnections int
	MaxLifetime        int // seconds
	Schema             string
}
