// Package authdb holds all the migrations for the authentication database
package authdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the authentication database
var Migrations = migrate.NewMigrations()
