// Package migrations registers the schema with pkg/migration. Importing it
// (cmd/nutrieve, internal/testdb) is enough to make every table known.
package migrations
