// Package atlaslog builds the structured logger shared by engine and
// cmd/atlas-saturate, grounded on edirooss-zmux-server's zap.Logger
// construction (cmd/zmux-server/main.go, cmd/bulk-delete/main.go) and its
// ZapLogger field-building convention.
package atlaslog
