// Package atlascfg reads the saturation engine's environment-variable
// configuration directly, the way edirooss-zmux-server/cmd/zmux-server's
// main reads its own config from the environment rather than through a
// config framework.
package atlascfg
