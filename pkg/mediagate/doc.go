// Package mediagate gates access to stored media content behind mandatory
// membership in a configurable set of channels, and provides the guided
// publish workflow that turns a raw upload into a coded registry entry
// with a redundant backup copy and a public announcement.
//
// It exposes a single Service interface covering the access resolver, the
// membership gate, the publish pipeline, donations, and runtime settings.
// Implementations of repositories (memory, Postgres), payload blob stores
// (memory, filesystem, S3) and messaging platforms (in-process, Telegram
// Bot API) are provided under subpackages.
//
// The membership gate is fail-closed by default: a membership query that
// fails classifies the target as not joined. WithFailOpen flips that
// policy for deployments that prefer availability over enforcement.
package mediagate
