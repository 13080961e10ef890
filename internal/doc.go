// Package internal documents the SkillStage server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, response rendering, and routing
// - domain: business logic for users, events, and modules
// - storage: Postgres repositories and migrations
// - auth, audit, config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
