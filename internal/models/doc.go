// Package models defines the correction domain entities and persistence interfaces.
//
// The package contains two categories of types:
//
// 1. Wire types: immutable values decoded from the wiki REST API
//   - [Correction] : A proposed change to an entity with its moderation status
//   - [CorrectionHistoryItem] : One approved correction in an entity's history (newest first)
//   - [CorrectionDiff] : Field-level changes between two revisions
//   - [CorrectionRevisionSummary] : One revision recorded under a correction
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [Snapshot] : A cached query result stored by its canonical cache key
//
// Wire types validate themselves; a diff entry with both sides null is rejected.
// Persistent entities implement [Model]. [Repository] defines standard CRUD operations for database access.
package models
