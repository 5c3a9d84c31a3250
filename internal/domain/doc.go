// Package domain defines core data models and interfaces shared across the
// lobby. It contains plain types (identity keys, members, deltas, frames) and
// contracts (interfaces) only.
package domain
