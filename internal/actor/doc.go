// Package actor provides the participant record types for chainstage.
//
// This package contains type definitions and pure derivation helpers only.
// All other internal packages import actor; actor imports nothing internal.
// This keeps the record model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - NO float types anywhere - token amounts are int64 base units
//   - FlowParticipant.Address is immutable after creation
//   - GroupOwner sharing is copy-construction, never aliasing
//   - All JSON tags use snake_case
package actor
