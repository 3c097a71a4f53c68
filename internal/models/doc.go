// Package models defines the domain records of a poker-night bank.
//
// A Game is the aggregate root: it owns its Players, the ChipRequests they
// submit, the append-only Ledger and the settlement Pool. Everything that
// mutates a game happens on one *Game value under the engine's per-game lock,
// so the types here carry no synchronization of their own.
//
// Relationships between records use ID strings, never pointers across the
// aggregate, so that Clone can produce an independent copy cheaply.
//
// All money amounts are int64 chips. One chip is one unit of the game's
// currency; there is no fractional arithmetic anywhere in settlement.
package models
