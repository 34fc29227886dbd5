// Package model defines the value types exchanged with the index.
//
// # Identity
//
// Every stored vector carries an ID: its position in the dataset passed to
// Fill. IDs are positional, not content hashes, and the same item has the
// same ID in every replica.
//
// # Results
//
//   - KV: a stored vector with its ID
//   - Result: an optional single answer plus the work it took to find it
//   - ListResult: zero or more answers plus the work it took to find them
//
// A search miss is a Result with Found == false (or an empty ListResult),
// never an error and never a default vector.
package model
