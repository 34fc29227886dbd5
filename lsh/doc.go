// Package lsh implements the locality-sensitive hash families used by the
// index.
//
// # Families
//
//   - SignHash: random-hyperplane hashing. Bit i of the code is 1 iff the
//     projection of x onto the i-th Gaussian hyperplane is non-negative, so
//     the chance two vectors share a bit falls with the angle between them.
//   - NormalizedSignHash (Simple-LSH): lifts a vector with ‖x‖ ≤ 1 onto the
//     unit sphere one dimension up, P(x) = [x, sqrt(1-‖x‖²)], then applies a
//     SignHash. Inner products between norm-bounded vectors become angles
//     between their lifted images.
//   - PStableHash: floor((a·x + b) / r), a scalar hash for Euclidean
//     distance.
//
// Codes can be wider than 64 bits and are represented by Code, a
// non-negative multi-word integer that supports bit tests and modulo.
//
// All randomness is injected through a *rand.Rand so index construction is
// reproducible from a seed.
package lsh
