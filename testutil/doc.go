// Package testutil provides seeded data generators and ground-truth helpers
// for tests, examples and the benchmark command.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.GaussianVectors(1000, 32)          // standard normal
//	wide := rng.ScaledVectors(1000, 32, 0.1, 10)   // norms spread over [0.1, 10)
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactMIPS(data, query, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truthIDs, approxIDs)
package testutil
