// Package testutil provides deterministic helpers shared by tests and
// benchmarks: seeded random vector generation, brute-force exact search for
// ground truth, and recall/correlation accuracy metrics.
package testutil
