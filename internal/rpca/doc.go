// Package rpca separates a matrix into a low-rank and a sparse component.
//
// [Decompose] solves principal component pursuit
//
//	minimize ‖L‖* + λ‖S‖₁  subject to  L + S = H
//
// with the inexact augmented Lagrange multiplier method: singular value
// thresholding for L, entrywise soft-thresholding for S and a dual ascent
// step on the constraint. The loop ends when ‖L+S−H‖_F/‖H‖_F drops below the
// tolerance of the injected [ident.Stop] or the iteration budget runs out.
// Running out of budget is not an error; the last iterate is returned with
// [ident.NotConverged].
//
// [LowRankFilter] chains lag embedding, decomposition and anti-diagonal
// averaging to remove impulsive noise from a quasi-periodic series:
//
//	clean, report, err := rpca.LowRankFilter(noisy, 200)
//
// # Cost
//
// Each iteration factorizes the n×n Gram matrix of the embedding, so the
// work grows as O(m·n²) in the embedding dimension n.
package rpca
