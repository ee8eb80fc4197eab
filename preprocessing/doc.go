// Package preprocessing implements the cleaning stages of a wrangling run:
// missing-value reports, threshold pruning, imputation, IQR outlier filtering,
// the seeded train/validate/test split and min-max scaling fitted on train.
//
// Every stage takes a *frame.Frame and returns a new one; inputs are never
// modified. Stages can be called directly or chained with Pipeline.
package preprocessing
