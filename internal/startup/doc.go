// Package startup defines the evaluation data model: the lenient Extracted
// input, the typed Profile with its founders, market and business metrics,
// the RiskAssessment and the Memo produced at the end of the pipeline.
//
// Values in this package are plain data. Profiles and memos are passed by
// value and Clone gives callers copies that share no slices or pointers.
package startup
