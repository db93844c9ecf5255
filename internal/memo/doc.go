// Package memo assembles investment memos and deal notes.
//
// The assembler turns a profile and its combined score into risk, a tiered
// recommendation, strengths and concerns. Draft builds the preliminary memo
// that follows public-data verification, Refiner adjusts a finished memo with
// interview and public evidence, and DealNote renders the memo as markdown.
package memo
