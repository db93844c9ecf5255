// Package textutil holds the text helpers shared by memo assembly and result
// persistence: token fingerprints for spotting reworded memo bullets, and
// token sanitizing for deal note file names.
package textutil
