// Package detector drives the external cat-finder binary as a black-box
// subprocess.
//
// Each Detect call spawns one child process with the image path and --model
// argument, captures combined output under a fixed timeout, and infers the
// verdict from the binary's free-text stdout. The substring-match success
// signal is a fragile contract inherited from the classifier itself;
// preserve it when changing this package. Execution errors downgrade to a
// negative outcome so a single bad image can never abort a batch.
package detector
