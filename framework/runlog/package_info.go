// Package runlog reports per-combination job outcomes: coloured console lines, a summary table
// and JUnit XML. It also holds the label filters used to select which combinations to run.
package runlog
