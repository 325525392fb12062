/*
Package runtime sequences navigation into one commit-or-abort unit.

A transition matches the target location, runs the lifecycle hooks of the
routes being left, changed and entered, loads the artifacts of the new
branch, and only then commits the resulting state. The Runner keeps at most
one transition in flight: starting a new one cancels the previous, whose
result is then discarded.
*/
package runtime
