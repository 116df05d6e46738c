// Package exitcodes defines the exit codes used by catalyst.
package exitcodes

// * Success (0): every testcase succeeded
// * TestFailure (1): at least one testcase did not succeed
// * RuntimeErr (2): the run itself failed (configuration, channels, protocol)
// * MessageTooLarge (3): a runner process could not fit its result into one
//   frame; only runner processes exit with it
const (
	Success         = 0
	TestFailure     = 1
	RuntimeErr      = 2
	MessageTooLarge = 3
)
