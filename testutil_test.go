// testutil_test.go -- shared test helpers
//
// newAsserter follows the same calling convention the teacher's own
// tests rely on (chd_test.go, db_test.go, bitvector_test.go all call
// "assert := newAsserter(t)"), reconstructed here since the pack did
// not retrieve its definition.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import "testing"

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	t.Helper()
	return func(cond bool, msg string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(msg, args...)
		}
	}
}
