package helpers

// TestContext is a minimal interface for types like *testing.T representing a test that can
// fail. Functions can use this to avoid a dependency on the testing package.
type TestContext interface {
	Errorf(msgFormat string, msgArgs ...interface{})
	FailNow()
	Helper()
}
