// Package testutil provides test helpers for tempbox tests.
//
// The package is organized into focused files:
//   - assert.go: assertion helpers (MustNoErr, AssertStrings, etc.)
//   - store_helpers.go: database test setup (NewTestStore)
//   - fixtures.go: email and attachment fixtures
package testutil
