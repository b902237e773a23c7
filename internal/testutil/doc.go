// Package testutil provides scripted specialist capabilities for tests:
// canned per-role outputs, programmable failures and invocation counting.
package testutil
