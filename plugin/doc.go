// Package plugin defines the capability contract for tool bundles and the
// registry that manages their lifecycle.
//
// A Plugin carries immutable identity (id, name, description, version,
// author), produces tools against a shared Context, and participates in the
// registry's initialize/cleanup lifecycle. Embedding Base gives no-op
// Initialize and Cleanup so most plugins only implement Tools.
//
// A Registry lives for one session. Registration initializes the plugin and
// enforces id uniqueness; unregistration invokes Cleanup inside an isolated
// failure boundary so teardown is total even when a plugin's cleanup fails.
package plugin
