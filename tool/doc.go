// Package tool defines the unit of ledger work exposed to callers: a named,
// described, schema-bearing value with an execute function.
//
// Transaction-producing tools are built with NewTransaction, which supplies
// the shared validate/build/strategy/post-process pipeline so that the only
// per-tool code is parameter normalization, transaction construction, and
// message formatting. Read-only tools (balance queries, log filters) provide
// their Execute function directly.
package tool
