// Package exec implements the dual-mode execution strategy that sits between
// a tool invocation and the network client.
//
// A constructed transaction is completed by exactly one of two strategies,
// selected by the execution mode:
//
//   - ModeSubmit: sign with the client's signer, broadcast, wait for the
//     receipt, and map the outcome into a RawResult.
//   - ModeReturnBytes: RLP-encode the unsigned transaction to base64 and
//     return it inside the RawResult for out-of-band signing.
//
// Both strategies accept the same (transaction, client) pair and produce the
// same RawResult shape, so tools never branch on the mode themselves.
// SDK-level failures surface as a failed RawResult status rather than an
// error, leaving message formatting to the tool's own failure handling.
package exec
