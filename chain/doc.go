// Package chain wraps the go-ethereum client behind the narrow surface the
// kit needs: balances, nonces, fee suggestion, transaction construction,
// submission with receipt polling, contract calls, and log filtering.
//
// The same Client backs both real RPC endpoints (via Dial) and the
// go-ethereum simulated backend (via NewSimulated), which is how the test
// suite exercises submission paths without a live network.
package chain
