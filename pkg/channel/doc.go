// Package channel defines the boundary to the host capability channel.
//
// The capability channel is an external collaborator: a privileged
// host-side facility reachable without direct OS access, providing a
// one-shot call/response primitive and streaming byte delivery. This
// package only specifies the contract; implementations live with the
// embedding environment (or in the test harness).
//
// Three handles make up the contract:
//   - Channel: issues calls and resolves opaque stream ids.
//   - RecvStream: delivers variable-length chunks with backpressure
//     feedback, used for the accept record stream.
//   - Stream: a bidirectional byte channel for accepted connections.
package channel
