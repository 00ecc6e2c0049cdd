// Package hostsim provides host-side capability channel implementations
// for testing and demos.
//
// Scripted replays canned bind responses and accept records with
// configurable fragmentation, for exercising the guest decoder without
// any networking. Live backs a channel with a real loopback TCP
// listener, translating bind calls into OS listens and inbound TCP
// connections into accept records, which makes the sample consumer
// runnable outside a real host.
//
// Neither implementation performs TLS; in production that is the
// privileged host's job and the guest never sees it.
package hostsim
