// Package session holds the process-wide authentication state of the client.
//
// A Store owns one Session value. Readers get consistent snapshots through
// Get; writers replace the whole value through Set with a transform function,
// so a reader never observes a half-applied transition (for example a cleared
// token with stale roles). Subscribers are notified after every committed
// change, outside the store lock, in registration order.
//
// The access token lives only here, in memory. The "trust this device" flag
// that survives restarts is kept separately by PersistStore.
package session
