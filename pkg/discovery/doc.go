// Package discovery advertises a monitoring server on the local network
// via mDNS/DNS-SD so operator tooling can find it without configuration.
//
// A server publishes one service instance of type "_iomon._tcp" carrying
// TXT records with its name, engine instance ID, version, and item count:
//
//   - sn: human-readable server name (instance name, too)
//   - id: engine instance UUID
//   - vn: engine version as "major.minor"
//   - ic: number of wired items at advertise time (optional)
//
// Re-advertising with updated info replaces the previous announcement.
package discovery
