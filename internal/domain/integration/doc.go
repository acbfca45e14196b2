// Package integration defines the ports connecting the bridge to its two
// external platforms: the POS provider that owns the catalog and inventory
// truth, and the delivery marketplace that lists items and originates orders.
// Concrete adapters live in the infrastructure layer (Ports & Adapters).
package integration
