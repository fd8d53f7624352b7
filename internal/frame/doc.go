// Package frame implements the TPC-E transaction frames the benchmark driver
// runs against the brokerage database.
//
// A frame is a fixed sequence of reads and conditional writes that runs to
// completion inside a transaction owned by the caller:
//
//   - DataMaintenanceFrame1: one read-decide-write handler per target table
//   - TradeCleanupFrame1: drain pending trade requests, cancel submitted trades
//   - BrokerVolumeFrame1: per-broker traded value for a sector, rendered as
//     array literals into bounded buffers
//
// Frames run statements from the store catalogue through a Querier and stop
// at the first failing step with a *Error. They never commit or roll back.
package frame
