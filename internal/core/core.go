/*
Core implements the per-tick strategy dispatcher.

# Module
  - trader: validates the snapshot and invokes every generator in order
  - strategy state: EMAs and mid histories carried between ticks
  - risk guard: re-checks each product's orders against its position limit

# Source
 1. snapshots from the JSONL stream or a websocket feed
 2. recorded tapes from replay

# Produce
  - orders per product, the conversion request and the trader data string

# Isolation
  - a generator that fails or panics loses its products for the tick only
*/
package core
