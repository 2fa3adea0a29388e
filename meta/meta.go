// meta/meta.go
package meta

import "time"

// BUDGET defines the default thinking time per move.
const BUDGET = 100 * time.Millisecond

// MAX_TURNS caps the length of a game played by the arena.
const MAX_TURNS = 300

// GAMES defines the number of games per matchup.
const GAMES = 10

// PARALLELISM defines the number of games played at once in a tournament.
const PARALLELISM = 4

// OUTPUT_DIR is where tournament records are written.
const OUTPUT_DIR = "experiments"

// NETWORK_MARGIN is kept from a remote agent's budget for the round trip.
const NETWORK_MARGIN = 20 * time.Millisecond

// MAX_BUDGET caps the thinking time a remote agent grants per request.
const MAX_BUDGET = 10 * time.Second

// MAX_NIM_OBJECTS bounds the total pile size of a nim position accepted from
// a remote caller. Nim lists one action per object, so this also bounds the
// branching factor.
const MAX_NIM_OBJECTS = 10_000

// MAX_REQUEST_BYTES caps the body of a decision request.
const MAX_REQUEST_BYTES = 64 << 10
