package signalling

import _ "embed"

// playerPage is the static HTML client served to any non-upgrade request.
//
//go:embed asset/player.html
var playerPage string
