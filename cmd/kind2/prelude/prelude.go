// Package prelude holds the program the driver compiles ahead of every user
// file. It defines the entry points Kind2.Run, Kind2.Check and Kind2.Compile.
package prelude

import _ "embed"

// Version identifies the embedded program. Bump it whenever kind2.hvm changes.
const Version = "0.3.0"

//go:embed kind2.hvm
var Source string
