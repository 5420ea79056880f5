// Package all registers every built-in storage backend with the factory.
// Import it for side effects from binaries and tests that pick a backend by
// configured kind:
//
//	import _ "csvingest/internal/storage/all"
package all

import (
	_ "csvingest/internal/storage/mysql"
	_ "csvingest/internal/storage/postgres"
	_ "csvingest/internal/storage/sqlite"
)
