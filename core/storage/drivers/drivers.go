// Package drivers registers every bundled storage driver. Import it for
// its side effects:
//
//	import _ "objectfs/core/storage/drivers"
package drivers

import (
	_ "objectfs/core/storage/file"
	_ "objectfs/core/storage/mem"
	_ "objectfs/core/storage/minio"
	_ "objectfs/core/storage/s3"
	_ "objectfs/core/storage/sqlblob"
)
