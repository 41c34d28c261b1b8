package constant

import "time"

const (
	REQUEST_SUCCESSFUL   = "Request successful"
	REQUEST_UNSUCCESSFUL = "Request unsuccessful"
)

const (
	JWT_TYPE_ACCESS  = "access"
	JWT_TYPE_REFRESH = "refresh"
)

const QUERY_TIMEOUT_DURATION = 5 * time.Second

const DefaultPageSize uint = 20

// Upload limits for DICOM files, checked before the bytes are proxied to the
// PACS server.
const (
	MaxDicomUploadSize = 100 << 20 // 100MB
)
