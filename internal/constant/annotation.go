package constant

// ReviewStatus tracks an annotation through the review workflow.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
	ReviewStatusRevised  ReviewStatus = "revised"
)

func (rs ReviewStatus) Valid() bool {
	switch rs {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected, ReviewStatusRevised:
		return true
	}
	return false
}

// Export formats accepted by the annotation export endpoint.
type ExportFormat string

const (
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatCSV      ExportFormat = "csv"
	ExportFormatZip      ExportFormat = "zip"
	ExportFormatDicomSeg ExportFormat = "dicom-seg"
)

func (ef ExportFormat) Valid() bool {
	switch ef {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatZip, ExportFormatDicomSeg:
		return true
	}
	return false
}
