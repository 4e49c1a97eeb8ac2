package constants

// User-facing messages.
const (
	MsgUploadSuccess  = "CV uploaded successfully! Processing your roast..."
	MsgReviewNotFound = "Review not found. Please upload your CV again."
	MsgInvalidType    = "Please upload a PDF file only."
	MsgFileTooLarge   = "File size exceeds the maximum upload limit."
	MsgEmptyUpload    = "Uploaded file is empty."
	MsgNotCompleted   = "Review is not completed yet."
)

// Failure reasons stored on FAILED jobs.
const (
	ReasonExtractionEmpty  = "extraction produced no content"
	ReasonExtractionFailed = "text extraction failed"
	ReasonGenerationFailed = "review generation failed"
	ReasonShuttingDown     = "service shutting down"
)
