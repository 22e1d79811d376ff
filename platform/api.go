package platform

const (
	GatewayReportResource = "/chequebase-ai-getExpenseReport"
	GatewayUploadResource = "/chequebase-ai-uploadToS3"
)

const (
	UploadServiceAPIPresignResource = "/presign"
	UploadServiceAPIUploadResource  = "/upload"
)

const (
	RecognitionServiceAPIProcessResource = "/process"
	RecognitionServiceAPIStatusResource  = "/status"
)

const (
	ReportServiceAPIFetchResource = "/report/fetch"
)

const (
	ImportSocketAPIConnectResource = "/import/connect"
	ImportServiceAPIPushResource   = "/session/push"
)
