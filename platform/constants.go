package platform

const (
	CompanyIDParam    = "company_id"
	StartDateParam    = "start_date"
	EndDateParam      = "end_date"
	FilenamesParam    = "filenames"
	ObjectKeyParam    = "object_key"
	ConnectionIDParam = "connection_id"
	OrganizationParam = "organization"
)

type ProcessingStatus string

const (
	RunningProcessing  ProcessingStatus = "running"
	FailedProcessing   ProcessingStatus = "failed"
	FinishedProcessing ProcessingStatus = "finished"
)

// Object tags tracking the lifecycle of an uploaded receipt
const (
	ProcessingStatusTag = "processing-status"
	UserIDTag           = "user-id"

	TagStatusUploaded  = "uploaded"
	TagStatusProcessed = "processed"
)

const (
	// Bucket directory under {company_id}/ where generated reports are published
	ReportStorageDir = "expenseReports"

	// Suffix of objects holding recognized receipt text
	RecognizedTextSuffix = ".txt"
)

// DateFormat is the wire format for all report date parameters
const DateFormat = "2006-01-02"

/* ExpenseFieldNames lists the fields every expense record carries, in the
order they are presented for extraction */
var ExpenseFieldNames = []string{
	"Profile",
	"Business_purpose_description",
	"Expense_country",
	"Receipts_currency",
	"Total_amount",
	"Payment_date",
	"Payment_method",
	"Number_of_participants",
	"Category",
}
