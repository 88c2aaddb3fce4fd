package enum

type DocumentType string

const (
	DocumentInvoices DocumentType = "Invoices"
	DocumentResumes  DocumentType = "Resumes"
	DocumentReports  DocumentType = "Reports"
	DocumentOthers   DocumentType = "Others"
)

func (t DocumentType) String() string {
	return string(t)
}
