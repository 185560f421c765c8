package document

type UploadInput struct {
	FileName     string
	ContentType  string
	DocumentType string
	Data         []byte
}
