package models

// EmailMessage is the transport-independent view of a fetched message.
// Header values are kept raw; date parsing happens at filename synthesis.
type EmailMessage struct {
	Subject string
	Sender  string
	Date    string
	Parts   []MessagePart
}

// MessagePart is a single MIME part of a message. Parts without a filename
// or a content disposition are never attachment candidates.
type MessagePart struct {
	Filename             string
	HasDisposition       bool
	Content              []byte
	IsMultipartContainer bool
}

// AttachmentCandidate is a part that passed the structural, extension, size
// and dedup gates. It lives only for the duration of one pipeline pass.
type AttachmentCandidate struct {
	Filename    string
	Content     []byte
	ContentHash string
}
