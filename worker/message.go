package worker

import "github.com/phanxgames/glyphscape/dataset"

// RequestType names a worker request.
type RequestType string

// Requests understood by a worker.
const (
	RequestProcess  RequestType = "process"
	RequestUnzip    RequestType = "unzip"
	RequestGetJSON  RequestType = "getJson"
	RequestGetThumb RequestType = "getThumb"
)

// ReplyType names a worker reply.
type ReplyType string

// Replies sent by a worker.
const (
	ReplyProcessed ReplyType = "processed"
	ReplyUnzipped  ReplyType = "unzipped"
	ReplyJSON      ReplyType = "json"
	ReplyThumb     ReplyType = "thumb"
	ReplyError     ReplyType = "error"
)

// Request is one message to the worker. Data carries the uploaded file
// for process and unzip.
type Request struct {
	Type RequestType
	File string
	Data []byte
}

// Reply is one message from the worker. Which fields are set depends on
// Type.
type Reply struct {
	Type ReplyType
	// Seq is the sequence number of the request the reply answers.
	Seq uint64

	File    string
	Folder  string
	Images  []string
	Dataset dataset.Collection
	// Data holds the raw JSON of a json reply or the bytes of a thumb reply.
	Data []byte
	// Message is the text of an error reply.
	Message string
}

// ReplyError is returned by Send when the worker answered the request with
// an error reply.
type ReplyError struct {
	Message string
}

func (e *ReplyError) Error() string { return "worker: " + e.Message }
