package domain

// MediaBlob is request-owned binary input or output. Never persisted.
type MediaBlob struct {
	Data     []byte
	MIMEType string
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Turn is one entry of the recent conversation slice sent by the client, oldest first.
type Turn struct {
	Sender Sender
	Text   string
}

// InboundMessage is immutable for the lifetime of one request.
type InboundMessage struct {
	Text      string
	Audio     *MediaBlob
	Image     *MediaBlob
	History   []Turn
	Mode      Mode
	Principal Principal
	Speak     bool
}

// HasMedia reports whether the turn carries audio or an image.
func (m InboundMessage) HasMedia() bool {
	return m.Audio != nil || m.Image != nil
}

// Citation is stored content surfaced as evidence. Similarity is in [0,1].
type Citation struct {
	EntityID   string
	EntityType EntityType
	Snippet    string
	Similarity float64
}

// PipelineResponse is built once at the end of a turn.
type PipelineResponse struct {
	Reply         string
	Citations     []Citation
	Transcript    string
	ActionResults []ActionResult
	ReplyAudio    *MediaBlob
}
