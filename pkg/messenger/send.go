package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wolfman30/fbgraph/pkg/graph"
	"github.com/wolfman30/fbgraph/pkg/logging"
)

// DefaultVersion is the Send API version used when the config sets none.
const DefaultVersion = "v2.6"

type validationObserver interface {
	ObserveValidationFailure(kind string)
}

// SendResponse is the Send API acknowledgement.
type SendResponse struct {
	RecipientID  string `json:"recipient_id,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
	AttachmentID string `json:"attachment_id,omitempty"`
}

// SendAPI sends messages on behalf of a page.
type SendAPI struct {
	dispatcher *graph.Dispatcher
	pageToken  string
	logger     *logging.Logger
	validation validationObserver
}

// NewSendAPI creates a Send API façade for a page access token.
func NewSendAPI(pageToken string, cfg graph.Config) *SendAPI {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	s := &SendAPI{
		dispatcher: graph.NewDispatcher(cfg),
		pageToken:  pageToken,
		logger:     cfg.Logger,
	}
	if obs, ok := cfg.Metrics.(validationObserver); ok {
		s.validation = obs
	}
	return s
}

func (s *SendAPI) auth() graph.Params {
	return graph.Params{"access_token": s.pageToken}
}

// Send validates and compiles req, then posts it to me/messages. A request
// that fails validation never reaches the transport.
func (s *SendAPI) Send(ctx context.Context, req *Request) (*SendResponse, error) {
	body, err := Compile(req)
	if err != nil {
		s.rejected(err)
		return nil, err
	}
	return s.SendRaw(ctx, body)
}

// SendRaw posts an already compiled body without local validation.
func (s *SendAPI) SendRaw(ctx context.Context, body json.RawMessage) (*SendResponse, error) {
	res, err := s.dispatcher.Call(ctx, graph.Call{
		Method: http.MethodPost,
		Path:   "me/messages",
		Auth:   s.auth(),
		JSON:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("messenger: send: %w", err)
	}
	return decodeSend(res)
}

// SendText sends a plain text message.
func (s *SendAPI) SendText(ctx context.Context, recipient Recipient, text string) (*SendResponse, error) {
	return s.Send(ctx, NewTextRequest(recipient, text))
}

// SendAction sends a typing indicator or read receipt.
func (s *SendAPI) SendAction(ctx context.Context, recipient Recipient, action SenderAction) (*SendResponse, error) {
	return s.Send(ctx, NewActionRequest(recipient, action))
}

// UploadAttachment saves media by URL as a reusable attachment and returns
// its id.
func (s *SendAPI) UploadAttachment(ctx context.Context, kind AttachmentType, url string) (string, error) {
	msg := Message{Attachment: &Attachment{
		Type:    kind,
		Payload: MediaPayload{URL: url, IsReusable: Bool(true)},
	}}
	if err := msg.Validate(); err != nil {
		s.rejected(err)
		return "", err
	}
	res, err := s.dispatcher.Call(ctx, graph.Call{
		Method: http.MethodPost,
		Path:   "me/message_attachments",
		Auth:   s.auth(),
		JSON:   map[string]any{"message": msg},
	})
	if err != nil {
		return "", fmt.Errorf("messenger: upload attachment: %w", err)
	}
	out, err := decodeSend(res)
	if err != nil {
		return "", err
	}
	if out.AttachmentID == "" {
		return "", errors.New("messenger: upload attachment: response carried no attachment_id")
	}
	return out.AttachmentID, nil
}

// SendFile uploads file data with the message as multipart form data.
func (s *SendAPI) SendFile(ctx context.Context, recipient Recipient, kind AttachmentType, file graph.File) (*SendResponse, error) {
	var p problems
	p.nest("recipient", recipient.Validate())
	if !kind.isMedia() {
		p.add(KindInvalid, "message.attachment.type", "file uploads need image, audio, video or file, got %q", kind)
	}
	if len(file.Data) == 0 {
		p.add(KindRequired, "filedata", "is empty")
	}
	if err := p.err(); err != nil {
		s.rejected(err)
		return nil, err
	}

	recipientJSON, err := json.Marshal(recipient)
	if err != nil {
		return nil, fmt.Errorf("messenger: marshal recipient: %w", err)
	}
	messageJSON, err := json.Marshal(map[string]any{
		"attachment": map[string]any{
			"type":    kind,
			"payload": map[string]any{"is_reusable": true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("messenger: marshal message: %w", err)
	}

	res, err := s.dispatcher.Call(ctx, graph.Call{
		Method: http.MethodPost,
		Path:   "me/messages",
		Auth:   s.auth(),
		Extra: graph.Params{
			"recipient": string(recipientJSON),
			"message":   string(messageJSON),
		},
		Files: map[string]graph.File{"filedata": file},
	})
	if err != nil {
		return nil, fmt.Errorf("messenger: send file: %w", err)
	}
	return decodeSend(res)
}

// PageMessageTags lists the message tags currently supported.
func (s *SendAPI) PageMessageTags(ctx context.Context) (*graph.Result, error) {
	return s.dispatcher.Call(ctx, graph.Call{
		Method: http.MethodGet,
		Path:   "page_message_tags",
		Auth:   s.auth(),
	})
}

func (s *SendAPI) rejected(err error) {
	violations := ValidationErrors(err)
	for _, v := range violations {
		if s.validation != nil {
			s.validation.ObserveValidationFailure(v.Kind)
		}
	}
	s.logger.Debug("message rejected before send", "violations", len(violations), "error", err)
}

func decodeSend(res *graph.Result) (*SendResponse, error) {
	var out SendResponse
	if len(res.Raw) == 0 {
		return &out, nil
	}
	if err := res.Decode(&out); err != nil {
		return nil, fmt.Errorf("messenger: %w", err)
	}
	return &out, nil
}
