// Package messenger models Send API request bodies as typed values and sends
// them through the graph dispatcher. Every value validates locally, so an
// invalid message (an incompatible button inside a template, a recipient
// with no identifier) is rejected before anything reaches the network.
package messenger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Send API limits.
const (
	MaxTextLength        = 2000
	MaxMetadataLength    = 1000
	MaxQuickReplies      = 13
	MaxQuickReplyTitle   = 20
	MaxQuickReplyPayload = 1000
)

// RecipientName helps phone number matching.
type RecipientName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Recipient identifies who receives a message. Exactly one of ID,
// PhoneNumber and UserRef must be set.
type Recipient struct {
	ID          string         `json:"id,omitempty"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	UserRef     string         `json:"user_ref,omitempty"`
	Name        *RecipientName `json:"name,omitempty"`
}

// RecipientID addresses a page-scoped id.
func RecipientID(psid string) Recipient { return Recipient{ID: psid} }

// RecipientPhone addresses a phone number, optionally with a name to improve
// matching.
func RecipientPhone(phone string, name *RecipientName) Recipient {
	return Recipient{PhoneNumber: phone, Name: name}
}

// RecipientUserRef addresses a checkbox plugin user_ref.
func RecipientUserRef(ref string) Recipient { return Recipient{UserRef: ref} }

func (r Recipient) Validate() error {
	var p problems
	set := 0
	for _, f := range []struct{ field, value string }{
		{"id", r.ID},
		{"phone_number", r.PhoneNumber},
		{"user_ref", r.UserRef},
	} {
		if f.value == "" {
			continue
		}
		set++
		if strings.TrimSpace(f.value) == "" {
			p.add(KindRecipient, f.field, "is blank")
		}
	}
	if set != 1 {
		p.add(KindRecipient, "", "exactly one of id, phone_number or user_ref must be set, got %d", set)
	}
	if r.Name != nil && r.PhoneNumber == "" {
		p.add(KindRecipient, "name", "is only valid with phone_number")
	}
	return p.err()
}

// Request is the body POSTed to me/messages.
type Request struct {
	MessagingType    MessagingType    `json:"messaging_type,omitempty"`
	Recipient        Recipient        `json:"recipient"`
	Message          *Message         `json:"message,omitempty"`
	SenderAction     SenderAction     `json:"sender_action,omitempty"`
	NotificationType NotificationType `json:"notification_type,omitempty"`
	Tag              MessageTag       `json:"tag,omitempty"`
}

// NewTextRequest builds a plain text message request.
func NewTextRequest(recipient Recipient, text string) *Request {
	return &Request{Recipient: recipient, Message: &Message{Text: text}}
}

// NewTemplateRequest wraps a template in message.attachment.payload.
func NewTemplateRequest(recipient Recipient, tpl Template) *Request {
	return &Request{Recipient: recipient, Message: &Message{Attachment: TemplateAttachment(tpl)}}
}

// NewMediaRequest sends an image, audio, video or file attachment.
func NewMediaRequest(recipient Recipient, kind AttachmentType, payload MediaPayload) *Request {
	return &Request{Recipient: recipient, Message: &Message{Attachment: &Attachment{Type: kind, Payload: payload}}}
}

// NewActionRequest sends a sender action such as typing_on.
func NewActionRequest(recipient Recipient, action SenderAction) *Request {
	return &Request{Recipient: recipient, SenderAction: action}
}

func (r Request) Validate() error {
	var p problems
	p.nest("recipient", r.Recipient.Validate())

	switch {
	case r.Message == nil && r.SenderAction == "":
		p.add(KindRequired, "", "one of message or sender_action is required")
	case r.Message != nil && r.SenderAction != "":
		p.add(KindConflict, "sender_action", "cannot be sent with message")
	case r.Message != nil:
		p.nest("message", r.Message.Validate())
	default:
		if !oneOf(r.SenderAction, ActionTypingOn, ActionTypingOff, ActionMarkSeen) {
			p.add(KindInvalid, "sender_action", "unknown action %q", r.SenderAction)
		}
		if r.MessagingType != "" || r.NotificationType != "" || r.Tag != "" {
			p.add(KindConflict, "sender_action", "only recipient may accompany a sender action")
		}
	}

	if r.MessagingType != "" && !oneOf(r.MessagingType, MessagingResponse, MessagingUpdate, MessagingMessageTag) {
		p.add(KindInvalid, "messaging_type", "unknown type %q", r.MessagingType)
	}
	if r.NotificationType != "" && !oneOf(r.NotificationType, NotificationRegular, NotificationSilentPush, NotificationNoPush) {
		p.add(KindInvalid, "notification_type", "unknown type %q", r.NotificationType)
	}
	switch {
	case r.Tag != "" && r.MessagingType != MessagingMessageTag:
		p.add(KindConflict, "tag", "requires messaging_type %s", MessagingMessageTag)
	case r.Tag != "" && !oneOf(r.Tag, MessageTags...):
		p.add(KindInvalid, "tag", "unknown tag %q", r.Tag)
	case r.Tag == "" && r.MessagingType == MessagingMessageTag:
		p.add(KindRequired, "tag", "is required with messaging_type %s", MessagingMessageTag)
	}
	return p.err()
}

// Message is the message object. Text or Attachment must be set.
type Message struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
	Metadata     string       `json:"metadata,omitempty"`
}

func (m Message) Validate() error {
	var p problems
	if m.Text == "" && m.Attachment == nil {
		p.add(KindRequired, "", "text or attachment is required")
	}
	p.maxLen("text", m.Text, MaxTextLength)
	p.maxLen("metadata", m.Metadata, MaxMetadataLength)
	if m.Attachment != nil {
		p.nest("attachment", m.Attachment.Validate())
	}
	p.count("quick_replies", len(m.QuickReplies), 0, MaxQuickReplies)
	for i, qr := range m.QuickReplies {
		p.nest(indexed("quick_replies", i), qr.Validate())
	}
	return p.err()
}

// Payload is the body of an attachment: a MediaPayload or a Template.
type Payload interface {
	Validate() error
	isPayload()
}

// Attachment carries rich media or a template.
type Attachment struct {
	Type    AttachmentType `json:"type"`
	Payload Payload        `json:"payload"`
}

// TemplateAttachment wraps tpl as a template attachment.
func TemplateAttachment(tpl Template) *Attachment {
	return &Attachment{Type: AttachmentTemplate, Payload: tpl}
}

func (a Attachment) Validate() error {
	var p problems
	if a.Payload == nil {
		p.add(KindRequired, "payload", "is required")
		return p.err()
	}
	switch a.Payload.(type) {
	case Template:
		if a.Type != AttachmentTemplate {
			p.add(KindConflict, "type", "template payload needs type %q, got %q", AttachmentTemplate, a.Type)
		}
	default:
		if !a.Type.isMedia() {
			p.add(KindConflict, "type", "media payload needs image, audio, video or file, got %q", a.Type)
		}
	}
	p.nest("payload", a.Payload.Validate())
	return p.err()
}

// MediaPayload references media by URL or by a saved attachment id.
type MediaPayload struct {
	URL          string `json:"url,omitempty"`
	AttachmentID string `json:"attachment_id,omitempty"`
	IsReusable   *bool  `json:"is_reusable,omitempty"`
}

func (MediaPayload) isPayload() {}

func (m MediaPayload) Validate() error {
	var p problems
	switch {
	case m.URL == "" && m.AttachmentID == "":
		p.add(KindRequired, "", "url or attachment_id is required")
	case m.URL != "" && m.AttachmentID != "":
		p.add(KindConflict, "attachment_id", "cannot be combined with url")
	}
	return p.err()
}

// QuickReply is a button shown above the composer.
type QuickReply struct {
	ContentType ContentType `json:"content_type"`
	Title       string      `json:"title,omitempty"`
	Payload     string      `json:"payload,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
}

// TextQuickReply is the common text quick reply.
func TextQuickReply(title, payload string) QuickReply {
	return QuickReply{ContentType: ContentText, Title: title, Payload: payload}
}

func (q QuickReply) Validate() error {
	var p problems
	if !oneOf(q.ContentType, ContentText, ContentLocation, ContentUserPhoneNumber, ContentUserEmail) {
		p.add(KindInvalid, "content_type", "unknown content type %q", q.ContentType)
	}
	if q.ContentType == ContentText {
		p.required("title", q.Title)
		p.required("payload", q.Payload)
	}
	p.maxLen("title", q.Title, MaxQuickReplyTitle)
	p.maxLen("payload", q.Payload, MaxQuickReplyPayload)
	return p.err()
}

// Compilable is anything that can be validated and marshalled as a Send API
// body or fragment.
type Compilable interface {
	Validate() error
}

// Compile validates v and returns its wire JSON. Unset optional fields are
// absent from the output.
func Compile(v Compilable) (json.RawMessage, error) {
	if isNil(v) {
		return nil, &ValidationError{Kind: KindRequired, Reason: "nothing to compile"}
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("messenger: marshal: %w", err)
	}
	return json.RawMessage(data), nil
}

// isNil catches a nil interface as well as nil pointers to the package's
// values, whose value-receiver Validate would otherwise panic.
func isNil(v Compilable) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *Request:
		return x == nil
	case *Message:
		return x == nil
	case *Recipient:
		return x == nil
	case *Attachment:
		return x == nil
	case *MediaPayload:
		return x == nil
	case *QuickReply:
		return x == nil
	case *GenericTemplate:
		return x == nil
	case *ListTemplate:
		return x == nil
	case *ButtonTemplate:
		return x == nil
	case *OpenGraphTemplate:
		return x == nil
	case *ReceiptTemplate:
		return x == nil
	case *MediaTemplate:
		return x == nil
	case *AirlineBoardingPassTemplate:
		return x == nil
	case *AirlineCheckinTemplate:
		return x == nil
	case *AirlineItineraryTemplate:
		return x == nil
	case *AirlineFlightUpdateTemplate:
		return x == nil
	case *GenericElement:
		return x == nil
	case *URLButton:
		return x == nil
	case *PostbackButton:
		return x == nil
	case *ShareButton:
		return x == nil
	case *BuyButton:
		return x == nil
	case *CallButton:
		return x == nil
	case *LogInButton:
		return x == nil
	case *GamePlayButton:
		return x == nil
	case *LogOutButton:
		return x == nil
	case *OpenGraphElement:
		return x == nil
	case *MediaElement:
		return x == nil
	}
	return false
}
