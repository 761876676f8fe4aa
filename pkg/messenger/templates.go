package messenger

import (
	"encoding/json"
	"strings"
)

// Template limits.
const (
	MaxGenericElements     = 10
	MaxElementButtons      = 3
	MaxElementTitle        = 80
	MaxElementSubtitle     = 80
	MinListElements        = 2
	MaxListElements        = 4
	MaxButtonTemplateText  = 640
	MaxButtonTemplateItems = 3
	MaxReceiptElements     = 100
)

// Template is one of the structured message templates defined in this
// package. It is carried as the payload of a template attachment.
type Template interface {
	Payload
	TemplateType() TemplateType
	buttonRefs() []buttonRef
}

func withTemplateType(tag TemplateType, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	typ, _ := json.Marshal(tag)
	if string(data) == "{}" {
		return []byte(`{"template_type":` + string(typ) + `}`), nil
	}
	return append([]byte(`{"template_type":`+string(typ)+`,`), data[1:]...), nil
}

// DefaultAction opens a URL when an element is tapped. It takes the URL
// button fields except the title.
type DefaultAction struct {
	URL                 string             `json:"url"`
	WebviewHeightRatio  WebviewHeightRatio `json:"webview_height_ratio,omitempty"`
	MessengerExtensions *bool              `json:"messenger_extensions,omitempty"`
	FallbackURL         string             `json:"fallback_url,omitempty"`
	WebviewShareButton  string             `json:"webview_share_button,omitempty"`
}

func (d DefaultAction) MarshalJSON() ([]byte, error) {
	type plain DefaultAction
	return withType(ButtonWebURL, plain(d))
}

func (d DefaultAction) Validate() error {
	var p problems
	validateWebview(&p, d.URL, d.WebviewHeightRatio, d.MessengerExtensions, d.FallbackURL, d.WebviewShareButton)
	return p.err()
}

// GenericElement is one bubble of a generic or list template.
type GenericElement struct {
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	DefaultAction *DefaultAction `json:"default_action,omitempty"`
	Buttons       []Button       `json:"buttons,omitempty"`
}

func (e GenericElement) Validate() error {
	var p problems
	p.required("title", e.Title)
	p.maxLen("title", e.Title, MaxElementTitle)
	p.maxLen("subtitle", e.Subtitle, MaxElementSubtitle)
	if e.DefaultAction != nil {
		p.nest("default_action", e.DefaultAction.Validate())
	}
	validateButtons(&p, "buttons", e.Buttons, MaxElementButtons)
	return p.err()
}

func elementButtons(field string, elements []GenericElement) []buttonRef {
	var refs []buttonRef
	for i, e := range elements {
		refs = append(refs, collectButtons(indexed(field, i)+".buttons", e.Buttons)...)
	}
	return refs
}

// GenericTemplate is a carousel of up to ten elements.
type GenericTemplate struct {
	ImageAspectRatio ImageAspectRatio `json:"image_aspect_ratio,omitempty"`
	Sharable         *bool            `json:"sharable,omitempty"`
	Elements         []GenericElement `json:"elements"`
}

func (GenericTemplate) isPayload()                 {}
func (GenericTemplate) TemplateType() TemplateType { return TemplateGeneric }

func (t GenericTemplate) buttonRefs() []buttonRef { return elementButtons("elements", t.Elements) }

func (t GenericTemplate) MarshalJSON() ([]byte, error) {
	type plain GenericTemplate
	return withTemplateType(TemplateGeneric, plain(t))
}

func (t GenericTemplate) Validate() error {
	var p problems
	if t.ImageAspectRatio != "" && !oneOf(t.ImageAspectRatio, AspectHorizontal, AspectSquare) {
		p.add(KindInvalid, "image_aspect_ratio", "unknown ratio %q", t.ImageAspectRatio)
	}
	p.count("elements", len(t.Elements), 1, MaxGenericElements)
	for i, e := range t.Elements {
		p.nest(indexed("elements", i), e.Validate())
	}
	checkCompatibility(&p, t)
	return p.err()
}

// ListTemplate renders two to four items vertically.
type ListTemplate struct {
	TopElementStyle TopElementStyle  `json:"top_element_style,omitempty"`
	Elements        []GenericElement `json:"elements"`
	Buttons         []Button         `json:"buttons,omitempty"`
	Sharable        *bool            `json:"sharable,omitempty"`
}

func (ListTemplate) isPayload()                 {}
func (ListTemplate) TemplateType() TemplateType { return TemplateList }

func (t ListTemplate) buttonRefs() []buttonRef {
	return append(elementButtons("elements", t.Elements), collectButtons("buttons", t.Buttons)...)
}

func (t ListTemplate) MarshalJSON() ([]byte, error) {
	type plain ListTemplate
	return withTemplateType(TemplateList, plain(t))
}

func (t ListTemplate) Validate() error {
	var p problems
	if t.TopElementStyle != "" && !oneOf(t.TopElementStyle, TopElementCompact, TopElementLarge) {
		p.add(KindInvalid, "top_element_style", "unknown style %q", t.TopElementStyle)
	}
	p.count("elements", len(t.Elements), MinListElements, MaxListElements)
	for i, e := range t.Elements {
		p.nest(indexed("elements", i), e.Validate())
	}
	validateButtons(&p, "buttons", t.Buttons, 1)
	checkCompatibility(&p, t)
	return p.err()
}

// ButtonTemplate is text followed by one to three buttons.
type ButtonTemplate struct {
	Text     string   `json:"text"`
	Buttons  []Button `json:"buttons"`
	Sharable *bool    `json:"sharable,omitempty"`
}

func (ButtonTemplate) isPayload()                 {}
func (ButtonTemplate) TemplateType() TemplateType { return TemplateButton }

func (t ButtonTemplate) buttonRefs() []buttonRef { return collectButtons("buttons", t.Buttons) }

func (t ButtonTemplate) MarshalJSON() ([]byte, error) {
	type plain ButtonTemplate
	return withTemplateType(TemplateButton, plain(t))
}

func (t ButtonTemplate) Validate() error {
	var p problems
	p.required("text", t.Text)
	p.maxLen("text", t.Text, MaxButtonTemplateText)
	p.count("buttons", len(t.Buttons), 1, MaxButtonTemplateItems)
	validateButtons(&p, "buttons", t.Buttons, 0)
	checkCompatibility(&p, t)
	return p.err()
}

// OpenGraphElement references an Open Graph URL, such as a song.
type OpenGraphElement struct {
	URL     string   `json:"url"`
	Buttons []Button `json:"buttons,omitempty"`
}

func (e OpenGraphElement) Validate() error {
	var p problems
	p.required("url", e.URL)
	validateButtons(&p, "buttons", e.Buttons, MaxElementButtons)
	return p.err()
}

// OpenGraphTemplate shares one Open Graph object.
type OpenGraphTemplate struct {
	Elements []OpenGraphElement `json:"elements"`
}

func (OpenGraphTemplate) isPayload()                 {}
func (OpenGraphTemplate) TemplateType() TemplateType { return TemplateOpenGraph }

func (t OpenGraphTemplate) buttonRefs() []buttonRef {
	var refs []buttonRef
	for i, e := range t.Elements {
		refs = append(refs, collectButtons(indexed("elements", i)+".buttons", e.Buttons)...)
	}
	return refs
}

func (t OpenGraphTemplate) MarshalJSON() ([]byte, error) {
	type plain OpenGraphTemplate
	return withTemplateType(TemplateOpenGraph, plain(t))
}

func (t OpenGraphTemplate) Validate() error {
	var p problems
	p.count("elements", len(t.Elements), 1, 1)
	for i, e := range t.Elements {
		p.nest(indexed("elements", i), e.Validate())
	}
	checkCompatibility(&p, t)
	return p.err()
}

// ReceiptElement is one purchased item.
type ReceiptElement struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Quantity *int   `json:"quantity,omitempty"`
	Price    Amount `json:"price"`
	Currency string `json:"currency,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Summary totals a receipt.
type Summary struct {
	Subtotal     *Amount `json:"subtotal,omitempty"`
	ShippingCost *Amount `json:"shipping_cost,omitempty"`
	TotalTax     *Amount `json:"total_tax,omitempty"`
	TotalCost    Amount  `json:"total_cost"`
}

// Address is a shipping address.
type Address struct {
	Street1    string `json:"street_1"`
	Street2    string `json:"street_2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

func (a Address) Validate() error {
	var p problems
	p.required("street_1", a.Street1)
	p.required("city", a.City)
	p.required("postal_code", a.PostalCode)
	p.required("state", a.State)
	p.required("country", a.Country)
	return p.err()
}

// Adjustment is a discount or other change to the total.
type Adjustment struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

// ReceiptTemplate is an order confirmation.
type ReceiptTemplate struct {
	Sharable      *bool            `json:"sharable,omitempty"`
	RecipientName string           `json:"recipient_name"`
	MerchantName  string           `json:"merchant_name,omitempty"`
	OrderNumber   string           `json:"order_number"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"payment_method"`
	Timestamp     string           `json:"timestamp,omitempty"`
	OrderURL      string           `json:"order_url,omitempty"`
	Elements      []ReceiptElement `json:"elements,omitempty"`
	Address       *Address         `json:"address,omitempty"`
	Summary       Summary          `json:"summary"`
	Adjustments   []Adjustment     `json:"adjustments,omitempty"`
}

func (ReceiptTemplate) isPayload()                 {}
func (ReceiptTemplate) TemplateType() TemplateType { return TemplateReceipt }
func (ReceiptTemplate) buttonRefs() []buttonRef    { return nil }

func (t ReceiptTemplate) MarshalJSON() ([]byte, error) {
	type plain ReceiptTemplate
	return withTemplateType(TemplateReceipt, plain(t))
}

func (t ReceiptTemplate) Validate() error {
	var p problems
	p.required("recipient_name", t.RecipientName)
	p.required("order_number", t.OrderNumber)
	p.required("currency", t.Currency)
	p.required("payment_method", t.PaymentMethod)
	p.count("elements", len(t.Elements), 0, MaxReceiptElements)
	for i, e := range t.Elements {
		field := indexed("elements", i)
		p.required(field+".title", e.Title)
		if e.Quantity != nil && *e.Quantity < 0 {
			p.add(KindInvalid, field+".quantity", "must not be negative")
		}
	}
	if t.Address != nil {
		p.nest("address", t.Address.Validate())
	}
	for i, a := range t.Adjustments {
		p.required(indexed("adjustments", i)+".name", a.Name)
	}
	if t.Summary.TotalCost.IsNegative() {
		p.add(KindInvalid, "summary.total_cost", "must not be negative")
	}
	return p.err()
}

// MediaElement is the single element of a media template.
type MediaElement struct {
	MediaType    MediaType `json:"media_type"`
	URL          string    `json:"url,omitempty"`
	AttachmentID string    `json:"attachment_id,omitempty"`
	Buttons      []Button  `json:"buttons,omitempty"`
}

func (e MediaElement) Validate() error {
	var p problems
	if !oneOf(e.MediaType, MediaImage, MediaVideo) {
		p.add(KindInvalid, "media_type", "unknown media type %q", e.MediaType)
	}
	switch {
	case e.URL == "" && e.AttachmentID == "":
		p.add(KindRequired, "", "url or attachment_id is required")
	case e.URL != "" && e.AttachmentID != "":
		p.add(KindConflict, "attachment_id", "cannot be combined with url")
	case e.URL != "" && !strings.Contains(e.URL, "facebook.com"):
		p.add(KindInvalid, "url", "must be a facebook.com media url")
	}
	validateButtons(&p, "buttons", e.Buttons, 1)
	return p.err()
}

// MediaTemplate shows one image or video with an optional button.
type MediaTemplate struct {
	Sharable *bool          `json:"sharable,omitempty"`
	Elements []MediaElement `json:"elements"`
}

func (MediaTemplate) isPayload()                 {}
func (MediaTemplate) TemplateType() TemplateType { return TemplateMedia }

func (t MediaTemplate) buttonRefs() []buttonRef {
	var refs []buttonRef
	for i, e := range t.Elements {
		refs = append(refs, collectButtons(indexed("elements", i)+".buttons", e.Buttons)...)
	}
	return refs
}

func (t MediaTemplate) MarshalJSON() ([]byte, error) {
	type plain MediaTemplate
	return withTemplateType(TemplateMedia, plain(t))
}

func (t MediaTemplate) Validate() error {
	var p problems
	p.count("elements", len(t.Elements), 1, 1)
	for i, e := range t.Elements {
		p.nest(indexed("elements", i), e.Validate())
	}
	checkCompatibility(&p, t)
	return p.err()
}
