package messenger

import (
	"encoding/json"
	"strings"
)

// Button limits.
const (
	MaxButtonTitle   = 20
	MaxButtonPayload = 1000
)

// ButtonType is the wire tag of a button.
type ButtonType string

const (
	ButtonWebURL   ButtonType = "web_url"
	ButtonPostback ButtonType = "postback"
	ButtonShare    ButtonType = "element_share"
	ButtonBuy      ButtonType = "payment"
	ButtonCall     ButtonType = "phone_number"
	ButtonLogIn    ButtonType = "account_link"
	ButtonLogOut   ButtonType = "account_unlink"
	ButtonGamePlay ButtonType = "game_play"
)

// Button is one of the button variants defined in this package.
type Button interface {
	ButtonType() ButtonType
	Validate() error
	isButton()
}

func withType(tag ButtonType, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	typ, _ := json.Marshal(tag)
	if string(data) == "{}" {
		return []byte(`{"type":` + string(typ) + `}`), nil
	}
	return append([]byte(`{"type":`+string(typ)+`,`), data[1:]...), nil
}

// URLButton opens a webpage in the Messenger webview.
type URLButton struct {
	Title               string             `json:"title"`
	URL                 string             `json:"url"`
	WebviewHeightRatio  WebviewHeightRatio `json:"webview_height_ratio,omitempty"`
	MessengerExtensions *bool              `json:"messenger_extensions,omitempty"`
	FallbackURL         string             `json:"fallback_url,omitempty"`
	WebviewShareButton  string             `json:"webview_share_button,omitempty"`
}

func (URLButton) isButton()              {}
func (URLButton) ButtonType() ButtonType { return ButtonWebURL }

func (b URLButton) MarshalJSON() ([]byte, error) {
	type plain URLButton
	return withType(ButtonWebURL, plain(b))
}

func (b URLButton) Validate() error {
	var p problems
	p.required("title", b.Title)
	p.maxLen("title", b.Title, MaxButtonTitle)
	validateWebview(&p, b.URL, b.WebviewHeightRatio, b.MessengerExtensions, b.FallbackURL, b.WebviewShareButton)
	return p.err()
}

func validateWebview(p *problems, url string, ratio WebviewHeightRatio, extensions *bool, fallback, share string) {
	p.required("url", url)
	if ratio != "" && !oneOf(ratio, WebviewCompact, WebviewTall, WebviewFull) {
		p.add(KindInvalid, "webview_height_ratio", "unknown ratio %q", ratio)
	}
	withExtensions := extensions != nil && *extensions
	if fallback != "" && !withExtensions {
		p.add(KindConflict, "fallback_url", "is only allowed with messenger_extensions")
	}
	if withExtensions && !strings.HasPrefix(url, "https://") {
		p.add(KindInvalid, "url", "must use https with messenger_extensions")
	}
	if share != "" && share != WebviewShareHide {
		p.add(KindInvalid, "webview_share_button", "only %q is accepted", WebviewShareHide)
	}
}

// PostbackButton sends a postback webhook event when tapped.
type PostbackButton struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

func (PostbackButton) isButton()              {}
func (PostbackButton) ButtonType() ButtonType { return ButtonPostback }

func (b PostbackButton) MarshalJSON() ([]byte, error) {
	type plain PostbackButton
	return withType(ButtonPostback, plain(b))
}

func (b PostbackButton) Validate() error {
	var p problems
	p.required("title", b.Title)
	p.maxLen("title", b.Title, MaxButtonTitle)
	p.required("payload", b.Payload)
	p.maxLen("payload", b.Payload, MaxButtonPayload)
	return p.err()
}

// ShareButton lets the recipient share the message. ShareContents replaces
// the shared content with a generic template holding at most one URL button.
type ShareButton struct {
	ShareContents *GenericTemplate
}

func (ShareButton) isButton()              {}
func (ShareButton) ButtonType() ButtonType { return ButtonShare }

func (b ShareButton) MarshalJSON() ([]byte, error) {
	type contents struct {
		Attachment *Attachment `json:"attachment"`
	}
	var body struct {
		ShareContents *contents `json:"share_contents,omitempty"`
	}
	if b.ShareContents != nil {
		body.ShareContents = &contents{Attachment: TemplateAttachment(*b.ShareContents)}
	}
	return withType(ButtonShare, body)
}

func (b ShareButton) Validate() error {
	if b.ShareContents == nil {
		return nil
	}
	var p problems
	p.nest("share_contents", b.ShareContents.Validate())
	refs := b.ShareContents.buttonRefs()
	if len(refs) > 1 {
		p.add(KindLimit, "share_contents", "allows at most one button, has %d", len(refs))
	}
	for _, ref := range refs {
		if ref.button.ButtonType() != ButtonWebURL {
			p.add(KindCompatibility, "share_contents."+ref.path, "only web_url buttons may be shared, got %s", ref.button.ButtonType())
		}
	}
	return p.err()
}

// PriceItem is a checkout dialog line item.
type PriceItem struct {
	Label  string `json:"label"`
	Amount Amount `json:"amount"`
}

// PaymentSummary configures the checkout dialog of a buy button.
type PaymentSummary struct {
	Currency          string          `json:"currency"`
	PaymentType       PaymentType     `json:"payment_type"`
	IsTestPayment     *bool           `json:"is_test_payment,omitempty"`
	MerchantName      string          `json:"merchant_name"`
	RequestedUserInfo []UserInfoField `json:"requested_user_info,omitempty"`
	PriceList         []PriceItem     `json:"price_list"`
}

func (s PaymentSummary) Validate() error {
	var p problems
	p.required("currency", s.Currency)
	p.required("merchant_name", s.MerchantName)
	if !oneOf(s.PaymentType, PaymentFixedAmount, PaymentFlexibleAmount) {
		p.add(KindInvalid, "payment_type", "unknown payment type %q", s.PaymentType)
	}
	for i, f := range s.RequestedUserInfo {
		if !oneOf(f, UserInfoShippingAddress, UserInfoContactName, UserInfoContactPhone, UserInfoContactEmail) {
			p.add(KindInvalid, indexed("requested_user_info", i), "unknown field %q", f)
		}
	}
	p.count("price_list", len(s.PriceList), 1, 0)
	for i, item := range s.PriceList {
		p.required(indexed("price_list", i)+".label", item.Label)
	}
	return p.err()
}

// BuyButton starts the in-conversation payment flow.
type BuyButton struct {
	Title          string         `json:"title"`
	Payload        string         `json:"payload"`
	PaymentSummary PaymentSummary `json:"payment_summary"`
}

func (BuyButton) isButton()              {}
func (BuyButton) ButtonType() ButtonType { return ButtonBuy }

func (b BuyButton) MarshalJSON() ([]byte, error) {
	type plain BuyButton
	return withType(ButtonBuy, plain(b))
}

func (b BuyButton) Validate() error {
	var p problems
	p.required("title", b.Title)
	p.required("payload", b.Payload)
	p.nest("payment_summary", b.PaymentSummary.Validate())
	return p.err()
}

// CallButton dials a phone number in +E.164 form.
type CallButton struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

func (CallButton) isButton()              {}
func (CallButton) ButtonType() ButtonType { return ButtonCall }

func (b CallButton) MarshalJSON() ([]byte, error) {
	type plain CallButton
	return withType(ButtonCall, plain(b))
}

func (b CallButton) Validate() error {
	var p problems
	p.required("title", b.Title)
	p.maxLen("title", b.Title, MaxButtonTitle)
	if !isE164(b.Payload) {
		p.add(KindInvalid, "payload", "must be + followed by the country code and number, got %q", b.Payload)
	}
	return p.err()
}

func isE164(s string) bool {
	digits, ok := strings.CutPrefix(s, "+")
	if !ok || len(digits) < 2 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LogInButton starts account linking.
type LogInButton struct {
	URL string `json:"url"`
}

func (LogInButton) isButton()              {}
func (LogInButton) ButtonType() ButtonType { return ButtonLogIn }

func (b LogInButton) MarshalJSON() ([]byte, error) {
	type plain LogInButton
	return withType(ButtonLogIn, plain(b))
}

func (b LogInButton) Validate() error {
	var p problems
	if !strings.HasPrefix(b.URL, "https://") {
		p.add(KindInvalid, "url", "must be an https callback url")
	}
	return p.err()
}

// LogOutButton unlinks an account.
type LogOutButton struct{}

func (LogOutButton) isButton()              {}
func (LogOutButton) ButtonType() ButtonType { return ButtonLogOut }
func (LogOutButton) Validate() error        { return nil }

func (LogOutButton) MarshalJSON() ([]byte, error) {
	return withType(ButtonLogOut, struct{}{})
}

// GameMetadata targets an Instant Game player or thread.
type GameMetadata struct {
	PlayerID  string `json:"player_id,omitempty"`
	ContextID string `json:"context_id,omitempty"`
}

// GamePlayButton launches the page's Instant Game.
type GamePlayButton struct {
	Title        string        `json:"title"`
	Payload      string        `json:"payload,omitempty"`
	GameMetadata *GameMetadata `json:"game_metadata,omitempty"`
}

func (GamePlayButton) isButton()              {}
func (GamePlayButton) ButtonType() ButtonType { return ButtonGamePlay }

func (b GamePlayButton) MarshalJSON() ([]byte, error) {
	type plain GamePlayButton
	return withType(ButtonGamePlay, plain(b))
}

func (b GamePlayButton) Validate() error {
	var p problems
	p.required("title", b.Title)
	p.maxLen("title", b.Title, MaxButtonTitle)
	if m := b.GameMetadata; m != nil && m.PlayerID != "" && m.ContextID != "" {
		p.add(KindConflict, "game_metadata", "player_id and context_id are mutually exclusive")
	}
	return p.err()
}

func validateButtons(p *problems, field string, buttons []Button, max int) {
	p.count(field, len(buttons), 0, max)
	for i, b := range buttons {
		if b == nil {
			p.add(KindRequired, indexed(field, i), "is nil")
			continue
		}
		p.nest(indexed(field, i), b.Validate())
	}
}
