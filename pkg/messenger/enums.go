package messenger

// MessagingType states why a message is being sent.
type MessagingType string

const (
	MessagingResponse   MessagingType = "RESPONSE"
	MessagingUpdate     MessagingType = "UPDATE"
	MessagingMessageTag MessagingType = "MESSAGE_TAG"
)

// MessageTag allows sending outside the standard messaging window.
type MessageTag string

const (
	TagCommunityAlert             MessageTag = "COMMUNITY_ALERT"
	TagConfirmedEventReminder     MessageTag = "CONFIRMED_EVENT_REMINDER"
	TagNonPromotionalSubscription MessageTag = "NON_PROMOTIONAL_SUBSCRIPTION"
	TagPairingUpdate              MessageTag = "PAIRING_UPDATE"
	TagApplicationUpdate          MessageTag = "APPLICATION_UPDATE"
	TagAccountUpdate              MessageTag = "ACCOUNT_UPDATE"
	TagPaymentUpdate              MessageTag = "PAYMENT_UPDATE"
	TagPersonalFinanceUpdate      MessageTag = "PERSONAL_FINANCE_UPDATE"
	TagShippingUpdate             MessageTag = "SHIPPING_UPDATE"
	TagReservationUpdate          MessageTag = "RESERVATION_UPDATE"
	TagIssueResolution            MessageTag = "ISSUE_RESOLUTION"
	TagAppointmentUpdate          MessageTag = "APPOINTMENT_UPDATE"
	TagGameEvent                  MessageTag = "GAME_EVENT"
	TagTransportationUpdate       MessageTag = "TRANSPORTATION_UPDATE"
	TagFeatureFunctionalityUpdate MessageTag = "FEATURE_FUNCTIONALITY_UPDATE"
	TagTicketUpdate               MessageTag = "TICKET_UPDATE"
)

// MessageTags lists every tag the builder accepts.
var MessageTags = []MessageTag{
	TagCommunityAlert, TagConfirmedEventReminder, TagNonPromotionalSubscription,
	TagPairingUpdate, TagApplicationUpdate, TagAccountUpdate, TagPaymentUpdate,
	TagPersonalFinanceUpdate, TagShippingUpdate, TagReservationUpdate,
	TagIssueResolution, TagAppointmentUpdate, TagGameEvent,
	TagTransportationUpdate, TagFeatureFunctionalityUpdate, TagTicketUpdate,
}

// NotificationType controls the push notification.
type NotificationType string

const (
	NotificationRegular    NotificationType = "REGULAR"
	NotificationSilentPush NotificationType = "SILENT_PUSH"
	NotificationNoPush     NotificationType = "NO_PUSH"
)

// SenderAction is a typing or read indicator.
type SenderAction string

const (
	ActionTypingOn  SenderAction = "typing_on"
	ActionTypingOff SenderAction = "typing_off"
	ActionMarkSeen  SenderAction = "mark_seen"
)

// AttachmentType is the kind of an attachment.
type AttachmentType string

const (
	AttachmentImage    AttachmentType = "image"
	AttachmentAudio    AttachmentType = "audio"
	AttachmentVideo    AttachmentType = "video"
	AttachmentFile     AttachmentType = "file"
	AttachmentTemplate AttachmentType = "template"
)

func (t AttachmentType) isMedia() bool {
	return oneOf(t, AttachmentImage, AttachmentAudio, AttachmentVideo, AttachmentFile)
}

// ContentType is the kind of a quick reply.
type ContentType string

const (
	ContentText            ContentType = "text"
	ContentLocation        ContentType = "location"
	ContentUserPhoneNumber ContentType = "user_phone_number"
	ContentUserEmail       ContentType = "user_email"
)

// WebviewHeightRatio sizes the webview opened by a URL button.
type WebviewHeightRatio string

const (
	WebviewCompact WebviewHeightRatio = "compact"
	WebviewTall    WebviewHeightRatio = "tall"
	WebviewFull    WebviewHeightRatio = "full"
)

// WebviewShareHide disables the webview share button.
const WebviewShareHide = "hide"

// TopElementStyle formats the first list item.
type TopElementStyle string

const (
	TopElementCompact TopElementStyle = "compact"
	TopElementLarge   TopElementStyle = "large"
)

// ImageAspectRatio for generic template images.
type ImageAspectRatio string

const (
	AspectHorizontal ImageAspectRatio = "horizontal"
	AspectSquare     ImageAspectRatio = "square"
)

// PaymentType of a buy button.
type PaymentType string

const (
	PaymentFixedAmount    PaymentType = "FIXED_AMOUNT"
	PaymentFlexibleAmount PaymentType = "FLEXIBLE_AMOUNT"
)

// UserInfoField is information requested in the checkout dialog.
type UserInfoField string

const (
	UserInfoShippingAddress UserInfoField = "shipping_address"
	UserInfoContactName     UserInfoField = "contact_name"
	UserInfoContactPhone    UserInfoField = "contact_phone"
	UserInfoContactEmail    UserInfoField = "contact_email"
)

// MediaType of a media template element.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// FlightUpdateType of an airline update template.
type FlightUpdateType string

const (
	FlightDelay        FlightUpdateType = "delay"
	FlightGateChange   FlightUpdateType = "gate_change"
	FlightCancellation FlightUpdateType = "cancellation"
)
