package messenger

// MaxItineraryPriceInfo caps the price breakdown of an itinerary.
const MaxItineraryPriceInfo = 4

// Airport is a departure or arrival airport.
type Airport struct {
	AirportCode string `json:"airport_code"`
	City        string `json:"city"`
	Terminal    string `json:"terminal,omitempty"`
	Gate        string `json:"gate,omitempty"`
}

func (a Airport) Validate() error {
	var p problems
	p.required("airport_code", a.AirportCode)
	p.required("city", a.City)
	return p.err()
}

// FlightSchedule times are local YYYY-MM-DDThh:mm strings sent unchanged.
type FlightSchedule struct {
	BoardingTime  string `json:"boarding_time,omitempty"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
}

// FlightInfo describes one flight segment. ConnectionID, SegmentID,
// AircraftType and TravelClass are only used by itineraries.
type FlightInfo struct {
	ConnectionID     string         `json:"connection_id,omitempty"`
	SegmentID        string         `json:"segment_id,omitempty"`
	FlightNumber     string         `json:"flight_number"`
	AircraftType     string         `json:"aircraft_type,omitempty"`
	DepartureAirport Airport        `json:"departure_airport"`
	ArrivalAirport   Airport        `json:"arrival_airport"`
	FlightSchedule   FlightSchedule `json:"flight_schedule"`
	TravelClass      string         `json:"travel_class,omitempty"`
}

func (f FlightInfo) Validate() error {
	var p problems
	p.required("flight_number", f.FlightNumber)
	p.nest("departure_airport", f.DepartureAirport.Validate())
	p.nest("arrival_airport", f.ArrivalAirport.Validate())
	p.required("flight_schedule.departure_time", f.FlightSchedule.DepartureTime)
	return p.err()
}

// AuxiliaryField is a label/value pair on a boarding pass.
type AuxiliaryField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BoardingPass is one passenger's pass for one flight. Exactly one of
// QRCode and BarcodeImageURL must be set.
type BoardingPass struct {
	PassengerName        string           `json:"passenger_name"`
	PNRNumber            string           `json:"pnr_number"`
	TravelClass          string           `json:"travel_class,omitempty"`
	Seat                 string           `json:"seat,omitempty"`
	AuxiliaryFields      []AuxiliaryField `json:"auxiliary_fields,omitempty"`
	SecondaryFields      []AuxiliaryField `json:"secondary_fields,omitempty"`
	LogoImageURL         string           `json:"logo_image_url"`
	HeaderImageURL       string           `json:"header_image_url,omitempty"`
	HeaderTextField      string           `json:"header_text_field,omitempty"`
	QRCode               string           `json:"qr_code,omitempty"`
	BarcodeImageURL      string           `json:"barcode_image_url,omitempty"`
	AboveBarCodeImageURL string           `json:"above_bar_code_image_url"`
	FlightInfo           FlightInfo       `json:"flight_info"`
}

func (b BoardingPass) Validate() error {
	var p problems
	p.required("passenger_name", b.PassengerName)
	p.required("pnr_number", b.PNRNumber)
	p.required("logo_image_url", b.LogoImageURL)
	p.required("above_bar_code_image_url", b.AboveBarCodeImageURL)
	switch {
	case b.QRCode == "" && b.BarcodeImageURL == "":
		p.add(KindRequired, "", "qr_code or barcode_image_url is required")
	case b.QRCode != "" && b.BarcodeImageURL != "":
		p.add(KindConflict, "barcode_image_url", "cannot be combined with qr_code")
	}
	p.nest("flight_info", b.FlightInfo.Validate())
	return p.err()
}

// AirlineBoardingPassTemplate carries boarding passes for one or more
// passengers and flights.
type AirlineBoardingPassTemplate struct {
	IntroMessage string         `json:"intro_message"`
	Locale       string         `json:"locale"`
	ThemeColor   string         `json:"theme_color,omitempty"`
	BoardingPass []BoardingPass `json:"boarding_pass"`
}

func (AirlineBoardingPassTemplate) isPayload()                 {}
func (AirlineBoardingPassTemplate) TemplateType() TemplateType { return TemplateAirlineBoardingPass }
func (AirlineBoardingPassTemplate) buttonRefs() []buttonRef    { return nil }

func (t AirlineBoardingPassTemplate) MarshalJSON() ([]byte, error) {
	type plain AirlineBoardingPassTemplate
	return withTemplateType(TemplateAirlineBoardingPass, plain(t))
}

func (t AirlineBoardingPassTemplate) Validate() error {
	var p problems
	p.required("intro_message", t.IntroMessage)
	p.required("locale", t.Locale)
	p.count("boarding_pass", len(t.BoardingPass), 1, 0)
	for i, b := range t.BoardingPass {
		p.nest(indexed("boarding_pass", i), b.Validate())
	}
	return p.err()
}

// AirlineCheckinTemplate reminds a passenger to check in.
type AirlineCheckinTemplate struct {
	IntroMessage string       `json:"intro_message"`
	Locale       string       `json:"locale"`
	ThemeColor   string       `json:"theme_color,omitempty"`
	PNRNumber    string       `json:"pnr_number,omitempty"`
	CheckinURL   string       `json:"checkin_url"`
	FlightInfo   []FlightInfo `json:"flight_info"`
}

func (AirlineCheckinTemplate) isPayload()                 {}
func (AirlineCheckinTemplate) TemplateType() TemplateType { return TemplateAirlineCheckin }
func (AirlineCheckinTemplate) buttonRefs() []buttonRef    { return nil }

func (t AirlineCheckinTemplate) MarshalJSON() ([]byte, error) {
	type plain AirlineCheckinTemplate
	return withTemplateType(TemplateAirlineCheckin, plain(t))
}

func (t AirlineCheckinTemplate) Validate() error {
	var p problems
	p.required("intro_message", t.IntroMessage)
	p.required("locale", t.Locale)
	p.required("checkin_url", t.CheckinURL)
	p.count("flight_info", len(t.FlightInfo), 1, 0)
	for i, f := range t.FlightInfo {
		p.nest(indexed("flight_info", i), f.Validate())
	}
	return p.err()
}

// PassengerInfo identifies a passenger on an itinerary.
type PassengerInfo struct {
	PassengerID  string `json:"passenger_id"`
	TicketNumber string `json:"ticket_number,omitempty"`
	Name         string `json:"name"`
}

// ProductInfo is an extra label/value on a passenger segment.
type ProductInfo struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// PassengerSegmentInfo holds what is unique to a passenger on a segment.
type PassengerSegmentInfo struct {
	SegmentID   string        `json:"segment_id"`
	PassengerID string        `json:"passenger_id"`
	Seat        string        `json:"seat"`
	SeatType    string        `json:"seat_type"`
	ProductInfo []ProductInfo `json:"product_info,omitempty"`
}

// PriceInfo is one line of the price breakdown.
type PriceInfo struct {
	Title    string `json:"title"`
	Amount   Amount `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// AirlineItineraryTemplate confirms a booked itinerary.
type AirlineItineraryTemplate struct {
	IntroMessage         string                 `json:"intro_message"`
	Locale               string                 `json:"locale"`
	ThemeColor           string                 `json:"theme_color,omitempty"`
	PNRNumber            string                 `json:"pnr_number"`
	PassengerInfo        []PassengerInfo        `json:"passenger_info"`
	FlightInfo           []FlightInfo           `json:"flight_info"`
	PassengerSegmentInfo []PassengerSegmentInfo `json:"passenger_segment_info"`
	PriceInfo            []PriceInfo            `json:"price_info,omitempty"`
	BasePrice            *Amount                `json:"base_price,omitempty"`
	Tax                  *Amount                `json:"tax,omitempty"`
	TotalPrice           Amount                 `json:"total_price"`
	Currency             string                 `json:"currency"`
}

func (AirlineItineraryTemplate) isPayload()                 {}
func (AirlineItineraryTemplate) TemplateType() TemplateType { return TemplateAirlineItinerary }
func (AirlineItineraryTemplate) buttonRefs() []buttonRef    { return nil }

func (t AirlineItineraryTemplate) MarshalJSON() ([]byte, error) {
	type plain AirlineItineraryTemplate
	return withTemplateType(TemplateAirlineItinerary, plain(t))
}

func (t AirlineItineraryTemplate) Validate() error {
	var p problems
	p.required("intro_message", t.IntroMessage)
	p.required("locale", t.Locale)
	p.required("pnr_number", t.PNRNumber)
	p.required("currency", t.Currency)

	p.count("passenger_info", len(t.PassengerInfo), 1, 0)
	passengers := map[string]bool{}
	for i, pi := range t.PassengerInfo {
		field := indexed("passenger_info", i)
		p.required(field+".passenger_id", pi.PassengerID)
		p.required(field+".name", pi.Name)
		passengers[pi.PassengerID] = true
	}

	p.count("flight_info", len(t.FlightInfo), 1, 0)
	segments := map[string]bool{}
	for i, f := range t.FlightInfo {
		field := indexed("flight_info", i)
		p.nest(field, f.Validate())
		p.required(field+".connection_id", f.ConnectionID)
		p.required(field+".segment_id", f.SegmentID)
		p.required(field+".travel_class", f.TravelClass)
		segments[f.SegmentID] = true
	}

	p.count("passenger_segment_info", len(t.PassengerSegmentInfo), 1, 0)
	for i, s := range t.PassengerSegmentInfo {
		field := indexed("passenger_segment_info", i)
		p.required(field+".seat", s.Seat)
		p.required(field+".seat_type", s.SeatType)
		if !segments[s.SegmentID] {
			p.add(KindInvalid, field+".segment_id", "unknown segment %q", s.SegmentID)
		}
		if !passengers[s.PassengerID] {
			p.add(KindInvalid, field+".passenger_id", "unknown passenger %q", s.PassengerID)
		}
	}

	p.count("price_info", len(t.PriceInfo), 0, MaxItineraryPriceInfo)
	for i, pi := range t.PriceInfo {
		p.required(indexed("price_info", i)+".title", pi.Title)
	}
	return p.err()
}

// AirlineFlightUpdateTemplate announces a delay, gate change or
// cancellation.
type AirlineFlightUpdateTemplate struct {
	IntroMessage     string           `json:"intro_message"`
	UpdateType       FlightUpdateType `json:"update_type"`
	Locale           string           `json:"locale"`
	ThemeColor       string           `json:"theme_color,omitempty"`
	PNRNumber        string           `json:"pnr_number"`
	UpdateFlightInfo FlightInfo       `json:"update_flight_info"`
}

func (AirlineFlightUpdateTemplate) isPayload()                 {}
func (AirlineFlightUpdateTemplate) TemplateType() TemplateType { return TemplateAirlineUpdate }
func (AirlineFlightUpdateTemplate) buttonRefs() []buttonRef    { return nil }

func (t AirlineFlightUpdateTemplate) MarshalJSON() ([]byte, error) {
	type plain AirlineFlightUpdateTemplate
	return withTemplateType(TemplateAirlineUpdate, plain(t))
}

func (t AirlineFlightUpdateTemplate) Validate() error {
	var p problems
	p.required("intro_message", t.IntroMessage)
	p.required("locale", t.Locale)
	p.required("pnr_number", t.PNRNumber)
	if !oneOf(t.UpdateType, FlightDelay, FlightGateChange, FlightCancellation) {
		p.add(KindInvalid, "update_type", "unknown update type %q", t.UpdateType)
	}
	p.nest("update_flight_info", t.UpdateFlightInfo.Validate())
	return p.err()
}
