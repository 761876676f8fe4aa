package messenger

import "fmt"

// TemplateType is the wire tag of a template.
type TemplateType string

const (
	TemplateGeneric             TemplateType = "generic"
	TemplateList                TemplateType = "list"
	TemplateButton              TemplateType = "button"
	TemplateOpenGraph           TemplateType = "open_graph"
	TemplateReceipt             TemplateType = "receipt"
	TemplateAirlineBoardingPass TemplateType = "airline_boardingpass"
	TemplateAirlineCheckin      TemplateType = "airline_checkin"
	TemplateAirlineItinerary    TemplateType = "airline_itinerary"
	TemplateAirlineUpdate       TemplateType = "airline_update"
	TemplateMedia               TemplateType = "media"
)

func templates(ts ...TemplateType) map[TemplateType]struct{} {
	out := make(map[TemplateType]struct{}, len(ts))
	for _, t := range ts {
		out[t] = struct{}{}
	}
	return out
}

// compatibility lists, per button, the templates it may appear in. No
// button is accepted by open_graph, receipt or the airline templates.
var compatibility = map[ButtonType]map[TemplateType]struct{}{
	ButtonWebURL:   templates(TemplateButton, TemplateGeneric),
	ButtonPostback: templates(TemplateButton, TemplateGeneric),
	ButtonShare:    templates(TemplateGeneric, TemplateList, TemplateMedia),
	ButtonBuy:      templates(TemplateGeneric, TemplateList, TemplateMedia),
	ButtonCall:     templates(TemplateGeneric, TemplateList, TemplateButton, TemplateMedia),
	ButtonLogIn:    templates(TemplateGeneric, TemplateList, TemplateButton, TemplateMedia),
	ButtonLogOut:   templates(TemplateGeneric, TemplateList, TemplateButton, TemplateMedia),
	ButtonGamePlay: templates(TemplateGeneric, TemplateList, TemplateButton, TemplateMedia),
}

// Allowed reports whether a button of type b may be placed in a template of
// type t.
func Allowed(b ButtonType, t TemplateType) bool {
	_, ok := compatibility[b][t]
	return ok
}

type buttonRef struct {
	path   string
	button Button
}

func collectButtons(field string, buttons []Button) []buttonRef {
	refs := make([]buttonRef, 0, len(buttons))
	for i, b := range buttons {
		if b != nil {
			refs = append(refs, buttonRef{path: indexed(field, i), button: b})
		}
	}
	return refs
}

// checkCompatibility rejects every button tpl carries that its template type
// does not accept.
func checkCompatibility(p *problems, tpl Template) {
	for _, ref := range tpl.buttonRefs() {
		bt := ref.button.ButtonType()
		if !Allowed(bt, tpl.TemplateType()) {
			p.errs = append(p.errs, &ValidationError{
				Kind:   KindCompatibility,
				Field:  ref.path,
				Reason: fmt.Sprintf("%s button is not allowed in a %s template", bt, tpl.TemplateType()),
			})
		}
	}
}
