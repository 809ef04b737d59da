package orders

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed summary.html
var summaryTemplateSource []byte

var (
	summaryTemplate = pongo2.Must(pongo2.FromBytes(summaryTemplateSource))

	summaryPolicyOnce sync.Once
	summaryPolicy     *bluemonday.Policy
)

type ContactSection struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type EventSection struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Deadline string `json:"deadline"`
}

type SummaryProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// CustomizationSection is omitted from the summary when every part is blank.
type CustomizationSection struct {
	LogoPosition    string   `json:"logoPosition,omitempty"`
	LogoColors      string   `json:"logoColors,omitempty"`
	Details         string   `json:"details,omitempty"`
	CustomSpecs     string   `json:"customSpecs,omitempty"`
	CustomSpecLines []string `json:"-"`
}

type QuantitySection struct {
	Total           string `json:"total"`
	SizingBreakdown string `json:"sizingBreakdown,omitempty"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// Summary is the review-step view of a draft.
type Summary struct {
	Contact        ContactSection        `json:"contact"`
	Event          EventSection          `json:"event"`
	Products       []SummaryProduct      `json:"products"`
	EstimatedTotal string                `json:"estimatedTotal"`
	Customization  *CustomizationSection `json:"customization,omitempty"`
	Quantity       QuantitySection       `json:"quantity"`
}

// Summary builds the review panel from the current draft. Pricing uses the
// same quantity fallback as Assemble.
func (a *Assembler) Summary(d *draft.Draft) Summary {
	get := func(name string) string { return strings.TrimSpace(d.Get(name)) }
	orDefault := func(name string) string {
		if v := get(name); v != "" {
			return v
		}
		return notProvided
	}

	s := Summary{
		Contact: ContactSection{
			Name:    orDefault(fields.ContactName),
			Email:   orDefault(fields.Email),
			Phone:   orDefault(fields.Phone),
			Company: orDefault(fields.Company),
		},
		Event: EventSection{
			Name:     orDefault(fields.EventName),
			Date:     orDefault(fields.EventDate),
			Deadline: orDefault(fields.Deadline),
		},
		Quantity: QuantitySection{
			Total:           orDefault(fields.TotalQuantity),
			SizingBreakdown: get(fields.SizingBreakdown),
			SpecialRequests: get(fields.SpecialRequests),
		},
	}

	order := a.price(d)
	s.EstimatedTotal = order.EstimatedTotalText()
	if order.Priced() {
		s.EstimatedTotal = "$" + s.EstimatedTotal
	}
	s.Products = make([]SummaryProduct, 0, len(order.Lines))
	for _, line := range order.Lines {
		price := QuoteRequired
		if !line.Custom {
			price = fmt.Sprintf("$%s each", line.UnitPrice.StringFixed(2))
		}
		s.Products = append(s.Products, SummaryProduct{ID: line.ProductID, Name: line.Name, Price: price})
	}

	c := CustomizationSection{
		LogoPosition: get(fields.LogoPosition),
		LogoColors:   get(fields.LogoColors),
		Details:      get(fields.CustomizationDetails),
		CustomSpecs:  get(fields.CustomPoloSpecs),
	}
	if c.CustomSpecs != "" {
		c.CustomSpecLines = strings.Split(c.CustomSpecs, "\n")
	}
	if c.LogoPosition != "" || c.LogoColors != "" || c.Details != "" || c.CustomSpecs != "" {
		s.Customization = &c
	}
	return s
}

// RenderSummaryHTML renders the summary as an HTML fragment. Values are
// escaped by the template and the result is passed through a sanitizer.
func RenderSummaryHTML(s Summary) (string, error) {
	out, err := summaryTemplate.Execute(pongo2.Context{"summary": s})
	if err != nil {
		return "", fmt.Errorf("orders: render summary: %w", err)
	}
	return sanitizeSummary(out), nil
}

func sanitizeSummary(raw string) string {
	summaryPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("h4", "h5", "div", "p", "span", "strong", "br")
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("div", "span")
		summaryPolicy = policy
	})
	return strings.TrimSpace(summaryPolicy.Sanitize(raw))
}
