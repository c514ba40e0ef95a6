package leadparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/estate-backoffice/backend/internal/models"
)

// ParsedLead is what we manage to pull out of a portal inquiry email/page.
// Phone is the only field the caller can rely on.
type ParsedLead struct {
	Name        string              `json:"name"`
	Phone       string              `json:"phone"`
	Email       *string             `json:"email,omitempty"`
	Requirement *models.Requirement `json:"requirement,omitempty"`
	Message     string              `json:"message,omitempty"`
}

var (
	phoneRe  = regexp.MustCompile(`(?:\+?\d[\d\s\-()]{7,}\d)`)
	emailRe  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	digitsRe = regexp.MustCompile(`[\d.]+`)
)

// Parse extracts a lead from the HTML body portals send on an inquiry. The
// markup differs between portals, so extraction is defensive: labelled rows
// first, then free-text regex fallbacks.
func Parse(html string) (*ParsedLead, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	lead := &ParsedLead{}

	fields := map[string]string{}
	doc.Find("tr, li, .field, .inquiry-row").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if idx := strings.Index(text, ":"); idx > 0 && idx < 40 {
			label := normalizeLabel(text[:idx])
			value := strings.TrimSpace(text[idx+1:])
			if value != "" {
				if _, seen := fields[label]; !seen {
					fields[label] = value
				}
			}
		}
	})

	lead.Name = firstField(fields, "name", "customer", "buyer", "contact")
	lead.Phone = cleanPhone(firstField(fields, "phone", "mobile", "contact number"))
	if email := firstField(fields, "email", "e-mail"); email != "" {
		lead.Email = &email
	}

	fullText := doc.Text()
	if lead.Phone == "" {
		if m := phoneRe.FindString(fullText); m != "" {
			lead.Phone = cleanPhone(m)
		}
	}
	if lead.Email == nil {
		if m := emailRe.FindString(fullText); m != "" {
			lead.Email = &m
		}
	}

	req := parseRequirement(fields)
	if req != nil {
		lead.Requirement = req
	}

	if msg := firstField(fields, "message", "comments", "enquiry"); msg != "" {
		lead.Message = msg
	}

	return lead, nil
}

func parseRequirement(fields map[string]string) *models.Requirement {
	var req models.Requirement
	found := false

	if budget := firstField(fields, "budget", "price range", "max budget"); budget != "" {
		min, max := parseBudget(budget)
		if min > 0 {
			req.BudgetMin = &min
		}
		if max > 0 {
			req.BudgetMax = &max
		}
		found = min > 0 || max > 0
	}
	if loc := firstField(fields, "locality", "localities", "location", "area"); loc != "" {
		for _, part := range strings.Split(loc, ",") {
			if p := strings.TrimSpace(part); p != "" {
				req.Localities = append(req.Localities, p)
			}
		}
		found = found || len(req.Localities) > 0
	}
	if beds := firstField(fields, "bedrooms", "bhk", "beds"); beds != "" {
		if n := parseBedrooms(beds); n > 0 {
			req.Bedrooms = &n
			found = true
		}
	}

	if !found {
		return nil
	}
	return &req
}

// parseBudget handles "50L - 75L", "1.2Cr", "5000000" and ranges thereof.
// Single values become the max with no min.
func parseBudget(s string) (int64, int64) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '–' })
	switch len(parts) {
	case 1:
		return 0, parseAmount(parts[0])
	case 2:
		return parseAmount(parts[0]), parseAmount(parts[1])
	default:
		return 0, 0
	}
}

func parseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	num := digitsRe.FindString(s)
	if num == "" {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "cr"):
		v *= 10000000
	case strings.Contains(lower, "l"):
		v *= 100000
	case strings.Contains(lower, "k"):
		v *= 1000
	}
	return int64(v)
}

func parseBedrooms(s string) int {
	num := digitsRe.FindString(s)
	if num == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.Split(num, ".")[0])
	if err != nil {
		return 0
	}
	return n
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstField(fields map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v
		}
	}
	return ""
}

func cleanPhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	p := b.String()
	if len(p) < 8 {
		return ""
	}
	return p
}
