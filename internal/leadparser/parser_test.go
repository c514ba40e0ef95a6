package leadparser

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"50L", 5000000},
		{"1.2Cr", 12000000},
		{"75 L", 7500000},
		{"500k", 500000},
		{"5000000", 5000000},
		{"", 0},
		{"ask agent", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseAmount(tt.input)
			if result != tt.expected {
				t.Errorf("parseAmount(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseBudgetRange(t *testing.T) {
	min, max := parseBudget("50L - 75L")
	if min != 5000000 || max != 7500000 {
		t.Errorf("parseBudget range = (%d, %d), want (5000000, 7500000)", min, max)
	}

	min, max = parseBudget("1.5Cr")
	if min != 0 || max != 15000000 {
		t.Errorf("parseBudget single = (%d, %d), want (0, 15000000)", min, max)
	}
}

func TestParseLabelledInquiry(t *testing.T) {
	html := `
		<html><body><table>
			<tr><td>Name:</td><td>Priya Sharma</td></tr>
			<tr><td>Phone:</td><td>+91 98765-43210</td></tr>
			<tr><td>Email:</td><td>priya@example.com</td></tr>
			<tr><td>Budget:</td><td>60L - 80L</td></tr>
			<tr><td>Locality:</td><td>Indiranagar, Koramangala</td></tr>
			<tr><td>Bedrooms:</td><td>3 BHK</td></tr>
			<tr><td>Message:</td><td>Looking for east facing</td></tr>
		</table></body></html>`

	lead, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if lead.Name != "Priya Sharma" {
		t.Errorf("Name = %q", lead.Name)
	}
	if lead.Phone != "+919876543210" {
		t.Errorf("Phone = %q", lead.Phone)
	}
	if lead.Email == nil || *lead.Email != "priya@example.com" {
		t.Errorf("Email = %v", lead.Email)
	}
	if lead.Requirement == nil {
		t.Fatal("Requirement should be parsed")
	}
	if lead.Requirement.BudgetMin == nil || *lead.Requirement.BudgetMin != 6000000 {
		t.Errorf("BudgetMin = %v", lead.Requirement.BudgetMin)
	}
	if lead.Requirement.BudgetMax == nil || *lead.Requirement.BudgetMax != 8000000 {
		t.Errorf("BudgetMax = %v", lead.Requirement.BudgetMax)
	}
	if len(lead.Requirement.Localities) != 2 {
		t.Errorf("Localities = %v", lead.Requirement.Localities)
	}
	if lead.Requirement.Bedrooms == nil || *lead.Requirement.Bedrooms != 3 {
		t.Errorf("Bedrooms = %v", lead.Requirement.Bedrooms)
	}
	if lead.Message != "Looking for east facing" {
		t.Errorf("Message = %q", lead.Message)
	}
}

func TestParseFreeTextFallback(t *testing.T) {
	html := `<html><body><p>New inquiry from portal. Reach the buyer at
		+91 91234 56789 or buyer@mail.test for details.</p></body></html>`

	lead, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if lead.Phone != "+919123456789" {
		t.Errorf("Phone = %q", lead.Phone)
	}
	if lead.Email == nil || *lead.Email != "buyer@mail.test" {
		t.Errorf("Email = %v", lead.Email)
	}
	if lead.Requirement != nil {
		t.Errorf("Requirement should be nil, got %+v", lead.Requirement)
	}
}

func TestParseNoPhone(t *testing.T) {
	lead, err := Parse(`<html><body><p>hello</p></body></html>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if lead.Phone != "" {
		t.Errorf("Phone = %q, want empty", lead.Phone)
	}
}
