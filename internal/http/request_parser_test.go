package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"familyassets/internal/core"
)

func formRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestParseAssetFields(t *testing.T) {
	today := core.NewDate(2024, 6, 15)

	tests := []struct {
		name     string
		body     string
		wantErr  string
		wantType core.Category
		wantAmt  string
		wantDate string
	}{
		{
			name:     "complete form",
			body:     "name=Savings&type=bank&amount=1234.5&description=rainy+day&date=2024-01-10",
			wantType: core.Bank,
			wantAmt:  "1234.5",
			wantDate: "2024-01-10",
		},
		{
			name:     "empty date defaults to today",
			body:     "name=Wallet&type=cash&amount=200",
			wantType: core.Cash,
			wantAmt:  "200",
			wantDate: "2024-06-15",
		},
		{
			name:     "comma decimal separator",
			body:     "name=Coins&type=cash&amount=12%2C5",
			wantType: core.Cash,
			wantAmt:  "12.5",
			wantDate: "2024-06-15",
		},
		{
			name:     "negative amount",
			body:     "name=Card&type=bank&amount=-5000",
			wantType: core.Bank,
			wantAmt:  "-5000",
			wantDate: "2024-06-15",
		},
		{
			name:     "missing type is other",
			body:     "name=Thing&amount=10",
			wantType: core.Other,
			wantAmt:  "10",
			wantDate: "2024-06-15",
		},
		{
			name:     "unknown type kept",
			body:     "name=Art&type=painting&amount=10",
			wantType: core.Category("painting"),
			wantAmt:  "10",
			wantDate: "2024-06-15",
		},
		{name: "missing amount", body: "name=X&type=cash", wantErr: "Amount is required"},
		{name: "non numeric amount", body: "name=X&type=cash&amount=abc", wantErr: "Amount must be a number"},
		{name: "NaN amount", body: "name=X&type=cash&amount=NaN", wantErr: "Amount must be a number"},
		{name: "bad date", body: "name=X&type=cash&amount=1&date=15%2F06%2F2024", wantErr: "Date must be YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseAssetFields(NewRequestBodyParser(formRequest(tt.body)), today)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tt.wantErr)
				}
				msg, ok := userMessage(err)
				if !ok || msg != tt.wantErr {
					t.Fatalf("userMessage = %q (%v), want %q", msg, ok, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", f.Type, tt.wantType)
			}
			if f.Amount.String() != tt.wantAmt {
				t.Errorf("Amount = %s, want %s", f.Amount, tt.wantAmt)
			}
			if f.Date.String() != tt.wantDate {
				t.Errorf("Date = %s, want %s", f.Date, tt.wantDate)
			}
		})
	}
}

func TestParseAssetFields_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(`{"name":"Fund","type":"investment","amount":5000.25}`))
	req.Header.Set("Content-Type", "application/json")

	f, err := ParseAssetFields(NewRequestBodyParser(req), core.NewDate(2024, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "Fund" || f.Type != core.Investment || f.Amount.String() != "5000.25" {
		t.Errorf("unexpected fields: %+v", f)
	}
}

func TestParseAssetFields_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")

	_, err := ParseAssetFields(NewRequestBodyParser(req), core.NewDate(2024, 1, 1))
	if msg, ok := userMessage(err); !ok || msg != "Invalid JSON body" {
		t.Errorf("userMessage = %q (%v), want Invalid JSON body", msg, ok)
	}
}

func TestParseAssetFields_MalformedForm(t *testing.T) {
	_, err := ParseAssetFields(NewRequestBodyParser(formRequest("name=%zz&amount=1")), core.NewDate(2024, 1, 1))
	if msg, ok := userMessage(err); !ok || msg != "Invalid request format" {
		t.Errorf("userMessage = %q (%v), want Invalid request format", msg, ok)
	}
}

func TestIsConfirmed(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"confirm=yes", true},
		{"confirm=YES", true},
		{"confirm=true", true},
		{"confirm=on", true},
		{"confirm=no", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isConfirmed(NewRequestBodyParser(formRequest(tt.body))); got != tt.want {
			t.Errorf("isConfirmed(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Gold\x00 ring\t "); got != "Gold ring" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
