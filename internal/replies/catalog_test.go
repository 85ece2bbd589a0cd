package replies

import (
	"strings"
	"testing"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/language"
)

func testCatalog() *Catalog {
	return New(Links{
		Flipkart: "https://fk.example/p",
		Demo:     "https://ig.example/reel",
		Support:  "Support@turbothrill.in",
		Tracking: "https://fk.example/orders",
		Price:    "498",
	})
}

func TestEveryTemplateRenders(t *testing.T) {
	c := testCatalog()
	extra := map[string]string{
		"OrderName":     "#1023",
		"OrderStatus":   "FULFILLED",
		"OrderTracking": "https://track.example/1",
		"Hours":         "10:00-19:00",
	}
	for _, key := range Keys() {
		for _, lang := range []language.Tag{language.English, language.Hindi, language.Tamil, language.Telugu} {
			out, err := c.Render(key, lang, extra)
			if err != nil {
				t.Fatalf("Render(%s,%s): %v", key, lang, err)
			}
			if strings.TrimSpace(out) == "" {
				t.Fatalf("Render(%s,%s) empty", key, lang)
			}
		}
	}
}

func TestDemoTemplate(t *testing.T) {
	c := testCatalog()
	want := "⚡ Riders are going crazy for this!\nWatch the demo here 👇\n🎥 https://ig.example/reel\n\n🔥 Want it under ₹498?\nJust reply ORDER"
	if got := c.Text(Demo, language.English); got != want {
		t.Fatalf("demo en mismatch:\n%q\n%q", got, want)
	}
	hi := c.Text(Demo, language.Hindi)
	if !strings.Contains(hi, "https://ig.example/reel") || !strings.Contains(hi, "ORDER") {
		t.Fatalf("demo hi missing link or command: %q", hi)
	}
}

func TestPriceTemplateIsSingleVariant(t *testing.T) {
	c := testCatalog()
	want := "Bro price sirf ₹498 hai Flipkart pe.\nCOD + fast delivery mil jayegi.\nBuy → type ORDER"
	if got := c.Text(Price, language.Hindi); got != want {
		t.Fatalf("price mismatch %q", got)
	}
	if c.Text(Price, language.English) != want {
		t.Fatalf("price should not vary by language")
	}
}

func TestTamilUsesEnglish(t *testing.T) {
	c := testCatalog()
	if c.Text(Welcome, language.Tamil) != c.Text(Welcome, language.English) {
		t.Fatalf("ta should render the en variant")
	}
}

func TestRefusalMentionsSupport(t *testing.T) {
	got := testCatalog().Text(Refusal, language.English)
	want := "I can't assist with dangerous or illegal instructions. Please contact support: Support@turbothrill.in."
	if got != want {
		t.Fatalf("refusal mismatch %q", got)
	}
}

func TestMissingExtraFails(t *testing.T) {
	c := testCatalog()
	if _, err := c.Render(OrderStatus, language.English, nil); err == nil {
		t.Fatalf("expected error without order vars")
	}
	if c.Text(OrderStatus, language.English) != "" {
		t.Fatalf("Text should swallow render errors")
	}
	if _, err := c.Render("nope", language.English, nil); err == nil {
		t.Fatalf("expected unknown template error")
	}
}

func TestDefaultsFillEmptyLinks(t *testing.T) {
	c := New(Links{})
	if c.Links().Price != "498" || c.Links().Support != "Support" {
		t.Fatalf("unexpected defaults %+v", c.Links())
	}
}

func TestTemplatesCompiledOnce(t *testing.T) {
	if len(compiled) != len(templates) {
		t.Fatalf("compiled %d of %d templates", len(compiled), len(templates))
	}
	for key, v := range templates {
		c := compiled[key]
		if c.en == nil {
			t.Fatalf("%s: missing en template", key)
		}
		if (v.hi != "") != (c.hi != nil) {
			t.Fatalf("%s: hi variant not compiled consistently", key)
		}
	}
}

func TestMustParseRejectsBrokenTemplates(t *testing.T) {
	for _, text := range []string{"", "  ", "Hello {{.Name"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for %q", text)
				}
			}()
			mustParse("broken", text)
		}()
	}
}
